package builtin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogetl/internal/table"
)

func TestMergeLeftJoin(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id", "Title", "Place"}, [][]string{
		{"T1", "Argus", "Melbourne"},
		{"T3", "Age", "Melbourne"},
	})
	issues := table.FromRows("issues", []string{"Title Id", "Id", "Title", "Date"}, [][]string{
		{"T1", "I1", "Argus no. 1", "Jan 01 1900"},
		{"T2", "I2", "Orphan", "Jan 02 1900"},
	})

	out, err := Merge(titles, issues, DefaultMergeSpec())
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "Title Id", "Title", "Place", "Issue Id", "Date"}, out.Columns())
	require.Equal(t, 2, out.Len(), "unmatched issue contributes nothing")

	assert.Equal(t, []string{"I1", "T1", "Argus", "Melbourne", "I1", "Jan 01 1900"}, out.Strings()[0])
	assert.Equal(t, table.Str("T3"), out.Get(1, "Id"))
	assert.Equal(t, table.Str("T3"), out.Get(1, "Title Id"))
	assert.False(t, out.Get(1, "Issue Id").Valid)
	assert.False(t, out.Get(1, "Date").Valid)
}

func TestMergeRepeatsTitlePerIssue(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id"}, [][]string{{"T1"}, {"T2"}})
	issues := table.FromRows("issues", []string{"Title Id", "Id"}, [][]string{{"T1", "I1"}, {"T2", "I3"}, {"T1", "I2"}})

	out, err := Merge(titles, issues, DefaultMergeSpec())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"I1", "T1", "I1"}, {"I2", "T1", "I2"}, {"I3", "T2", "I3"}}, out.Strings())
}

func TestMergeSuffixesRemainingOverlap(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id", "Notes"}, [][]string{{"T1", "title note"}})
	issues := table.FromRows("issues", []string{"Title Id", "Id", "Notes"}, [][]string{{"T1", "I1", "issue note"}})

	out, err := Merge(titles, issues, DefaultMergeSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Title Id", "Notes", "Issue Id", "Notes (Issue)"}, out.Columns())
	assert.Equal(t, table.Str("issue note"), out.Get(0, "Notes (Issue)"))
}

func TestMergeNullKeysDoNotMatch(t *testing.T) {
	titles := table.New("titles", "Id")
	titles.AppendRow([]table.Value{table.Null})
	issues := table.New("issues", "Title Id", "Id")
	issues.AppendRow([]table.Value{table.Null, table.Str("I1")})

	out, err := Merge(titles, issues, DefaultMergeSpec())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.False(t, out.Get(0, "Issue Id").Valid)
}

func TestMergePreconditions(t *testing.T) {
	ok := table.New("titles", "Id")
	tests := []struct {
		name      string
		primary   *table.Table
		secondary *table.Table
		column    string
	}{
		{"primary_without_id", table.New("titles", "Title"), table.New("issues", "Title Id"), "Id"},
		{"secondary_without_title_id", ok, table.New("issues", "Id"), "Title Id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Merge(tc.primary, tc.secondary, DefaultMergeSpec())
			var mc *table.MissingColumnError
			require.True(t, errors.As(err, &mc), "got %v", err)
			assert.Equal(t, tc.column, mc.Column)
			assert.Equal(t, StageMerge, mc.Stage)
		})
	}
}

func TestMergeWithoutSecondary(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id", "Title"}, [][]string{{"T1", "Argus"}})
	out, err := MergeWith{Spec: DefaultMergeSpec()}.Apply(titles)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Title Id", "Title", "Issue Id"}, out.Columns())
	assert.Equal(t, [][]string{{"T1", "T1", "Argus", ""}}, out.Strings())
}

func TestDropDuplicateColumns(t *testing.T) {
	in := table.New("merged", "Id", "Title", "Title", "Id")
	in.AppendRow([]table.Value{table.Str("1"), table.Str("a"), table.Str("b"), table.Str("2")})

	var events []Event
	out, err := DropDuplicateColumns{Report: func(e Event) { events = append(events, e) }}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Title"}, out.Columns())
	assert.Equal(t, [][]string{{"1", "a"}}, out.Strings())
	require.Len(t, events, 1)
	assert.Equal(t, []string{"Title", "Id"}, events[0].Columns)

	events = nil
	_, err = DropDuplicateColumns{Report: func(e Event) { events = append(events, e) }}.Apply(out)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClassify(t *testing.T) {
	in := table.New("merged", "Title Id", "Issue Id")
	in.AppendRow([]table.Value{table.Str("T1"), table.Str("I1")})
	in.AppendRow([]table.Value{table.Str("T2"), table.Null})

	out, err := Classify{}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []table.Value{table.Str(TypeIssue), table.Str(TypeTitle)}, col(t, out, "Type"))
}

func TestClassifyFallsBackToTitleID(t *testing.T) {
	in := table.New("merged", "Title Id")
	in.AppendRow([]table.Value{table.Str("T1")})
	in.AppendRow([]table.Value{table.Null})

	out, err := Classify{}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []table.Value{table.Str(TypeIssue), table.Str(TypeTitle)}, col(t, out, "Type"))
}

func TestClassifyWithoutKeyIsFatal(t *testing.T) {
	_, err := Classify{}.Apply(table.New("merged", "Id"))
	var se *table.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "Issue Id, Title Id")
}

func TestMergeRecordIDsStayUnique(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id"}, [][]string{{"A"}, {"B"}, {"C"}})
	issues := table.New("issues", "Title Id", "Id")
	issues.AppendRow([]table.Value{table.Str("A"), table.Str("B")})
	issues.AppendRow([]table.Value{table.Str("C"), table.Null})
	issues.AppendRow([]table.Value{table.Str("C"), table.Null})
	issues.AppendRow([]table.Value{table.Str("C"), table.Str("I9")})

	var events []Event
	out, err := MergeWith{
		Secondary: issues,
		Spec:      DefaultMergeSpec(),
		Report:    func(e Event) { events = append(events, e) },
	}.Apply(titles)
	require.NoError(t, err)

	// B matched nothing, so it keeps its own Id; the issue that shares it is
	// qualified by its title.
	assert.Equal(t, []table.Value{
		table.Str("A/B"), table.Str("B"), table.Str("C"), table.Str("C#2"), table.Str("I9"),
	}, col(t, out, "Id"))
	assert.Equal(t, []table.Value{
		table.Str("A"), table.Str("B"), table.Str("C"), table.Str("C"), table.Str("C"),
	}, col(t, out, "Title Id"))

	require.Len(t, events, 1)
	assert.Equal(t, KindRecordIDComposed, events[0].Kind)
	assert.Equal(t, 2, events[0].Count)
}

func TestMergeEmitsRenamedColumnsMissingFromSecondary(t *testing.T) {
	titles := table.FromRows("titles", []string{"Id", "Title"}, [][]string{{"T1", "Argus"}})
	issues := table.FromRows("issues", []string{"Title Id", "Date"}, [][]string{{"T1", "Jan 01 1900"}})

	out, err := Merge(titles, issues, DefaultMergeSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Title Id", "Title", "Date", "Issue Id"}, out.Columns())
	assert.Equal(t, [][]string{{"T1", "T1", "Argus", "Jan 01 1900", ""}}, out.Strings())
	assert.False(t, out.Get(0, "Issue Id").Valid)
}
