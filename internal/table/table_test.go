package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	return FromRows("titles", []string{"Id", "Title", "Place"}, [][]string{
		{"T1", "Argus", "Melbourne"},
		{"T2", "Age"},
	})
}

func TestFromRowsPadsShortRows(t *testing.T) {
	tb := sample()
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, Str("Age"), tb.Get(1, "Title"))
	assert.False(t, tb.Get(1, "Place").Valid)
	assert.Equal(t, Null, tb.Get(0, "Nope"))
}

func TestCloneIsDeep(t *testing.T) {
	tb := sample()
	c := tb.Clone()
	c.Set(0, 0, Str("X"))
	c.RenameColumn(1, "Name")

	assert.Equal(t, "T1", tb.Get(0, "Id").String)
	assert.True(t, tb.Has("Title"))
	assert.False(t, c.Has("Title"))
}

func TestDropRemovesEveryOccurrence(t *testing.T) {
	tb := New("merged", "Id", "Title", "Title")
	tb.AppendRow([]Value{Str("1"), Str("a"), Str("b")})

	out := tb.Drop("Title", "Unknown")
	assert.Equal(t, []string{"Id"}, out.Columns())
	assert.Equal(t, 3, tb.Width(), "input untouched")
}

func TestRecordsFirstLabelWins(t *testing.T) {
	tb := New("merged", "Id", "Title", "Title")
	tb.AppendRow([]Value{Str("1"), Str("a"), Null})
	tb.AppendRow([]Value{Null, Null, Str("b")})

	recs := tb.Records()
	require.Len(t, recs, 2)
	require.NotNil(t, recs[0]["Title"])
	assert.Equal(t, "a", *recs[0]["Title"])
	assert.Nil(t, recs[1]["Title"])
	assert.Nil(t, recs[1]["Id"])
}

func TestStringsWritesNullAsEmpty(t *testing.T) {
	tb := New("t", "A", "B")
	tb.AppendRow([]Value{Str("x"), Null})
	assert.Equal(t, [][]string{{"x", ""}}, tb.Strings())
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(Null))
	assert.True(t, IsBlank(Str("  ")))
	assert.False(t, IsBlank(Str("0")))
}

func TestRequire(t *testing.T) {
	err := Require(sample(), "merge", "Id", "Title Id")
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "Title Id", mc.Column)
	assert.Contains(t, err.Error(), `"Title Id"`)
	assert.NoError(t, Require(sample(), "merge", "Id"))
}
