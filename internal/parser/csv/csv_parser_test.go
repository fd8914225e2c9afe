package csv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	pcsv "catalogetl/internal/parser/csv"
)

func TestParseKeepsEmptyCells(t *testing.T) {
	in := "\uFEFFId, Title ,Place\nnla.obj-1,Argus,\nnla.obj-2,,Sydney\n"

	tb, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse("titles", strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, "titles", tb.Name())
	assert.Equal(t, []string{"Id", "Title", "Place"}, tb.Columns(), "BOM stripped, labels trimmed")
	require.Equal(t, 2, tb.Len())

	// Empty cells are present empty strings, not nulls.
	place := tb.Get(0, "Place")
	assert.True(t, place.Valid)
	assert.Equal(t, "", place.String)
	assert.Equal(t, [][]string{{"nla.obj-1", "Argus", ""}, {"nla.obj-2", "", "Sydney"}}, tb.Strings())
}

func TestParseSkipsWrongWidthRows(t *testing.T) {
	in := "Id,Title\nT1,A\nT2\nT3,C,extra\nT4,D\n"

	core, logs := observer.New(zapcore.WarnLevel)
	p := pcsv.NewParser(pcsv.Options{Logger: zap.New(core), LogLimit: 1})

	tb, skipped, err := p.Parse("titles", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, [][]string{{"T1", "A"}, {"T4", "D"}}, tb.Strings())

	// One row-level warning (the limit), then one summary line.
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "skipping row: incorrect number of fields", entries[0].Message)
	assert.EqualValues(t, 3, entries[0].ContextMap()["line"])
	assert.Equal(t, "further skipped rows not logged", entries[1].Message)
}

func TestParseQuotedFields(t *testing.T) {
	in := "Id,Description\nT1,\"Line one\nline two, with comma\"\nT2,\"He said \"\"hi\"\"\"\n"
	tb, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse("titles", strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, "Line one\nline two, with comma", tb.Get(0, "Description").String)
	assert.Equal(t, `He said "hi"`, tb.Get(1, "Description").String)
}

func TestParseOptions(t *testing.T) {
	in := "Id;Title\n T1 ; A \n"
	tb, _, err := pcsv.NewParser(pcsv.Options{Comma: ';', TrimSpace: true}).Parse("titles", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"T1", "A"}}, tb.Strings())
}

func TestParseBadQuoteIsSkipped(t *testing.T) {
	in := "Id,Title\nT1,bad \"quote\nT2,ok\n"
	tb, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse("titles", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, [][]string{{"T2", "ok"}}, tb.Strings())
}

func TestParseEmptyInput(t *testing.T) {
	_, _, err := pcsv.NewParser(pcsv.Options{}).Parse("titles", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pcsv.ErrNoHeader))
}

func TestParseHeaderOnly(t *testing.T) {
	tb, _, err := pcsv.NewParser(pcsv.Options{}).Parse("issues", strings.NewReader("Title Id,Id\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tb.Len())
	assert.Equal(t, []string{"Title Id", "Id"}, tb.Columns())
}

func TestStripHeaderBOM(t *testing.T) {
	assert.Equal(t, []string{"Id"}, pcsv.StripHeaderBOM([]string{"\uFEFFId"}))
	assert.Empty(t, pcsv.StripHeaderBOM(nil))
}
