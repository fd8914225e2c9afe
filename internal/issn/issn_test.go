package issn

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValid(t *testing.T) {
	cases := []struct {
		in      string
		numeric bool
		check   bool
	}{
		{"0317-8471", true, true},
		{"2049-363X", false, true},
		{"2049-363x", false, false},
		{"20493630", false, false},
		{" 0317-8471", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.numeric, Numeric.Valid(tc.in), "numeric %q", tc.in)
		assert.Equal(t, tc.check, CheckDigit.Valid(tc.in), "check %q", tc.in)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, CheckDigit, f)

	f, err = ParseFormat(" Numeric ")
	require.NoError(t, err)
	assert.Equal(t, Numeric, f)

	_, err = ParseFormat("loose")
	assert.Error(t, err)
}

func TestHashGeneratorIsDeterministic(t *testing.T) {
	g := HashGenerator{Seed: 7}
	a := g.Next("nla.obj-1")
	assert.Equal(t, a, g.Next("nla.obj-1"))
	assert.Equal(t, a, HashGenerator{Seed: 7}.Next("nla.obj-1"))

	for i := 0; i < 500; i++ {
		v := g.Next("key-" + strconv.Itoa(i))
		require.True(t, Numeric.Valid(v), v)
		require.True(t, CheckDigit.Valid(v), v)
		require.GreaterOrEqual(t, v[:1], "1", v)
	}
}

func TestRandomGeneratorIsSeeded(t *testing.T) {
	a, b := NewRandomGenerator(42), NewRandomGenerator(42)
	for i := 0; i < 50; i++ {
		va, vb := a.Next(""), b.Next("ignored")
		require.Equal(t, va, vb)
		require.True(t, Numeric.Valid(va), va)
	}
}
