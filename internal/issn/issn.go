// Package issn validates ISSN-shaped identifiers and produces placeholder
// values for records that lack a valid one.
//
// Placeholders are NOT real ISSNs. They only guarantee that every record
// carries a syntactically valid value; nothing about them is derived from the
// publication itself. Two generators exist:
//
//   - HashGenerator (default) derives the value from the record key with xxh3,
//     so repeated runs over the same input produce the same placeholders.
//   - RandomGenerator draws from an explicitly seeded PCG source.
package issn

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"
)

// Format selects the canonical pattern a value must match.
type Format string

const (
	// Numeric accepts only digits: NNNN-NNNN.
	Numeric Format = "numeric"
	// CheckDigit allows an X in the final position: NNNN-NNNC.
	CheckDigit Format = "check"
)

var patterns = map[Format]*regexp.Regexp{
	Numeric:    regexp.MustCompile(`^\d{4}-\d{4}$`),
	CheckDigit: regexp.MustCompile(`^\d{4}-\d{3}[\dX]$`),
}

// ParseFormat maps a config value onto a Format. Empty selects CheckDigit.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CheckDigit, nil
	case Numeric, CheckDigit:
		return f, nil
	default:
		return "", fmt.Errorf("issn: unknown format %q (want %q or %q)", s, Numeric, CheckDigit)
	}
}

// Pattern returns the regular expression for f; unknown formats fall back to
// CheckDigit.
func (f Format) Pattern() *regexp.Regexp {
	if re, ok := patterns[f]; ok {
		return re
	}
	return patterns[CheckDigit]
}

// Valid reports whether s matches f.
func (f Format) Valid(s string) bool { return f.Pattern().MatchString(s) }

// Generator produces placeholder values. key identifies the record (its Id,
// or its position when the Id is missing).
type Generator interface {
	Next(key string) string
}

// HashGenerator derives placeholders from the record key and Seed.
type HashGenerator struct {
	Seed uint64
}

// Next returns NNNN-NNNN with both groups in 1000..9999.
func (g HashGenerator) Next(key string) string {
	h := xxh3.HashStringSeed(key, g.Seed)
	return render(h&0xffffffff, h>>32)
}

// RandomGenerator draws placeholders from a PCG source seeded with Seed.
// The key is ignored; output depends only on the seed and call order.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator returns a generator seeded with seed.
func NewRandomGenerator(seed uint64) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns NNNN-NNNN with both groups in 1000..9999.
func (g *RandomGenerator) Next(string) string {
	return render(g.rng.Uint64(), g.rng.Uint64())
}

func render(a, b uint64) string {
	return fmt.Sprintf("%04d-%04d", 1000+a%9000, 1000+b%9000)
}
