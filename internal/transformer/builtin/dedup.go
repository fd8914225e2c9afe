package builtin

// DeDup is the policy-driven de-duplication transformer. It collapses rows
// that share the configured key and chooses a winner according to Policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-null fields;
//     ties break by keep-first
//
// Keys are built from the key columns joined with an unlikely separator
// (null -> "\x00") and bucketed by their xxh3 hash. Rows whose key columns
// are all null have no identity and pass through untouched. Output keeps the
// input order of the surviving rows.

import (
	"strings"

	"github.com/zeebo/xxh3"

	"catalogetl/internal/table"
)

// Dedup policies.
const (
	KeepFirst    = "keep-first"
	KeepLast     = "keep-last"
	MostComplete = "most-complete"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the columns that form the business key, e.g. ["Id"]. Every
	// key column must exist unless SkipMissing is set.
	Keys []string

	// SkipMissing turns a missing key column into a reported no-op instead
	// of a fatal error. Used for inputs where the key is optional.
	SkipMissing bool

	// Policy selects the winner among duplicates (default keep-first).
	Policy string

	// PreferFields add an extra weight in most-complete scoring when present.
	PreferFields []string

	Report Reporter
}

func (DeDup) Name() string { return StageDedup }

type dedupSlot struct {
	key   string
	index int
	score int
}

func (d DeDup) Apply(in *table.Table) (*table.Table, error) {
	keys := d.Keys
	if len(keys) == 0 {
		keys = []string{"Id"}
	}
	if err := table.Require(in, StageDedup, keys...); err != nil {
		if !d.SkipMissing {
			return nil, err
		}
		d.Report.emit(Event{
			Stage:   StageDedup,
			Table:   in.Name(),
			Kind:    KindDedupSkipped,
			Columns: keys,
			Message: "key column missing; rows kept as is",
		})
		return in.Clone(), nil
	}
	if in.Len() == 0 {
		return in.Clone(), nil
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = KeepFirst
	}

	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		keyIdx[i] = in.Index(k)
	}
	prefer := make(map[int]struct{}, len(d.PreferFields))
	for _, f := range d.PreferFields {
		if i := in.Index(f); i >= 0 {
			prefer[i] = struct{}{}
		}
	}

	keyOf := func(r int) (string, bool) {
		var b strings.Builder
		present := false
		for n, c := range keyIdx {
			if n > 0 {
				b.WriteByte('\x1f')
			}
			v := in.At(r, c)
			if !v.Valid {
				b.WriteByte('\x00')
				continue
			}
			present = true
			b.WriteString(v.String)
		}
		return b.String(), present
	}
	scoreOf := func(r int) int {
		score, bonus := 0, 0
		for c := 0; c < in.Width(); c++ {
			if !in.At(r, c).Valid {
				continue
			}
			score++
			if _, ok := prefer[c]; ok {
				bonus++
			}
		}
		return score*10 + bonus
	}

	// Buckets are keyed by hash; the key string guards against collisions.
	buckets := make(map[uint64][]*dedupSlot, in.Len())
	lookup := func(key string) (*dedupSlot, uint64) {
		h := xxh3.HashString(key)
		for _, s := range buckets[h] {
			if s.key == key {
				return s, h
			}
		}
		return nil, h
	}

	passthrough := make([]int, 0)
	for r := 0; r < in.Len(); r++ {
		key, ok := keyOf(r)
		if !ok {
			passthrough = append(passthrough, r)
			continue
		}
		cur, h := lookup(key)
		if cur == nil {
			s := &dedupSlot{key: key, index: r}
			if policy == MostComplete {
				s.score = scoreOf(r)
			}
			buckets[h] = append(buckets[h], s)
			continue
		}
		switch policy {
		case KeepLast:
			cur.index = r
		case MostComplete:
			if sc := scoreOf(r); sc > cur.score {
				cur.index, cur.score = r, sc
			}
		}
	}

	keep := make([]bool, in.Len())
	for _, r := range passthrough {
		keep[r] = true
	}
	winners := 0
	for _, b := range buckets {
		for _, s := range b {
			keep[s.index] = true
			winners++
		}
	}
	rows := make([]int, 0, winners+len(passthrough))
	for r, k := range keep {
		if k {
			rows = append(rows, r)
		}
	}

	if dropped := in.Len() - len(rows); dropped > 0 {
		d.Report.emit(Event{
			Stage:   StageDedup,
			Table:   in.Name(),
			Kind:    KindDuplicateRows,
			Columns: keys,
			Count:   dropped,
			Message: "duplicate rows dropped (" + policy + ")",
		})
	}
	return in.Filter(rows), nil
}
