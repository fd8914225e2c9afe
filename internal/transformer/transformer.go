// Package transformer defines the table-to-table stage contract and the
// ordered Chain that runs stages one after another.
package transformer

import (
	"fmt"
	"time"

	"catalogetl/internal/table"
)

// Transformer is one pipeline stage. Apply must not modify its input; it
// returns a new table or a fatal error.
type Transformer interface {
	Name() string
	Apply(in *table.Table) (*table.Table, error)
}

// Observer is told about every stage run by a Chain.
type Observer func(stage string, err error, d time.Duration)

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs the chain, stopping at the first error.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	return c.Run(in, nil)
}

// Run is Apply with a per-stage observer (metrics, timing logs).
func (c Chain) Run(in *table.Table, obs Observer) (*table.Table, error) {
	out := in
	for _, t := range c {
		start := time.Now()
		next, err := t.Apply(out)
		if obs != nil {
			obs(t.Name(), err, time.Since(start))
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", t.Name(), err)
		}
		out = next
	}
	return out, nil
}

// Names lists the stage names in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.Name()
	}
	return out
}
