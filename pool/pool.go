// Package pool provides round-robin rotation over immutable value lists
// (user agents, proxies).
package pool

import "sync/atomic"

// Pool rotates over a fixed list of values. The list is never mutated after
// construction; the only state is the cursor, so Next is safe for
// concurrent use.
type Pool struct {
	values []string
	cursor atomic.Uint64
}

// New creates a Pool over the given values. A nil or empty slice yields a
// pool whose Next always returns "".
func New(values []string) *Pool {
	vs := make([]string, len(values))
	copy(vs, values)
	return &Pool{values: vs}
}

// Next returns the next value in round-robin order, or "" when the pool is
// empty.
func (p *Pool) Next() string {
	if len(p.values) == 0 {
		return ""
	}
	n := p.cursor.Add(1) - 1
	return p.values[n%uint64(len(p.values))]
}

// Size returns the number of values in the pool.
func (p *Pool) Size() int {
	return len(p.values)
}
