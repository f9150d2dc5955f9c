package core

import (
	"maps"
	"slices"

	"github.com/nasdf/quill/object"
)

// Clock is a version vector of the highest batch seq applied from each actor.
type Clock map[object.ActorID]uint64

// Get returns the highest seq applied from the given actor.
func (c Clock) Get(actor object.ActorID) uint64 {
	return c[actor]
}

// Put advances the entry for the given actor, returns whether it made any difference.
func (c Clock) Put(actor object.ActorID, seq uint64) bool {
	if c[actor] >= seq {
		return false
	}
	c[actor] = seq
	return true
}

// Covers returns true if the batch with the given actor and seq has been observed.
func (c Clock) Covers(actor object.ActorID, seq uint64) bool {
	return c[actor] >= seq
}

// CoversClock returns true if every entry of other has been observed.
func (c Clock) CoversClock(other Clock) bool {
	for actor, seq := range other {
		if c[actor] < seq {
			return false
		}
	}
	return true
}

// Merge advances every entry to the maximum of both clocks.
func (c Clock) Merge(other Clock) {
	for actor, seq := range other {
		c.Put(actor, seq)
	}
}

// Clone returns a copy of the clock.
func (c Clock) Clone() Clock {
	out := make(Clock, len(c))
	maps.Copy(out, c)
	return out
}

// Actors returns the actors in the clock in sorted order.
func (c Clock) Actors() []object.ActorID {
	return slices.Sorted(maps.Keys(c))
}

// Applied returns true if the batch has already been applied.
func (c Clock) Applied(b *Batch) bool {
	return c.Covers(b.Actor, b.Seq)
}

// Admissible returns true if the batch is the next one from its actor and
// all of its dependencies have been applied.
func (c Clock) Admissible(b *Batch) bool {
	if c[b.Actor]+1 != b.Seq {
		return false
	}
	return c.CoversClock(b.Deps)
}

// Missing returns the entries the batch is still waiting for.
func (c Clock) Missing(b *Batch) Clock {
	missing := make(Clock)
	if c[b.Actor]+1 < b.Seq {
		missing[b.Actor] = b.Seq - 1
	}
	for actor, seq := range b.Deps {
		if c[actor] < seq {
			missing.Put(actor, seq)
		}
	}
	return missing
}

// Ordering describes the causal relation of two clocks.
type Ordering int

const (
	Equal Ordering = iota
	Before
	After
	Concurrent
)

// Compare returns the causal relation of this clock to the other clock.
func (c Clock) Compare(other Clock) Ordering {
	covers := c.CoversClock(other)
	covered := other.CoversClock(c)
	switch {
	case covers && covered:
		return Equal
	case covered:
		return Before
	case covers:
		return After
	default:
		return Concurrent
	}
}

// unsatisfiable returns true if no history could ever make the batch admissible.
func unsatisfiable(b *Batch) bool {
	return b.Seq == 0 || b.StartOp == 0 || b.Deps[b.Actor] >= b.Seq
}

// batchKey is the identity of a batch.
type batchKey struct {
	actor object.ActorID
	seq   uint64
}
