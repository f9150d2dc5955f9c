package core

import (
	"slices"

	"github.com/nasdf/quill/object"
)

// opContext is the causal context of the batch an operation belongs to.
type opContext struct {
	actor object.ActorID
	seq   uint64
	deps  Clock
}

// observed returns true if the author of the context had seen the given write.
func (c opContext) observed(id object.OpID, seq uint64) bool {
	if id.Actor == c.actor && seq <= c.seq {
		return true
	}
	return c.deps.Covers(id.Actor, seq)
}

// entry is a single write in a conflict set.
type entry struct {
	id    object.OpID
	seq   uint64
	value Value
}

// register is a conflict set ordered by ascending op id.
//
// The winner is always the last entry.
type register []entry

// set removes the entries observed by ctx and adds the new entry.
func (r register) set(ctx opContext, e entry) register {
	out := r.remove(ctx)
	i, found := slices.BinarySearchFunc(out, e.id, func(a entry, id object.OpID) int {
		return a.id.Compare(id)
	})
	if found {
		out[i] = e
		return out
	}
	return slices.Insert(out, i, e)
}

// remove returns the entries that were not observed by ctx.
func (r register) remove(ctx opContext) register {
	var out register
	for _, e := range r {
		if !ctx.observed(e.id, e.seq) {
			out = append(out, e)
		}
	}
	return out
}

// winner returns the entry with the greatest op id.
func (r register) winner() (entry, bool) {
	if len(r) == 0 {
		return entry{}, false
	}
	return r[len(r)-1], true
}

func (r register) clone() register {
	return slices.Clone(r)
}
