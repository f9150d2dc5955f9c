package core

import (
	"testing"

	"github.com/nasdf/quill/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarEntry(counter uint64, actor object.ActorID, seq uint64, value any) entry {
	v, err := ScalarValue(value)
	if err != nil {
		panic(err)
	}
	return entry{id: object.OpID{Counter: counter, Actor: actor}, seq: seq, value: v}
}

func TestRegisterConcurrentSetsKeepBothEntries(t *testing.T) {
	var r register
	r = r.set(opContext{actor: "b", seq: 1, deps: Clock{}}, scalarEntry(1, "b", 1, "B"))
	r = r.set(opContext{actor: "a", seq: 1, deps: Clock{}}, scalarEntry(1, "a", 1, "A"))

	require.Len(t, r, 2)
	winner, ok := r.winner()
	require.True(t, ok)
	assert.Equal(t, "B", winner.value.Scalar)
}

func TestRegisterWinnerIndependentOfOrder(t *testing.T) {
	entries := []entry{
		scalarEntry(3, "a", 2, "x"),
		scalarEntry(3, "c", 1, "y"),
		scalarEntry(2, "b", 1, "z"),
	}
	ctx := func(e entry) opContext {
		return opContext{actor: e.id.Actor, seq: e.seq, deps: Clock{}}
	}
	var forward, backward register
	for i := range entries {
		forward = forward.set(ctx(entries[i]), entries[i])
		backward = backward.set(ctx(entries[len(entries)-1-i]), entries[len(entries)-1-i])
	}
	assert.Equal(t, forward, backward)

	winner, _ := forward.winner()
	assert.Equal(t, "y", winner.value.Scalar)
}

func TestRegisterSetRemovesObserved(t *testing.T) {
	var r register
	r = r.set(opContext{actor: "a", seq: 1, deps: Clock{}}, scalarEntry(1, "a", 1, 1))
	r = r.set(opContext{actor: "b", seq: 1, deps: Clock{"a": 1}}, scalarEntry(2, "b", 1, 2))

	require.Len(t, r, 1)
	assert.Equal(t, int64(2), r[0].value.Scalar)
}

func TestFieldsRemoveOnlyObserved(t *testing.T) {
	f := make(fields)
	f.set("k", opContext{actor: "a", seq: 1, deps: Clock{}}, scalarEntry(1, "a", 1, 1))
	f.set("k", opContext{actor: "b", seq: 1, deps: Clock{}}, scalarEntry(1, "b", 1, 2))

	f.remove("k", opContext{actor: "c", seq: 1, deps: Clock{"a": 1}})

	winner, ok := f.resolve("k")
	require.True(t, ok)
	assert.Equal(t, int64(2), winner.value.Scalar)

	f.remove("k", opContext{actor: "c", seq: 2, deps: Clock{"a": 1, "b": 1}})

	_, ok = f.resolve("k")
	assert.False(t, ok)
	assert.Empty(t, f.keys())
}

func TestFieldsCloneIsIndependent(t *testing.T) {
	f := make(fields)
	f.set("k", opContext{actor: "a", seq: 1, deps: Clock{}}, scalarEntry(1, "a", 1, 1))

	c := f.clone()
	c.set("k", opContext{actor: "a", seq: 2, deps: Clock{}}, scalarEntry(2, "a", 2, 2))

	winner, _ := f.resolve("k")
	assert.Equal(t, int64(1), winner.value.Scalar)
}
