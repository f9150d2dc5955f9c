package core

import (
	"testing"

	"github.com/nasdf/quill/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listInsert struct {
	anchor object.OpID
	id     object.OpID
}

func opid(counter uint64, actor object.ActorID) object.OpID {
	return object.OpID{Counter: counter, Actor: actor}
}

func listIDs(l *list) []object.OpID {
	var out []object.OpID
	for _, e := range l.live() {
		out = append(out, e.id)
	}
	return out
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			next := make([]int, 0, n)
			next = append(next, p[:i]...)
			next = append(next, n-1)
			next = append(next, p[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func TestListInsertOrder(t *testing.T) {
	l := newList()
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))
	require.NoError(t, l.insert(opid(1, "a"), &element{id: opid(2, "a")}))
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(3, "a")}))

	assert.Equal(t, []object.OpID{opid(3, "a"), opid(1, "a"), opid(2, "a")}, listIDs(l))
}

func TestListConcurrentInsertConverges(t *testing.T) {
	inserts := []listInsert{
		{anchor: object.OpID{}, id: opid(1, "a")},
		{anchor: opid(1, "a"), id: opid(2, "a")},
		{anchor: object.OpID{}, id: opid(1, "b")},
		{anchor: opid(1, "b"), id: opid(2, "b")},
		{anchor: opid(1, "a"), id: opid(2, "c")},
	}
	var expect []object.OpID
	for _, perm := range permutations(len(inserts)) {
		l := newList()
		valid := true
		for _, i := range perm {
			if err := l.insert(inserts[i].anchor, &element{id: inserts[i].id}); err != nil {
				require.ErrorIs(t, err, ErrTargetNotFound)
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		if expect == nil {
			expect = listIDs(l)
		}
		require.Equal(t, expect, listIDs(l), "permutation %v", perm)
	}
	assert.Equal(t, []object.OpID{opid(1, "b"), opid(2, "b"), opid(1, "a"), opid(2, "c"), opid(2, "a")}, expect)
}

func TestListInsertAfterDeletedAnchor(t *testing.T) {
	l := newList()
	ctx := opContext{actor: "a", seq: 2, deps: Clock{"a": 1}}

	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))
	require.NoError(t, l.insert(opid(1, "a"), &element{id: opid(2, "a")}))
	require.NoError(t, l.remove(opid(1, "a"), ctx))
	require.NoError(t, l.insert(opid(1, "a"), &element{id: opid(3, "b")}))

	assert.Equal(t, []object.OpID{opid(3, "b"), opid(2, "a")}, listIDs(l))
	assert.Equal(t, 2, l.len())
}

func TestListInsertUnknownAnchor(t *testing.T) {
	l := newList()
	err := l.insert(opid(1, "a"), &element{id: opid(2, "a")})
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.ErrorIs(t, err, ErrMalformedOperation)
}

func TestListInsertDuplicate(t *testing.T) {
	l := newList()
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))
	assert.ErrorIs(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}), ErrDuplicateObjectID)
}

func TestListAssignAfterObservedDelete(t *testing.T) {
	l := newList()
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))
	require.NoError(t, l.remove(opid(1, "a"), opContext{actor: "a", seq: 2}))

	ctx := opContext{actor: "b", seq: 1, deps: Clock{"a": 2}}
	err := l.assign(opid(1, "a"), ctx, scalarEntry(3, "b", 1, "x"))
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestListAssignConcurrentWithDelete(t *testing.T) {
	l := newList()
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))
	require.NoError(t, l.remove(opid(1, "a"), opContext{actor: "a", seq: 2}))

	ctx := opContext{actor: "b", seq: 1, deps: Clock{"a": 1}}
	require.NoError(t, l.assign(opid(1, "a"), ctx, scalarEntry(2, "b", 1, "x")))

	assert.Equal(t, 0, l.len())
	_, ok := l.nth(0)
	assert.False(t, ok)
}

func TestListCloneIsIndependent(t *testing.T) {
	l := newList()
	require.NoError(t, l.insert(object.OpID{}, &element{id: opid(1, "a")}))

	c := l.clone()
	require.NoError(t, c.remove(opid(1, "a"), opContext{actor: "a", seq: 2}))
	require.NoError(t, c.insert(opid(1, "a"), &element{id: opid(2, "a")}))

	assert.Equal(t, 1, l.len())
	assert.Equal(t, []object.OpID{opid(1, "a")}, listIDs(l))
	assert.Equal(t, []object.OpID{opid(2, "a")}, listIDs(c))
}
