package core

import (
	"testing"

	"github.com/nasdf/quill/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayCopyOnWrite(t *testing.T) {
	base := newArena()
	o := newOverlay(base)

	root, ok := o.write(object.RootID)
	require.True(t, ok)
	root.fields.set("x", opContext{actor: "a", seq: 1}, scalarEntry(1, "a", 1, 1))

	require.NoError(t, o.create("1@a", object.KindList))
	assert.ErrorIs(t, o.create("1@a", object.KindMap), ErrDuplicateObjectID)

	committed := o.commit()
	assert.Empty(t, base[object.RootID].fields)
	assert.Len(t, base, 1)
	assert.Len(t, committed, 2)
	assert.NotNil(t, committed["1@a"].items)

	_, ok = committed[object.RootID].fields.resolve("x")
	assert.True(t, ok)
}

func TestOverlayCommitWithoutChanges(t *testing.T) {
	base := newArena()
	o := newOverlay(base)

	_, ok := o.get(object.RootID)
	require.True(t, ok)
	_, ok = o.write("missing")
	assert.False(t, ok)

	committed := o.commit()
	assert.Equal(t, base, committed)
}
