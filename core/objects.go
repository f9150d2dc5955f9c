package core

import (
	"maps"

	"github.com/nasdf/quill/object"
)

// objectState is the replicated state of a single object.
type objectState struct {
	id   object.ID
	kind object.Kind
	// fields holds map entries and table rows
	fields fields
	// items holds list elements
	items *list
	// columns holds the links to table column lists
	columns register
}

func newObjectState(id object.ID, kind object.Kind) *objectState {
	o := &objectState{
		id:     id,
		kind:   kind,
		fields: make(fields),
	}
	if kind == object.KindList {
		o.items = newList()
	}
	return o
}

func (o *objectState) clone() *objectState {
	out := &objectState{
		id:      o.id,
		kind:    o.kind,
		fields:  o.fields.clone(),
		columns: o.columns.clone(),
	}
	if o.items != nil {
		out.items = o.items.clone()
	}
	return out
}

// arena maps object ids to their state.
//
// Committed arenas are never mutated.
type arena map[object.ID]*objectState

func newArena() arena {
	return arena{object.RootID: newObjectState(object.RootID, object.KindMap)}
}

// overlay is a copy-on-write view over a committed arena.
type overlay struct {
	base  arena
	dirty arena
}

func newOverlay(base arena) *overlay {
	return &overlay{
		base:  base,
		dirty: make(arena),
	}
}

// get returns the object with the given id for reading.
func (o *overlay) get(id object.ID) (*objectState, bool) {
	if obj, ok := o.dirty[id]; ok {
		return obj, true
	}
	obj, ok := o.base[id]
	return obj, ok
}

// write returns the object with the given id for writing.
func (o *overlay) write(id object.ID) (*objectState, bool) {
	if obj, ok := o.dirty[id]; ok {
		return obj, true
	}
	obj, ok := o.base[id]
	if !ok {
		return nil, false
	}
	obj = obj.clone()
	o.dirty[id] = obj
	return obj, true
}

// create adds a new object.
func (o *overlay) create(id object.ID, kind object.Kind) error {
	if _, ok := o.get(id); ok {
		return ErrDuplicateObjectID
	}
	o.dirty[id] = newObjectState(id, kind)
	return nil
}

// commit returns a new arena containing all changes.
func (o *overlay) commit() arena {
	if len(o.dirty) == 0 {
		return o.base
	}
	out := make(arena, len(o.base)+len(o.dirty))
	maps.Copy(out, o.base)
	maps.Copy(out, o.dirty)
	return out
}
