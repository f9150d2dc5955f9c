package core

import (
	"slices"

	"github.com/nasdf/quill/object"
)

// element is a position in a list.
//
// Elements are never removed from a list so they remain valid anchors
// for concurrent inserts.
type element struct {
	id        object.OpID
	value     register
	deleted   bool
	deletedBy []batchKey
}

// list is a replicated growable array.
//
// Elements inserted after the same anchor are ordered by descending op id,
// which makes the order a pure function of the set of inserts.
type list struct {
	elems []*element
	byID  map[object.OpID]*element
}

func newList() *list {
	return &list{
		byID: make(map[object.OpID]*element),
	}
}

// insert adds a new element after the anchor. A zero anchor inserts at the head.
func (l *list) insert(anchor object.OpID, e *element) error {
	if _, ok := l.byID[e.id]; ok {
		return ErrDuplicateObjectID
	}
	pos := 0
	if !anchor.IsZero() {
		idx := l.indexOf(anchor)
		if idx < 0 {
			return ErrTargetNotFound
		}
		pos = idx + 1
	}
	// skip concurrent inserts with a greater id along with everything inserted after them
	for pos < len(l.elems) && l.elems[pos].id.Compare(e.id) > 0 {
		pos++
	}
	l.elems = slices.Insert(l.elems, pos, e)
	l.byID[e.id] = e
	return nil
}

// assign writes a value to an existing element.
func (l *list) assign(id object.OpID, ctx opContext, e entry) error {
	el, ok := l.byID[id]
	if !ok {
		return ErrTargetNotFound
	}
	for _, key := range el.deletedBy {
		if ctx.observed(object.OpID{Actor: key.actor}, key.seq) {
			return ErrTargetNotFound
		}
	}
	// a write concurrent with a delete is kept but stays invisible
	el.value = el.value.set(ctx, e)
	return nil
}

// remove marks the element as deleted.
func (l *list) remove(id object.OpID, ctx opContext) error {
	el, ok := l.byID[id]
	if !ok {
		return ErrTargetNotFound
	}
	el.deleted = true
	el.deletedBy = append(el.deletedBy, batchKey{actor: ctx.actor, seq: ctx.seq})
	return nil
}

func (l *list) indexOf(id object.OpID) int {
	return slices.IndexFunc(l.elems, func(e *element) bool {
		return e.id == id
	})
}

// live returns all elements that have not been deleted.
func (l *list) live() []*element {
	out := make([]*element, 0, len(l.elems))
	for _, e := range l.elems {
		if !e.deleted {
			out = append(out, e)
		}
	}
	return out
}

// nth returns the live element at index i.
func (l *list) nth(i int) (*element, bool) {
	if i < 0 {
		return nil, false
	}
	for _, e := range l.elems {
		if e.deleted {
			continue
		}
		if i == 0 {
			return e, true
		}
		i--
	}
	return nil, false
}

// len returns the number of live elements.
func (l *list) len() int {
	n := 0
	for _, e := range l.elems {
		if !e.deleted {
			n++
		}
	}
	return n
}

func (l *list) clone() *list {
	out := &list{
		elems: make([]*element, len(l.elems)),
		byID:  make(map[object.OpID]*element, len(l.byID)),
	}
	for i, e := range l.elems {
		c := &element{
			id:        e.id,
			value:     e.value.clone(),
			deleted:   e.deleted,
			deletedBy: slices.Clone(e.deletedBy),
		}
		out.elems[i] = c
		out.byID[c.id] = c
	}
	return out
}
