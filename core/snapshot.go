package core

import (
	"encoding/json"

	"github.com/nasdf/quill/object"
)

// Snapshot is an immutable materialized state of a document.
type Snapshot struct {
	clock Clock
	root  *MapView
}

func newSnapshot(objects arena, clock Clock) *Snapshot {
	get := func(id object.ID) (*objectState, bool) {
		obj, ok := objects[id]
		return obj, ok
	}
	return &Snapshot{
		clock: clock.Clone(),
		root:  materialize(get, object.RootID).(*MapView),
	}
}

// Root returns the root map of the document.
func (s *Snapshot) Root() *MapView {
	return s.root
}

// Clock returns the clock of all batches included in the snapshot.
func (s *Snapshot) Clock() Clock {
	return s.clock.Clone()
}

// Value returns the document as plain Go values.
func (s *Snapshot) Value() map[string]any {
	return s.root.Value()
}

// MarshalJSON encodes the root map of the document.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.root)
}
