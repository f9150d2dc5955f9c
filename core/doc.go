package core

import (
	"slices"
	"sync"

	"github.com/nasdf/quill/object"

	mapset "github.com/deckarep/golang-set/v2"
)

// Doc is a single replica of a replicated document.
//
// Doc is safe for concurrent use. Readers always observe the last
// published snapshot.
type Doc struct {
	mu sync.RWMutex
	// edit is held while a change is open
	edit sync.Mutex

	actor      object.ActorID
	log        Logger
	maxPending int

	objects arena
	clock   Clock
	maxOp   uint64
	history []*Batch
	hashes  map[batchKey]object.Hash
	// bounds holds the largest op counter in the history covered by each applied batch
	bounds map[batchKey]uint64

	pending map[batchKey]pendingBatch
	// unsatisfiable contains pending batches that can never be applied
	unsatisfiable mapset.Set[batchKey]

	snapshot *Snapshot
}

type pendingBatch struct {
	batch *Batch
	hash  object.Hash
}

// New returns an empty document.
func New(opts Options) *Doc {
	opts.SetDefaults()
	d := &Doc{
		actor:         opts.Actor,
		log:           opts.Logger,
		maxPending:    opts.MaxPending,
		objects:       newArena(),
		clock:         make(Clock),
		hashes:        make(map[batchKey]object.Hash),
		bounds:        make(map[batchKey]uint64),
		pending:       make(map[batchKey]pendingBatch),
		unsatisfiable: mapset.NewThreadUnsafeSet[batchKey](),
	}
	d.snapshot = newSnapshot(d.objects, d.clock)
	return d
}

// Actor returns the actor id used to author changes.
func (d *Doc) Actor() object.ActorID {
	return d.actor
}

// Snapshot returns the current materialized state.
func (d *Doc) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Clock returns the clock of all applied batches.
func (d *Doc) Clock() Clock {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clock.Clone()
}

// Change runs fn inside an edit context and applies the recorded operations
// as a single batch.
//
// If fn returns an error nothing is applied. The returned batch is nil when
// fn did not record any operations. Only one change may be open at a time.
func (d *Doc) Change(fn func(tx *Transaction) error) (*Snapshot, *Batch, error) {
	if !d.edit.TryLock() {
		return nil, nil, ErrChangeInProgress
	}
	defer d.edit.Unlock()

	d.mu.RLock()
	tx := newTransaction(d.objects, d.actor, d.clock, d.maxOp, false)
	d.mu.RUnlock()

	err := fn(tx)
	tx.done = true
	if err != nil {
		return nil, nil, err
	}
	batch := tx.batch()
	if batch == nil {
		return d.Snapshot(), nil, nil
	}
	snap, err := d.ApplyBatches(batch)
	if err != nil {
		return nil, nil, err
	}
	return snap, batch, nil
}

// View returns a read-only transaction over the current state.
//
// All mutations through the returned transaction fail with ErrReadOnly.
func (d *Doc) View() *Transaction {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return newTransaction(d.objects, d.actor, d.clock, d.maxOp, true)
}

// Batches returns all applied batches in application order.
func (d *Doc) Batches() []*Batch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Batch, len(d.history))
	copy(out, d.history)
	return out
}

// checkpoint returns the applied batches and the clock they produce.
func (d *Doc) checkpoint() ([]*Batch, Clock) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.history), d.clock.Clone()
}

// BatchesSince returns the applied batches that are not covered by the given clock.
func (d *Doc) BatchesSince(clock Clock) []*Batch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Batch
	for _, b := range d.history {
		if !clock.Applied(b) {
			out = append(out, b)
		}
	}
	return out
}

// Merge applies all batches from other that have not been applied yet.
func (d *Doc) Merge(other *Doc) (*Snapshot, error) {
	return d.ApplyBatches(other.BatchesSince(d.Clock())...)
}
