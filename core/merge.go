package core

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/nasdf/quill/object"
)

// ApplyBatches merges the given batches into the document and publishes a
// new snapshot.
//
// Batches may arrive in any order and may be duplicated. Batches whose
// dependencies have not been applied are held pending until they are.
// Each batch is applied atomically: a batch containing a malformed
// operation is rejected without changing the document.
func (d *Doc) ApplyBatches(batches ...*Batch) (*Snapshot, error) {
	start := time.Now()
	defer func() {
		MergeDuration.Observe(time.Since(start).Seconds())
	}()

	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, b := range batches {
		if err := d.enqueue(b); err != nil {
			errs = append(errs, err)
		}
	}
	applied, err := d.drain()
	if err != nil {
		errs = append(errs, err)
	}
	if applied > 0 {
		d.snapshot = newSnapshot(d.objects, d.clock)
	}
	return d.snapshot, errors.Join(errs...)
}

// enqueue adds the batch to the pending queue unless it has been seen before.
func (d *Doc) enqueue(b *Batch) error {
	if b == nil {
		return nil
	}
	hash, err := b.Hash()
	if err != nil {
		BatchesRejected.WithLabelValues("encoding").Inc()
		return fmt.Errorf("%w: %w", ErrMalformedOperation, err)
	}
	key := b.key()
	if d.clock.Applied(b) {
		return d.checkDuplicate(key, d.hashes[key], hash)
	}
	if p, ok := d.pending[key]; ok {
		return d.checkDuplicate(key, p.hash, hash)
	}
	if !d.clock.Admissible(b) && len(d.pending) >= d.maxPending {
		BatchesRejected.WithLabelValues("pending_limit").Inc()
		return fmt.Errorf("%w: %d batches", ErrPendingLimit, len(d.pending))
	}
	d.pending[key] = pendingBatch{batch: b, hash: hash}
	BatchesPending.Inc()

	if unsatisfiable(b) {
		d.unsatisfiable.Add(key)
		d.log.Warn("batch can never be applied", "actor", b.Actor, "seq", b.Seq)
		BatchesRejected.WithLabelValues("unsatisfiable").Inc()
		return fmt.Errorf("%w: batch %s/%d", ErrUnsatisfiableDependency, b.Actor, b.Seq)
	}
	return nil
}

func (d *Doc) checkDuplicate(key batchKey, existing, hash object.Hash) error {
	if existing.Equal(hash) {
		d.log.Debug("duplicate batch", "actor", key.actor, "seq", key.seq)
		return nil
	}
	BatchesRejected.WithLabelValues("collision").Inc()
	return fmt.Errorf("%w: batch %s/%d", ErrIdentityCollision, key.actor, key.seq)
}

// drain applies pending batches until none of the remaining batches are admissible.
func (d *Doc) drain() (int, error) {
	var errs []error
	applied := 0
	for progress := true; progress; {
		progress = false
		for _, key := range d.pendingKeys() {
			p := d.pending[key]
			if d.unsatisfiable.Contains(key) || !d.clock.Admissible(p.batch) {
				continue
			}
			delete(d.pending, key)
			BatchesPending.Dec()

			if err := d.apply(p.batch, p.hash); err != nil {
				d.log.Warn("batch rejected", "actor", key.actor, "seq", key.seq, "err", err)
				BatchesRejected.WithLabelValues("malformed").Inc()
				errs = append(errs, err)
				continue
			}
			applied++
			progress = true
		}
	}
	for key, p := range d.pending {
		if d.unsatisfiable.Contains(key) {
			continue
		}
		d.log.Debug("batch buffered", "actor", key.actor, "seq", key.seq, "missing", d.clock.Missing(p.batch))
	}
	return applied, errors.Join(errs...)
}

// apply applies a single admissible batch atomically.
func (d *Doc) apply(b *Batch, hash object.Hash) error {
	bound := d.causalBound(b)
	if b.StartOp <= bound {
		return fmt.Errorf("%w: batch %s/%d starts at op %d but its history reaches op %d",
			ErrMalformedOperation, b.Actor, b.Seq, b.StartOp, bound)
	}
	objects := newOverlay(d.objects)
	a := newApplier(objects, b)
	for i, op := range b.Ops {
		if err := a.apply(b.OpID(i), op); err != nil {
			return &OperationError{
				Actor:  b.Actor,
				Seq:    b.Seq,
				Index:  i,
				Action: op.Action,
				Err:    err,
			}
		}
	}
	d.objects = objects.commit()
	d.clock.Put(b.Actor, b.Seq)
	d.maxOp = max(d.maxOp, b.MaxOp())
	d.history = append(d.history, b)
	d.hashes[b.key()] = hash
	d.bounds[b.key()] = max(bound, b.MaxOp())

	BatchesApplied.Inc()
	OpsApplied.Add(float64(len(b.Ops)))
	d.log.Debug("batch applied", "actor", b.Actor, "seq", b.Seq, "ops", len(b.Ops))
	return nil
}

// causalBound returns the largest op counter in the history the batch depends on.
func (d *Doc) causalBound(b *Batch) uint64 {
	bound := d.bounds[batchKey{actor: b.Actor, seq: b.Seq - 1}]
	for actor, seq := range b.Deps {
		if seq > 0 {
			bound = max(bound, d.bounds[batchKey{actor: actor, seq: seq}])
		}
	}
	return bound
}

// pendingKeys returns the keys of all pending batches in a deterministic order.
func (d *Doc) pendingKeys() []batchKey {
	return slices.SortedFunc(maps.Keys(d.pending), func(a, b batchKey) int {
		if c := cmp.Compare(a.actor, b.actor); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// Pending returns the batches waiting for their dependencies.
func (d *Doc) Pending() []*Batch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := d.pendingKeys()
	out := make([]*Batch, len(keys))
	for i, key := range keys {
		out[i] = d.pending[key].batch
	}
	return out
}

// Missing returns the clock entries that pending batches are waiting for.
func (d *Doc) Missing() Clock {
	d.mu.RLock()
	defer d.mu.RUnlock()
	missing := make(Clock)
	for _, p := range d.pending {
		missing.Merge(d.clock.Missing(p.batch))
	}
	return missing
}

// Abandon discards a pending batch. It returns false if no such batch is pending.
func (d *Doc) Abandon(actor object.ActorID, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := batchKey{actor: actor, seq: seq}
	if _, ok := d.pending[key]; !ok {
		return false
	}
	delete(d.pending, key)
	d.unsatisfiable.Remove(key)
	BatchesPending.Dec()
	d.log.Warn("batch abandoned", "actor", actor, "seq", seq)
	return true
}
