package core

import (
	"github.com/sanity-io/litter"
)

var dumpOptions = litter.Options{
	HidePrivateFields: false,
	Compact:           false,
	StripPackageNames: true,
}

// Dump returns a readable representation of the internal document state.
//
// This function is primarily used for testing.
func Dump(d *Doc) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return dumpOptions.Sdump(struct {
		Clock   Clock
		MaxOp   uint64
		Objects arena
		Pending []batchKey
	}{
		Clock:   d.clock,
		MaxOp:   d.maxOp,
		Objects: d.objects,
		Pending: d.pendingKeys(),
	})
}
