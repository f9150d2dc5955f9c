package core

import (
	"maps"
	"slices"
)

// fields is a keyed collection of conflict sets.
type fields map[string]register

func (f fields) set(key string, ctx opContext, e entry) {
	f[key] = f[key].set(ctx, e)
}

// remove clears the entries of key observed by ctx.
func (f fields) remove(key string, ctx opContext) {
	r := f[key].remove(ctx)
	if len(r) == 0 {
		delete(f, key)
		return
	}
	f[key] = r
}

// resolve returns the winning entry of key.
func (f fields) resolve(key string) (entry, bool) {
	return f[key].winner()
}

// keys returns all keys with a non empty conflict set in sorted order.
func (f fields) keys() []string {
	return slices.Sorted(maps.Keys(f))
}

func (f fields) clone() fields {
	out := make(fields, len(f))
	for k, r := range f {
		out[k] = r.clone()
	}
	return out
}
