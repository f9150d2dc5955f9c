package storage

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

type pebbleStorage struct {
	db   *pebble.DB
	opts *pebble.WriteOptions
}

// NewPebble returns a new Storage backed by the given pebble database.
//
// Writes are synced to disk unless noSync is set.
func NewPebble(db *pebble.DB, noSync bool) Storage {
	opts := pebble.Sync
	if noSync {
		opts = pebble.NoSync
	}
	return &pebbleStorage{
		db:   db,
		opts: opts,
	}
}

// OpenPebble opens or creates a pebble database in the given directory.
func OpenPebble(dir string, opts *pebble.Options) (*pebble.DB, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	return pebble.Open(dir, opts)
}

func (p *pebbleStorage) Has(ctx context.Context, key string) (bool, error) {
	_, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (p *pebbleStorage) Get(ctx context.Context, key string) ([]byte, error) {
	content, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// the returned slice is only valid until the closer is called
	val := make([]byte, len(content))
	copy(val, content)
	return val, closer.Close()
}

func (p *pebbleStorage) Put(ctx context.Context, key string, content []byte) error {
	return p.db.Set([]byte(key), content, p.opts)
}
