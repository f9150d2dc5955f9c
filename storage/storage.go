package storage

import (
	"errors"

	"github.com/ipld/go-ipld-prime/storage"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("key not found")

// Storage is a key value store for encoded blocks and document heads.
type Storage interface {
	storage.ReadableStorage
	storage.WritableStorage
}
