package quill

import (
	"context"
	"errors"

	"github.com/nasdf/quill/core"
	"github.com/nasdf/quill/link"
	"github.com/nasdf/quill/storage"

	"github.com/ipld/go-ipld-prime/datamodel"
)

// RootLinkKey is the name of the key for the root link.
const RootLinkKey = "root"

// New returns a new empty document.
func New(opts core.Options) *core.Doc {
	return core.New(opts)
}

// Open returns the document saved in the given storage.
//
// An empty document is returned if nothing has been saved yet.
func Open(ctx context.Context, store storage.Storage, opts core.Options) (*core.Doc, error) {
	rootLink, err := RootLink(ctx, store)
	if errors.Is(err, storage.ErrNotFound) {
		return core.New(opts), nil
	}
	if err != nil {
		return nil, err
	}
	return core.Load(ctx, link.NewStore(store), rootLink, opts)
}

// Save writes the document to the given storage and updates the root link.
func Save(ctx context.Context, store storage.Storage, doc *core.Doc) (datamodel.Link, error) {
	rootLink, err := core.Save(ctx, link.NewStore(store), doc)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, RootLinkKey, []byte(rootLink.String())); err != nil {
		return nil, err
	}
	return rootLink, nil
}

// RootLink returns the link of the last saved root.
func RootLink(ctx context.Context, store storage.Storage) (datamodel.Link, error) {
	data, err := store.Get(ctx, RootLinkKey)
	if err != nil {
		return nil, err
	}
	return link.ParseLink(string(data))
}
