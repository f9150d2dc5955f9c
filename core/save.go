package core

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/nasdf/quill/link"
	"github.com/nasdf/quill/node"
	"github.com/nasdf/quill/object"
	"github.com/nasdf/quill/storage"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

const (
	// RootVersionFieldName is the name of the version field on a root.
	RootVersionFieldName = "version"
	// RootActorFieldName is the name of the actor field on a root.
	RootActorFieldName = "actor"
	// RootBatchesFieldName is the name of the batches field on a root.
	RootBatchesFieldName = "batches"
	// RootClockFieldName is the name of the clock field on a root.
	RootClockFieldName = "clock"
)

// saveVersion is the version of the root node layout.
const saveVersion = 1

// Save writes all applied batches to the given store and returns the link
// of a root node referencing them.
func Save(ctx context.Context, links *link.Store, doc *Doc) (datamodel.Link, error) {
	batches, docClock := doc.checkpoint()
	batchLinks := make([]datamodel.Link, len(batches))
	for i, b := range batches {
		n, err := b.Node()
		if err != nil {
			return nil, err
		}
		lnk, err := links.Store(ctx, n)
		if err != nil {
			return nil, err
		}
		batchLinks[i] = lnk
	}
	clock := make(map[string]any)
	for actor, seq := range docClock {
		clock[string(actor)] = int64(seq)
	}
	rootNode, err := node.Build(map[string]any{
		RootVersionFieldName: int64(saveVersion),
		RootActorFieldName:   string(doc.Actor()),
		RootBatchesFieldName: batchLinks,
		RootClockFieldName:   clock,
	})
	if err != nil {
		return nil, err
	}
	return links.Store(ctx, rootNode)
}

// Load returns a document containing all batches referenced by the given root link.
//
// The saved actor is reused when opts does not set one.
func Load(ctx context.Context, links *link.Store, rootLink datamodel.Link, opts Options) (*Doc, error) {
	rootNode, err := links.Load(ctx, rootLink, basicnode.Prototype.Map)
	if err != nil {
		return nil, err
	}
	root, err := node.MapValue(rootNode)
	if err != nil {
		return nil, err
	}
	version, _ := root[RootVersionFieldName].(int64)
	if version != saveVersion {
		return nil, fmt.Errorf("unsupported root version %d", version)
	}
	batchLinks, ok := root[RootBatchesFieldName].([]any)
	if !ok {
		return nil, fmt.Errorf("invalid root batches")
	}
	batches := make([]*Batch, len(batchLinks))
	for i, v := range batchLinks {
		lnk, ok := v.(datamodel.Link)
		if !ok {
			return nil, fmt.Errorf("invalid batch link %d", i)
		}
		n, err := links.Load(ctx, lnk, basicnode.Prototype.Any)
		if err != nil {
			return nil, err
		}
		batches[i], err = DecodeBatch(n)
		if err != nil {
			return nil, err
		}
	}
	if opts.Actor == "" {
		actor, _ := root[RootActorFieldName].(string)
		opts.Actor = object.ActorID(actor)
	}
	doc := New(opts)
	if _, err := doc.ApplyBatches(batches...); err != nil {
		return nil, err
	}
	if len(doc.Pending()) > 0 {
		return nil, fmt.Errorf("saved document is missing batches %v", doc.Missing())
	}
	saved := make(Clock)
	clock, _ := root[RootClockFieldName].(map[string]any)
	for actor, v := range clock {
		seq, _ := v.(int64)
		saved[object.ActorID(actor)] = uint64(seq)
	}
	if !maps.Equal(saved, doc.Clock()) {
		return nil, fmt.Errorf("saved clock %v does not match batches %v", saved, doc.Clock())
	}
	return doc, nil
}

// Export writes the document as a CAR archive to the given io.Writer.
func (d *Doc) Export(ctx context.Context, out io.Writer) error {
	links := link.NewStore(storage.NewMemory())
	rootLink, err := Save(ctx, links, d)
	if err != nil {
		return err
	}
	return links.Export(ctx, rootLink, out)
}

// Import reads a document from a CAR archive written by Export.
func Import(ctx context.Context, in io.Reader, opts Options) (*Doc, error) {
	links := link.NewStore(storage.NewMemory())
	rootLink, err := links.Import(ctx, in)
	if err != nil {
		return nil, err
	}
	return Load(ctx, links, rootLink, opts)
}
