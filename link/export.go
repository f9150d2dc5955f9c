package link

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ipld/go-car/v2"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/traversal/selector"
	"github.com/ipld/go-ipld-prime/traversal/selector/builder"
)

// Export writes a CAR containing the DAG starting from the given root link to the given io.Writer.
func (s *Store) Export(ctx context.Context, rootLink datamodel.Link, out io.Writer) error {
	cid := rootLink.(cidlink.Link).Cid
	ssb := builder.NewSelectorSpecBuilder(basicnode.Prototype.Any)
	sel := ssb.ExploreRecursive(selector.RecursionLimitNone(), ssb.ExploreAll(ssb.ExploreRecursiveEdge()))

	w, err := car.NewSelectiveWriter(ctx, &s.lsys, cid, sel.Node())
	if err != nil {
		return err
	}
	_, err = w.WriteTo(out)
	return err
}

// Import reads all blocks from the CAR in the given io.Reader into the store and returns its root link.
func (s *Store) Import(ctx context.Context, in io.Reader) (datamodel.Link, error) {
	br, err := car.NewBlockReader(in)
	if err != nil {
		return nil, err
	}
	if len(br.Roots) != 1 {
		return nil, fmt.Errorf("expected exactly one root but found %d", len(br.Roots))
	}
	for {
		blk, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		// keys must match the ones written by the link system
		key := cidlink.Link{Cid: blk.Cid()}.Binary()
		if err := s.storage.Put(ctx, key, blk.RawData()); err != nil {
			return nil, err
		}
	}
	return cidlink.Link{Cid: br.Roots[0]}, nil
}
