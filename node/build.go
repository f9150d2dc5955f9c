package node

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// Build returns a new node assembled from the given go value.
//
// Map entries are assembled in sorted key order so that equal values
// always produce identical encodings.
func Build(value any) (datamodel.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := assignValue(value, nb); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

func assignValue(value any, na datamodel.NodeAssembler) error {
	switch v := value.(type) {
	case nil:
		return na.AssignNull()
	case bool:
		return na.AssignBool(v)
	case string:
		return na.AssignString(v)
	case []byte:
		return na.AssignBytes(v)
	case int:
		return na.AssignInt(int64(v))
	case int64:
		return na.AssignInt(v)
	case uint64:
		return na.AssignInt(int64(v))
	case float64:
		return na.AssignFloat(v)
	case datamodel.Link:
		return na.AssignLink(v)
	case datamodel.Node:
		return na.AssignNode(v)
	case []any:
		return assignList(v, na)
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return assignList(list, na)
	case []datamodel.Link:
		list := make([]any, len(v))
		for i, l := range v {
			list[i] = l
		}
		return assignList(list, na)
	case map[string]any:
		return assignMap(v, na)
	default:
		return fmt.Errorf("invalid node value %T", value)
	}
}

func assignList(value []any, na datamodel.NodeAssembler) error {
	la, err := na.BeginList(int64(len(value)))
	if err != nil {
		return err
	}
	for _, v := range value {
		err := assignValue(v, la.AssembleValue())
		if err != nil {
			return err
		}
	}
	return la.Finish()
}

func assignMap(value map[string]any, na datamodel.NodeAssembler) error {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ma, err := na.BeginMap(int64(len(value)))
	if err != nil {
		return err
	}
	for _, k := range keys {
		ea, err := ma.AssembleEntry(k)
		if err != nil {
			return err
		}
		err = assignValue(value[k], ea)
		if err != nil {
			return err
		}
	}
	return ma.Finish()
}

// EncodeCBOR returns the dag-cbor encoding of the given node.
func EncodeCBOR(n datamodel.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := dagcbor.Encode(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSON returns the dag-json encoding of the given node.
func EncodeJSON(n datamodel.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := dagjson.Encode(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
