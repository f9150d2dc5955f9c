package core

import (
	"fmt"

	"github.com/nasdf/quill/node"
	"github.com/nasdf/quill/object"

	"github.com/ipld/go-ipld-prime/datamodel"
)

// HeadKey is the list key used to insert at the start of a list.
const HeadKey = "_head"

// ColumnsKey is the table key that holds the column list.
const ColumnsKey = "columns"

// Action is the kind of an operation.
type Action uint8

const (
	ActionMakeMap Action = iota + 1
	ActionMakeList
	ActionMakeTable
	ActionInsert
	ActionSet
	ActionDelete
)

var actionNames = map[Action]string{
	ActionMakeMap:   "makeMap",
	ActionMakeList:  "makeList",
	ActionMakeTable: "makeTable",
	ActionInsert:    "ins",
	ActionSet:       "set",
	ActionDelete:    "del",
}

func (a Action) String() string {
	name, ok := actionNames[a]
	if !ok {
		return fmt.Sprintf("action(%d)", uint8(a))
	}
	return name
}

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("invalid action %s", name)
}

// Kind returns the object kind created by a make action.
func (a Action) Kind() (object.Kind, bool) {
	switch a {
	case ActionMakeMap:
		return object.KindMap, true
	case ActionMakeList:
		return object.KindList, true
	case ActionMakeTable:
		return object.KindTable, true
	default:
		return 0, false
	}
}

// Operation is a single mutation of a replicated object.
//
// The identity of an operation is derived from its position in a batch.
type Operation struct {
	// Action is the kind of mutation.
	Action Action
	// Obj is the id of the target object.
	Obj object.ID
	// Key is the map key, list element id, or table row id.
	Key string
	// Value is the scalar assigned by set and insert actions.
	Value Value
	// Child is the id of the object created by a make action.
	Child object.ID
	// Insert is true when a make action inserts a new list element after Key.
	Insert bool
}

// Batch is an ordered group of operations authored by a single actor.
//
// Batches are the unit of causal delivery and atomic application.
// A batch must not be modified once it has been emitted.
type Batch struct {
	// Actor is the author of all operations in the batch.
	Actor object.ActorID
	// Seq is the per actor sequence number starting at 1.
	Seq uint64
	// StartOp is the counter of the first operation.
	StartOp uint64
	// Deps is the clock observed by the author when the batch was created.
	Deps Clock
	// Ops contains the operations in application order.
	Ops []Operation
}

// OpID returns the id of the operation at the given index.
func (b *Batch) OpID(i int) object.OpID {
	return object.OpID{Counter: b.StartOp + uint64(i), Actor: b.Actor}
}

// MaxOp returns the largest operation counter in the batch.
func (b *Batch) MaxOp() uint64 {
	if len(b.Ops) == 0 {
		return b.StartOp
	}
	return b.StartOp + uint64(len(b.Ops)) - 1
}

func (b *Batch) key() batchKey {
	return batchKey{actor: b.Actor, seq: b.Seq}
}

// Hash returns the content hash of the encoded batch.
func (b *Batch) Hash() (object.Hash, error) {
	n, err := b.Node()
	if err != nil {
		return nil, err
	}
	data, err := node.EncodeCBOR(n)
	if err != nil {
		return nil, err
	}
	return object.Sum(data), nil
}

// Node returns the IPLD representation of the batch.
func (b *Batch) Node() (datamodel.Node, error) {
	deps := make(map[string]any, len(b.Deps))
	for actor, seq := range b.Deps {
		deps[string(actor)] = int64(seq)
	}
	ops := make([]any, len(b.Ops))
	for i, op := range b.Ops {
		entry := map[string]any{
			"action": op.Action.String(),
			"obj":    string(op.Obj),
		}
		if op.Key != "" {
			entry["key"] = op.Key
		}
		if op.Value.IsLink() {
			entry["link"] = string(op.Value.Link)
		} else if op.Value.Scalar != nil {
			entry["value"] = op.Value.Scalar
		}
		if op.Child != "" {
			entry["child"] = string(op.Child)
		}
		if op.Insert {
			entry["insert"] = true
		}
		ops[i] = entry
	}
	return node.Build(map[string]any{
		"actor":   string(b.Actor),
		"seq":     int64(b.Seq),
		"startOp": int64(b.StartOp),
		"deps":    deps,
		"ops":     ops,
	})
}

// DecodeBatch returns the batch represented by the given IPLD node.
func DecodeBatch(n datamodel.Node) (*Batch, error) {
	value, err := node.MapValue(n)
	if err != nil {
		return nil, err
	}
	actor, ok := value["actor"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid batch actor")
	}
	seq, ok := value["seq"].(int64)
	if !ok || seq < 0 {
		return nil, fmt.Errorf("invalid batch seq")
	}
	startOp, ok := value["startOp"].(int64)
	if !ok || startOp < 0 {
		return nil, fmt.Errorf("invalid batch start op")
	}
	deps, ok := value["deps"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid batch deps")
	}
	ops, ok := value["ops"].([]any)
	if !ok {
		return nil, fmt.Errorf("invalid batch ops")
	}
	b := &Batch{
		Actor:   object.ActorID(actor),
		Seq:     uint64(seq),
		StartOp: uint64(startOp),
		Deps:    make(Clock, len(deps)),
		Ops:     make([]Operation, len(ops)),
	}
	for k, v := range deps {
		s, ok := v.(int64)
		if !ok || s < 0 {
			return nil, fmt.Errorf("invalid dependency %s", k)
		}
		b.Deps[object.ActorID(k)] = uint64(s)
	}
	for i, v := range ops {
		op, err := decodeOperation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid operation %d: %w", i, err)
		}
		b.Ops[i] = op
	}
	return b, nil
}

func decodeOperation(v any) (Operation, error) {
	entry, ok := v.(map[string]any)
	if !ok {
		return Operation{}, fmt.Errorf("operation must be a map")
	}
	name, _ := entry["action"].(string)
	action, err := ParseAction(name)
	if err != nil {
		return Operation{}, err
	}
	obj, _ := entry["obj"].(string)
	key, _ := entry["key"].(string)
	child, _ := entry["child"].(string)
	insert, _ := entry["insert"].(bool)
	op := Operation{
		Action: action,
		Obj:    object.ID(obj),
		Key:    key,
		Child:  object.ID(child),
		Insert: insert,
	}
	if link, ok := entry["link"].(string); ok {
		op.Value = LinkValue(object.ID(link))
		return op, nil
	}
	op.Value, err = ScalarValue(entry["value"])
	if err != nil {
		return Operation{}, err
	}
	return op, nil
}
