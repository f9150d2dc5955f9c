package object

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RootID is the id of the root map that every document starts with.
const RootID ID = "_root"

// ActorID uniquely identifies a replica or editing session.
type ActorID string

// NewActorID returns a new random actor id.
func NewActorID() ActorID {
	return ActorID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// OpID is the globally unique identity of an operation.
type OpID struct {
	// Counter is the Lamport counter assigned by the author.
	Counter uint64
	// Actor is the author of the operation.
	Actor ActorID
}

// Compare orders ids by counter first and actor second.
func (id OpID) Compare(other OpID) int {
	if c := cmp.Compare(id.Counter, other.Counter); c != 0 {
		return c
	}
	return cmp.Compare(id.Actor, other.Actor)
}

// IsZero returns true if the id was never assigned.
func (id OpID) IsZero() bool {
	return id.Counter == 0 && id.Actor == ""
}

// String returns the id in counter@actor form.
func (id OpID) String() string {
	return strconv.FormatUint(id.Counter, 10) + "@" + string(id.Actor)
}

// ParseOpID parses an id in counter@actor form.
func ParseOpID(s string) (OpID, error) {
	counter, actor, ok := strings.Cut(s, "@")
	if !ok || actor == "" {
		return OpID{}, fmt.Errorf("invalid op id %q", s)
	}
	n, err := strconv.ParseUint(counter, 10, 64)
	if err != nil || n == 0 {
		return OpID{}, fmt.Errorf("invalid op id %q", s)
	}
	return OpID{Counter: n, Actor: ActorID(actor)}, nil
}

// ID identifies a replicated object.
//
// Every object except the root is named after the operation that created it.
type ID string

// IDFromOp returns the object id created by the operation with the given id.
func IDFromOp(op OpID) ID {
	return ID(op.String())
}

// OpID returns the id of the operation that created the object.
func (id ID) OpID() (OpID, error) {
	if id == RootID {
		return OpID{}, nil
	}
	return ParseOpID(string(id))
}

// Kind is the type of a replicated object.
type Kind uint8

const (
	KindMap Kind = iota + 1
	KindList
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
