package core

import (
	"fmt"

	"github.com/nasdf/quill/object"
)

// Value is either a scalar or a link to a child object.
type Value struct {
	// Scalar is one of nil, bool, int64, float64, or string.
	Scalar any
	// Link is the id of a child object.
	Link object.ID
}

// ScalarValue returns a Value holding the given scalar.
//
// Go integer and float types are widened to int64 and float64.
func ScalarValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return Value{Scalar: t}, nil
	case int:
		return Value{Scalar: int64(t)}, nil
	case int8:
		return Value{Scalar: int64(t)}, nil
	case int16:
		return Value{Scalar: int64(t)}, nil
	case int32:
		return Value{Scalar: int64(t)}, nil
	case uint8:
		return Value{Scalar: int64(t)}, nil
	case uint16:
		return Value{Scalar: int64(t)}, nil
	case uint32:
		return Value{Scalar: int64(t)}, nil
	case float32:
		return Value{Scalar: float64(t)}, nil
	default:
		return Value{}, fmt.Errorf("invalid scalar value %T", v)
	}
}

// LinkValue returns a Value linking to the given object.
func LinkValue(id object.ID) Value {
	return Value{Link: id}
}

// IsLink returns true if the value links to a child object.
func (v Value) IsLink() bool {
	return v.Link != ""
}

func (v Value) String() string {
	if v.IsLink() {
		return "&" + string(v.Link)
	}
	return fmt.Sprintf("%v", v.Scalar)
}
