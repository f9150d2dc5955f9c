package core

import (
	"testing"

	"github.com/nasdf/quill/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNodeDecode(t *testing.T) {
	batch := &Batch{
		Actor:   "a",
		Seq:     2,
		StartOp: 7,
		Deps:    Clock{"a": 1, "b": 3},
		Ops: []Operation{
			{Action: ActionMakeList, Obj: object.RootID, Key: "items", Child: "7@a"},
			{Action: ActionInsert, Obj: "7@a", Key: HeadKey, Value: mustScalar("x")},
			{Action: ActionMakeMap, Obj: "7@a", Key: "8@a", Child: "9@a", Insert: true},
			{Action: ActionSet, Obj: "9@a", Key: "n", Value: mustScalar(1.5)},
			{Action: ActionSet, Obj: "9@a", Key: "null"},
			{Action: ActionDelete, Obj: object.RootID, Key: "old"},
		},
	}
	n, err := batch.Node()
	require.NoError(t, err)

	decoded, err := DecodeBatch(n)
	require.NoError(t, err)
	assert.Equal(t, batch, decoded)
}

func TestBatchHash(t *testing.T) {
	batch := &Batch{Actor: "a", Seq: 1, StartOp: 1, Deps: Clock{"b": 1, "c": 2}}
	other := &Batch{Actor: "a", Seq: 1, StartOp: 1, Deps: Clock{"c": 2, "b": 1}}

	hash, err := batch.Hash()
	require.NoError(t, err)
	otherHash, err := other.Hash()
	require.NoError(t, err)
	assert.True(t, hash.Equal(otherHash))

	other.StartOp = 2
	otherHash, err = other.Hash()
	require.NoError(t, err)
	assert.False(t, hash.Equal(otherHash))
}

func TestBatchMaxOp(t *testing.T) {
	batch := &Batch{Actor: "a", StartOp: 5, Ops: make([]Operation, 3)}

	assert.Equal(t, uint64(7), batch.MaxOp())
	assert.Equal(t, object.OpID{Counter: 6, Actor: "a"}, batch.OpID(1))
}

func TestParseAction(t *testing.T) {
	for _, action := range []Action{ActionMakeMap, ActionMakeList, ActionMakeTable, ActionInsert, ActionSet, ActionDelete} {
		parsed, err := ParseAction(action.String())
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
	}
	_, err := ParseAction("move")
	assert.Error(t, err)

	kind, ok := ActionMakeTable.Kind()
	assert.True(t, ok)
	assert.Equal(t, object.KindTable, kind)

	_, ok = ActionSet.Kind()
	assert.False(t, ok)
}

func TestScalarValue(t *testing.T) {
	v, err := ScalarValue(int32(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Scalar)

	v, err = ScalarValue(float32(0.5))
	require.NoError(t, err)
	assert.Equal(t, float64(0.5), v.Scalar)

	_, err = ScalarValue([]byte("x"))
	assert.Error(t, err)

	assert.Equal(t, "&1@a", LinkValue("1@a").String())
}
