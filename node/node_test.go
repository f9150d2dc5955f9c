package node

import (
	"testing"

	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValue(t *testing.T) {
	prefix := cid.Prefix{Version: 1, Codec: 0x71, MhType: 0x12, MhLength: -1}
	id, err := prefix.Sum([]byte("hello"))
	require.NoError(t, err)
	lnk := cidlink.Link{Cid: id}

	input := map[string]any{
		"name":   "Bob",
		"age":    int64(42),
		"score":  float64(1.5),
		"admin":  true,
		"nested": map[string]any{"missing": nil},
		"tags":   []any{"a", int64(1)},
		"link":   lnk,
	}
	n, err := Build(input)
	require.NoError(t, err)

	actual, err := Value(n)
	require.NoError(t, err)
	assert.Equal(t, input, actual)
}

func TestBuildInvalid(t *testing.T) {
	_, err := Build(struct{}{})
	assert.Error(t, err)
}

func TestEncodeSortedKeys(t *testing.T) {
	a, err := Build(map[string]any{"b": int64(1), "a": int64(2)})
	require.NoError(t, err)

	data, err := EncodeJSON(a)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(data))

	b, err := Build(map[string]any{"a": int64(2), "b": int64(1)})
	require.NoError(t, err)

	x, err := EncodeCBOR(a)
	require.NoError(t, err)
	y, err := EncodeCBOR(b)
	require.NoError(t, err)
	assert.Equal(t, x, y)
}
