package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	for _, c := range Collectors() {
		require.NoError(t, registry.Register(c))
	}
}

func TestMetricsCountBatches(t *testing.T) {
	applied := testutil.ToFloat64(BatchesApplied)
	ops := testutil.ToFloat64(OpsApplied)
	pending := testutil.ToFloat64(BatchesPending)

	a := newTestDoc("a")
	first := mustChange(t, a, func(tx *Transaction) error {
		if err := tx.Root().Set("x", 1); err != nil {
			return err
		}
		return tx.Root().Set("y", 2)
	})
	second := mustChange(t, a, func(tx *Transaction) error {
		return tx.Root().Set("x", 3)
	})
	assert.Equal(t, applied+2, testutil.ToFloat64(BatchesApplied))
	assert.Equal(t, ops+3, testutil.ToFloat64(OpsApplied))

	b := newTestDoc("b")
	_, err := b.ApplyBatches(second)
	require.NoError(t, err)
	assert.Equal(t, pending+1, testutil.ToFloat64(BatchesPending))

	_, err = b.ApplyBatches(first)
	require.NoError(t, err)
	assert.Equal(t, pending, testutil.ToFloat64(BatchesPending))
	assert.Equal(t, applied+4, testutil.ToFloat64(BatchesApplied))
}
