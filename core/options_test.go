package core

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	assert.NotEmpty(t, opts.Actor)
	assert.NotNil(t, opts.Logger)
	assert.Equal(t, defaultMaxPending, opts.MaxPending)

	other := Options{Actor: "a", MaxPending: 3}
	other.SetDefaults()
	assert.Equal(t, "a", string(other.Actor))
	assert.Equal(t, 3, other.MaxPending)
}

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	doc := New(Options{Actor: "a", Logger: logger})
	_, err := doc.ApplyBatches(&Batch{Actor: "b", Seq: 1, StartOp: 1, Deps: Clock{"b": 1}})
	assert.ErrorIs(t, err, ErrUnsatisfiableDependency)

	assert.Contains(t, buf.String(), `msg="[quill] batch can never be applied"`)
	assert.Contains(t, buf.String(), "actor=b")
}
