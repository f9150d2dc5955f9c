package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nasdf/quill/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunImportShowLog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	archive := filepath.Join(dir, "doc.car")

	doc := core.New(core.Options{Actor: "a"})
	_, _, err := doc.Change(func(tx *core.Transaction) error {
		return tx.Root().Set("title", "Dune")
	})
	require.NoError(t, err)

	f, err := os.Create(archive)
	require.NoError(t, err)
	require.NoError(t, doc.Export(ctx, f))
	require.NoError(t, f.Close())

	var out bytes.Buffer
	require.NoError(t, run(ctx, &out, db, slog.LevelWarn, []string{"import", archive}))
	assert.Empty(t, out.String())

	require.NoError(t, run(ctx, &out, db, slog.LevelWarn, []string{"show"}))
	assert.JSONEq(t, `{"title":"Dune"}`, out.String())

	out.Reset()
	require.NoError(t, run(ctx, &out, db, slog.LevelWarn, []string{"log"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var batch map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &batch))
	assert.Equal(t, "a", batch["actor"])
	assert.Equal(t, float64(1), batch["seq"])
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	db := filepath.Join(t.TempDir(), "db")

	var out bytes.Buffer
	assert.EqualError(t, run(ctx, &out, db, slog.LevelWarn, []string{"export"}), "export requires a file name")
	assert.EqualError(t, run(ctx, &out, db, slog.LevelWarn, []string{"nope"}), "unknown command nope")
}
