package test

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/nasdf/quill/core"
	"github.com/nasdf/quill/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (tc TestCase) Run(t *testing.T) {
	t.Parallel()

	replicas := make(map[string]*core.Doc)
	for _, name := range tc.Replicas {
		replicas[name] = core.New(core.Options{Actor: object.ActorID(name)})
	}
	rows := make(map[string]string)

	for i, step := range tc.Steps {
		var err error
		switch {
		case len(step.Sync) == 2:
			src, dst := replicas[step.Sync[0]], replicas[step.Sync[1]]
			require.NotNil(t, src, "step %d: unknown replica %s", i, step.Sync[0])
			require.NotNil(t, dst, "step %d: unknown replica %s", i, step.Sync[1])

			batches := src.BatchesSince(dst.Clock())
			if step.Reverse {
				slices.Reverse(batches)
			}
			_, err = dst.ApplyBatches(batches...)

		default:
			doc := replicas[step.Replica]
			require.NotNil(t, doc, "step %d: unknown replica %s", i, step.Replica)

			_, _, err = doc.Change(func(tx *core.Transaction) error {
				for _, edit := range step.Change {
					if err := runEdit(tx, edit, rows); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if step.Error != "" {
			assert.ErrorContains(t, err, step.Error, "step %d", i)
		} else {
			require.NoError(t, err, "step %d", i)
		}
	}

	for name, doc := range replicas {
		if tc.Expect.JSON != "" {
			actual, err := json.Marshal(doc.Snapshot())
			require.NoError(t, err)
			assert.JSONEq(t, tc.Expect.JSON, string(actual), "replica %s\n%s", name, core.Dump(doc))
		}
		for key, ids := range tc.Expect.IDs {
			table, ok := doc.Snapshot().Root().Table(key)
			require.True(t, ok, "replica %s: missing table %s", name, key)
			assert.Equal(t, ids, table.IDs(), "replica %s", name)
		}
		assert.Len(t, doc.Pending(), tc.Expect.Pending, "replica %s", name)
	}
}

func runEdit(tx *core.Transaction, edit Edit, rows map[string]string) error {
	m := tx.Root()
	for _, key := range edit.Path {
		next, ok := m.Map(key)
		if !ok {
			return fmt.Errorf("invalid path %v", edit.Path)
		}
		m = next
	}
	switch edit.Op {
	case "set":
		return m.Set(edit.Key, edit.Value)
	case "delete":
		return m.Delete(edit.Key)
	case "makeTable":
		_, err := m.MakeTable(edit.Key, edit.Columns...)
		return err
	}

	list, isList := m.List(edit.Key)
	switch edit.Op {
	case "push":
		if !isList {
			return fmt.Errorf("%s is not a list", edit.Key)
		}
		values, _ := edit.Value.([]any)
		return list.Push(values...)
	case "insert":
		if !isList {
			return fmt.Errorf("%s is not a list", edit.Key)
		}
		return list.Insert(edit.Index, edit.Value)
	case "deleteIndex":
		if !isList {
			return fmt.Errorf("%s is not a list", edit.Key)
		}
		return list.Delete(edit.Index)
	}

	table, ok := m.Table(edit.Key)
	if !ok {
		return fmt.Errorf("%s is not a table", edit.Key)
	}
	switch edit.Op {
	case "add":
		id, err := table.Add(edit.Row)
		if err != nil {
			return err
		}
		if edit.Name != "" {
			rows[edit.Name] = id
		}
		return nil
	case "remove":
		return table.Remove(rows[fmt.Sprint(edit.Row)])
	case "setRow":
		row, ok := table.Row(rows[fmt.Sprint(edit.Row)])
		if !ok {
			return fmt.Errorf("unknown row %v", edit.Row)
		}
		return row.Set(edit.Field, edit.Value)
	case "setColumns":
		return table.SetColumns(edit.Columns...)
	default:
		return fmt.Errorf("invalid edit operation %s", edit.Op)
	}
}

func TestCases(t *testing.T) {
	paths, err := TestCasePaths()
	require.NoError(t, err, "failed to walk test cases dir")

	for _, path := range paths {
		testCase, err := LoadTestCase(path)
		require.NoError(t, err, "failed to load test case %s", path)

		t.Logf("Running test cases: %s", path)
		t.Run(testCase.Description, testCase.Run)
	}
}
