package test

import (
	"embed"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed cases
var casesFS embed.FS

type TestCase struct {
	// Description is a simple description for the test case.
	Description string
	// Replicas is the list of replica names. Each name is also the replica actor id.
	Replicas []string
	// Steps is a list of changes and syncs to run in order.
	Steps []Step
	// Expect contains the state every replica must converge to.
	Expect Expect
}

type Step struct {
	// Replica is the name of the replica that runs the change.
	Replica string
	// Change is a list of edits applied within a single change.
	Change []Edit
	// Sync contains the source and destination replica names.
	Sync []string
	// Reverse delivers synced batches in reverse order.
	Reverse bool
	// Error is the expected error of the step.
	Error string
}

type Edit struct {
	// Op is the name of the edit operation.
	Op string
	// Path is the list of map keys leading to the target map.
	Path []string
	// Key is the key of the target within the map.
	Key string
	// Field is the row field for row edits.
	Field string
	// Index is the list index for list edits.
	Index int
	// Value is the value to write.
	Value any
	// Columns contains the table column names.
	Columns []string
	// Row is either a row input to add or the name of a previously added row.
	Row any
	// Name is used to remember the id of an added row.
	Name string
}

type Expect struct {
	// JSON is the expected snapshot of every replica.
	JSON string
	// IDs maps top level table keys to expected row ids.
	IDs map[string][]string
	// Pending is the expected number of pending batches per replica.
	Pending int
}

// TestCasePaths returns a list of all test case file paths.
func TestCasePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(casesFS, "cases", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadTestCase loads and parses a test case file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := fs.ReadFile(casesFS, path)
	if err != nil {
		return nil, err
	}
	var testCase TestCase
	if err := yaml.Unmarshal(data, &testCase); err != nil {
		return nil, err
	}
	return &testCase, nil
}
