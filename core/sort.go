package core

import (
	"cmp"
	"slices"
)

// rank orders values of different types: null, bool, number, string, other.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// compareValues returns the ordering of two materialized values.
//
// Integers and floats compare numerically. Values of different types are
// ordered by type rank.
func compareValues(a, b any) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
		return cmp.Compare(float64(x), b.(float64))
	case float64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, float64(y))
		}
		return cmp.Compare(x, b.(float64))
	case string:
		return cmp.Compare(x, b.(string))
	default:
		return 0
	}
}

// sortRows returns a stably sorted copy of rows.
func sortRows(rows []*MapView, fn func(a, b *MapView) int) []*MapView {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, fn)
	return out
}

// byColumns returns a comparator ordering rows by the given columns in turn.
func byColumns(columns []string) func(a, b *MapView) int {
	return func(a, b *MapView) int {
		for _, col := range columns {
			x, _ := a.Get(col)
			y, _ := b.Get(col)
			if c := compareValues(x, y); c != 0 {
				return c
			}
		}
		return 0
	}
}
