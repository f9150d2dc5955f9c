package core

import (
	"fmt"
	"slices"
)

const (
	equalFilter          = "eq"
	notEqualFilter       = "neq"
	greaterFilter        = "gt"
	greaterOrEqualFilter = "gte"
	lessFilter           = "lt"
	lessOrEqualFilter    = "lte"
	inFilter             = "in"
	notInFilter          = "nin"
	andFilter            = "and"
	orFilter             = "or"
	notFilter            = "not"
	allFilter            = "all"
	anyFilter            = "any"
	noneFilter           = "none"
)

// Filter matches materialized rows against a document of operators.
//
// A filter document maps field names to operator documents, for example:
//
//	{"year": {"gte": 2000}, "or": [{"title": {"eq": "A"}}, {"title": {"eq": "B"}}]}
type Filter struct {
	value map[string]any
}

// NewFilter returns a filter for the given filter document.
func NewFilter(value map[string]any) *Filter {
	return &Filter{value: value}
}

// Match returns true if the row matches the filter.
func (f *Filter) Match(row *MapView) (bool, error) {
	return f.matchDocument(row, f.value)
}

func (f *Filter) matchDocument(row *MapView, value any) (bool, error) {
	if value == nil {
		return true, nil
	}
	doc, ok := value.(map[string]any)
	if !ok {
		return false, fmt.Errorf("filter must be a map")
	}
	for key, val := range doc {
		switch key {
		case andFilter:
			match, err := f.matchAnd(row, val)
			if err != nil || !match {
				return false, err
			}
		case orFilter:
			match, err := f.matchOr(row, val)
			if err != nil || !match {
				return false, err
			}
		case notFilter:
			match, err := f.matchDocument(row, val)
			if err != nil || match {
				return false, err
			}
		default:
			field, _ := row.Get(key)
			match, err := f.matchField(field, val)
			if err != nil || !match {
				return false, err
			}
		}
	}
	return true, nil
}

func (f *Filter) matchField(field any, value any) (bool, error) {
	if value == nil {
		return true, nil
	}
	ops, ok := value.(map[string]any)
	if !ok {
		return false, fmt.Errorf("field filter must be a map")
	}
	for key, val := range ops {
		switch key {
		case equalFilter:
			if !filterEqual(field, val) {
				return false, nil
			}
		case notEqualFilter:
			if filterEqual(field, val) {
				return false, nil
			}
		case greaterFilter:
			if !orderable(field, val) || compareValues(field, normalize(val)) <= 0 {
				return false, nil
			}
		case greaterOrEqualFilter:
			if !orderable(field, val) || compareValues(field, normalize(val)) < 0 {
				return false, nil
			}
		case lessFilter:
			if !orderable(field, val) || compareValues(field, normalize(val)) >= 0 {
				return false, nil
			}
		case lessOrEqualFilter:
			if !orderable(field, val) || compareValues(field, normalize(val)) > 0 {
				return false, nil
			}
		case inFilter:
			match, err := filterIn(field, val)
			if err != nil || !match {
				return false, err
			}
		case notInFilter:
			match, err := filterIn(field, val)
			if err != nil || match {
				return false, err
			}
		case allFilter:
			match, err := f.matchAll(field, val)
			if err != nil || !match {
				return false, err
			}
		case anyFilter:
			match, err := f.matchAny(field, val)
			if err != nil || !match {
				return false, err
			}
		case noneFilter:
			match, err := f.matchAny(field, val)
			if err != nil || match {
				return false, err
			}
		default:
			return false, fmt.Errorf("invalid filter operator %s", key)
		}
	}
	return true, nil
}

func (f *Filter) matchAnd(row *MapView, value any) (bool, error) {
	list, ok := value.([]any)
	if !ok {
		return false, fmt.Errorf("%s filter must be a list", andFilter)
	}
	for _, v := range list {
		match, err := f.matchDocument(row, v)
		if err != nil || !match {
			return false, err
		}
	}
	return true, nil
}

func (f *Filter) matchOr(row *MapView, value any) (bool, error) {
	list, ok := value.([]any)
	if !ok {
		return false, fmt.Errorf("%s filter must be a list", orFilter)
	}
	for _, v := range list {
		match, err := f.matchDocument(row, v)
		if err != nil || match {
			return match, err
		}
	}
	return len(list) == 0, nil
}

func (f *Filter) matchAll(field any, value any) (bool, error) {
	list, ok := field.(*ListView)
	if !ok {
		return false, nil
	}
	for _, v := range list.values {
		match, err := f.matchField(v, value)
		if err != nil || !match {
			return false, err
		}
	}
	return true, nil
}

func (f *Filter) matchAny(field any, value any) (bool, error) {
	list, ok := field.(*ListView)
	if !ok {
		return false, nil
	}
	for _, v := range list.values {
		match, err := f.matchField(v, value)
		if err != nil || match {
			return match, err
		}
	}
	return false, nil
}

// normalize widens filter arguments to the scalar types stored in documents.
func normalize(v any) any {
	s, err := ScalarValue(v)
	if err != nil {
		return v
	}
	return s.Scalar
}

// orderable returns true if the field and argument can be ordered.
func orderable(field, value any) bool {
	return field != nil && rank(field) == rank(normalize(value)) && rank(field) < 4
}

func filterEqual(field, value any) bool {
	value = normalize(value)
	if rank(field) != rank(value) || rank(field) == 4 {
		return false
	}
	return compareValues(field, value) == 0
}

func filterIn(field, value any) (bool, error) {
	list, ok := value.([]any)
	if !ok {
		return false, fmt.Errorf("%s filter must be a list", inFilter)
	}
	return slices.ContainsFunc(list, func(v any) bool {
		return filterEqual(field, v)
	}), nil
}
