package core

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/nasdf/quill/object"
)

// resolver returns the state of the object with the given id.
type resolver func(object.ID) (*objectState, bool)

// materialize returns the read-only view of the object with the given id.
func materialize(get resolver, id object.ID) any {
	obj, ok := get(id)
	if !ok {
		return nil
	}
	switch obj.kind {
	case object.KindMap:
		return materializeMap(get, obj)
	case object.KindList:
		return materializeList(get, obj)
	case object.KindTable:
		return materializeTable(get, obj)
	}
	return nil
}

func materializeValue(get resolver, v Value) any {
	if v.IsLink() {
		return materialize(get, v.Link)
	}
	return v.Scalar
}

func materializeMap(get resolver, obj *objectState) *MapView {
	m := &MapView{
		id:     obj.id,
		keys:   obj.fields.keys(),
		values: make(map[string]any, len(obj.fields)),
	}
	for _, key := range m.keys {
		r := obj.fields[key]
		winner, _ := r.winner()
		m.values[key] = materializeValue(get, winner.value)
		if len(r) < 2 {
			continue
		}
		if m.conflicts == nil {
			m.conflicts = make(map[string][]any)
		}
		for _, e := range r {
			m.conflicts[key] = append(m.conflicts[key], materializeValue(get, e.value))
		}
	}
	return m
}

func materializeList(get resolver, obj *objectState) *ListView {
	live := obj.items.live()
	l := &ListView{
		id:     obj.id,
		ids:    make([]object.OpID, 0, len(live)),
		values: make([]any, 0, len(live)),
	}
	for _, e := range live {
		winner, ok := e.value.winner()
		if !ok {
			continue
		}
		l.ids = append(l.ids, e.id)
		l.values = append(l.values, materializeValue(get, winner.value))
	}
	return l
}

func materializeTable(get resolver, obj *objectState) *TableView {
	t := &TableView{
		id:   obj.id,
		rows: make(map[string]*MapView),
	}
	if winner, ok := obj.columns.winner(); ok {
		if cols, ok := materializeValue(get, winner.value).(*ListView); ok {
			for _, v := range cols.values {
				t.columns = append(t.columns, columnName(v))
			}
		}
	}
	ids := make([]object.OpID, 0, len(obj.fields))
	for _, key := range obj.fields.keys() {
		winner, _ := obj.fields.resolve(key)
		if winner.value.Link != object.ID(key) {
			continue
		}
		row, ok := materialize(get, winner.value.Link).(*MapView)
		if !ok {
			continue
		}
		id, err := object.ID(key).OpID()
		if err != nil {
			continue
		}
		ids = append(ids, id)
		t.rows[key] = row
	}
	slices.SortFunc(ids, object.OpID.Compare)
	t.ids = make([]string, 0, len(ids))
	for _, id := range ids {
		t.ids = append(t.ids, id.String())
	}
	return t
}

func columnName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// plain converts views into plain Go values.
func plain(v any) any {
	switch t := v.(type) {
	case *MapView:
		return t.Value()
	case *ListView:
		return t.Value()
	case *TableView:
		return t.Value()
	default:
		return v
	}
}

// MapView is a read-only materialized map.
type MapView struct {
	id        object.ID
	keys      []string
	values    map[string]any
	conflicts map[string][]any
}

// ID returns the object id of the map.
func (m *MapView) ID() object.ID {
	return m.id
}

// Get returns the winning value of the given key.
//
// Nested objects are returned as *MapView, *ListView, or *TableView.
func (m *MapView) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys of the map in sorted order.
func (m *MapView) Keys() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of keys in the map.
func (m *MapView) Len() int {
	return len(m.keys)
}

// Conflicts returns all concurrently written values of the given key
// ordered by their operation ids. The last value is the winner.
//
// Nil is returned when the key has no conflicts.
func (m *MapView) Conflicts(key string) []any {
	return slices.Clone(m.conflicts[key])
}

// Map returns the nested map stored under the given key.
func (m *MapView) Map(key string) (*MapView, bool) {
	v, ok := m.values[key].(*MapView)
	return v, ok
}

// List returns the nested list stored under the given key.
func (m *MapView) List(key string) (*ListView, bool) {
	v, ok := m.values[key].(*ListView)
	return v, ok
}

// Table returns the nested table stored under the given key.
func (m *MapView) Table(key string) (*TableView, bool) {
	v, ok := m.values[key].(*TableView)
	return v, ok
}

// Value returns the map as plain Go values.
func (m *MapView) Value() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = plain(v)
	}
	return out
}

// MarshalJSON encodes the winning values of the map.
func (m *MapView) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value())
}

// ListView is a read-only materialized list.
type ListView struct {
	id     object.ID
	ids    []object.OpID
	values []any
}

// ID returns the object id of the list.
func (l *ListView) ID() object.ID {
	return l.id
}

// Len returns the number of live elements.
func (l *ListView) Len() int {
	return len(l.values)
}

// Get returns the value at the given index.
func (l *ListView) Get(i int) (any, bool) {
	if i < 0 || i >= len(l.values) {
		return nil, false
	}
	return l.values[i], true
}

// ElementID returns the position id of the element at the given index.
func (l *ListView) ElementID(i int) (object.OpID, bool) {
	if i < 0 || i >= len(l.ids) {
		return object.OpID{}, false
	}
	return l.ids[i], true
}

// Values returns all live values in order.
func (l *ListView) Values() []any {
	return slices.Clone(l.values)
}

// Map returns the nested map at the given index.
func (l *ListView) Map(i int) (*MapView, bool) {
	v, _ := l.Get(i)
	m, ok := v.(*MapView)
	return m, ok
}

// List returns the nested list at the given index.
func (l *ListView) List(i int) (*ListView, bool) {
	v, _ := l.Get(i)
	m, ok := v.(*ListView)
	return m, ok
}

// Table returns the nested table at the given index.
func (l *ListView) Table(i int) (*TableView, bool) {
	v, _ := l.Get(i)
	m, ok := v.(*TableView)
	return m, ok
}

// Value returns the list as plain Go values.
func (l *ListView) Value() []any {
	out := make([]any, len(l.values))
	for i, v := range l.values {
		out[i] = plain(v)
	}
	return out
}

// MarshalJSON encodes the live values of the list.
func (l *ListView) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Value())
}

// TableView is a read-only materialized table.
type TableView struct {
	id      object.ID
	columns []string
	ids     []string
	rows    map[string]*MapView
}

// ID returns the object id of the table.
func (t *TableView) ID() object.ID {
	return t.id
}

// Columns returns the column names in order.
func (t *TableView) Columns() []string {
	return slices.Clone(t.columns)
}

// Count returns the number of rows.
func (t *TableView) Count() int {
	return len(t.ids)
}

// IDs returns the row ids in creation order.
func (t *TableView) IDs() []string {
	return slices.Clone(t.ids)
}

// ByID returns the row with the given id.
func (t *TableView) ByID(id string) (*MapView, bool) {
	row, ok := t.rows[id]
	return row, ok
}

// Rows returns all rows in creation order.
func (t *TableView) Rows() []*MapView {
	out := make([]*MapView, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.rows[id]
	}
	return out
}

// All returns an iterator over row ids and rows in creation order.
func (t *TableView) All() iter.Seq2[string, *MapView] {
	return func(yield func(string, *MapView) bool) {
		for _, id := range t.ids {
			if !yield(id, t.rows[id]) {
				return
			}
		}
	}
}

// Each calls fn for every row in creation order.
func (t *TableView) Each(fn func(id string, row *MapView)) {
	for id, row := range t.All() {
		fn(id, row)
	}
}

// Filter returns the rows for which fn returns true.
func (t *TableView) Filter(fn func(row *MapView) bool) []*MapView {
	var out []*MapView
	for _, row := range t.All() {
		if fn(row) {
			out = append(out, row)
		}
	}
	return out
}

// Find returns the first row for which fn returns true.
func (t *TableView) Find(fn func(row *MapView) bool) (*MapView, bool) {
	for _, row := range t.All() {
		if fn(row) {
			return row, true
		}
	}
	return nil, false
}

// Where returns the rows matching the given filter document.
func (t *TableView) Where(filter map[string]any) ([]*MapView, error) {
	f := NewFilter(filter)
	var out []*MapView
	for _, row := range t.All() {
		match, err := f.Match(row)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, row)
		}
	}
	return out, nil
}

// Sort returns the rows sorted in ascending order by the given columns.
//
// Ties are broken by the following columns and then by creation order.
func (t *TableView) Sort(columns ...string) []*MapView {
	return sortRows(t.Rows(), byColumns(columns))
}

// SortFunc returns the rows sorted using the given comparison function.
func (t *TableView) SortFunc(fn func(a, b *MapView) int) []*MapView {
	return sortRows(t.Rows(), fn)
}

// Value returns the table as plain Go values.
func (t *TableView) Value() map[string]any {
	columns := make([]any, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c
	}
	rows := make(map[string]any, len(t.rows))
	for id, row := range t.rows {
		rows[id] = row.Value()
	}
	return map[string]any{
		"columns": columns,
		"rows":    rows,
	}
}

// MarshalJSON encodes the table as its columns and rows keyed by id.
func (t *TableView) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

// MapRows returns the result of calling fn on every row in creation order.
func MapRows[T any](t *TableView, fn func(row *MapView) T) []T {
	out := make([]T, 0, t.Count())
	for _, row := range t.All() {
		out = append(out, fn(row))
	}
	return out
}
