package core

import (
	"fmt"
	"slices"

	"github.com/nasdf/quill/object"
)

// Transaction records the operations of a single change.
//
// Operations are applied to a private working copy as they are recorded
// so reads within a transaction observe its own writes.
type Transaction struct {
	objects  *overlay
	applier  *applier
	actor    object.ActorID
	seq      uint64
	startOp  uint64
	deps     Clock
	ops      []Operation
	readOnly bool
	done     bool
}

func newTransaction(objects arena, actor object.ActorID, clock Clock, maxOp uint64, readOnly bool) *Transaction {
	tx := &Transaction{
		objects:  newOverlay(objects),
		actor:    actor,
		seq:      clock.Get(actor) + 1,
		startOp:  maxOp + 1,
		deps:     clock.Clone(),
		readOnly: readOnly,
	}
	tx.applier = &applier{
		objects: tx.objects,
		ctx:     opContext{actor: tx.actor, seq: tx.seq, deps: tx.deps},
	}
	return tx
}

// Root returns the root map of the document.
func (t *Transaction) Root() *Map {
	return &Map{tx: t, id: object.RootID}
}

// ReadOnly returns true if the transaction rejects mutations.
func (t *Transaction) ReadOnly() bool {
	return t.readOnly || t.done
}

// batch returns the recorded operations as a batch or nil if nothing was recorded.
func (t *Transaction) batch() *Batch {
	if len(t.ops) == 0 {
		return nil
	}
	return &Batch{
		Actor:   t.actor,
		Seq:     t.seq,
		StartOp: t.startOp,
		Deps:    t.deps,
		Ops:     slices.Clone(t.ops),
	}
}

// nextID returns the id of the next recorded operation.
func (t *Transaction) nextID() object.OpID {
	return object.OpID{Counter: t.startOp + uint64(len(t.ops)), Actor: t.actor}
}

// emit applies and records a single operation.
func (t *Transaction) emit(op Operation) (object.OpID, error) {
	if t.ReadOnly() {
		return object.OpID{}, ErrReadOnly
	}
	id := t.nextID()
	if _, ok := op.Action.Kind(); ok {
		op.Child = object.IDFromOp(id)
	}
	if err := t.applier.apply(id, op); err != nil {
		return object.OpID{}, err
	}
	t.ops = append(t.ops, op)
	return id, nil
}

// put writes a value to a slot creating nested objects for maps and lists.
//
// Action is either ActionSet or ActionInsert. The returned id is the
// operation that created the slot value.
func (t *Transaction) put(obj object.ID, action Action, key string, value any) (object.OpID, error) {
	if t.ReadOnly() {
		return object.OpID{}, ErrReadOnly
	}
	insert := action == ActionInsert
	switch v := value.(type) {
	case map[string]any:
		id, err := t.emit(Operation{Action: ActionMakeMap, Obj: obj, Key: key, Insert: insert})
		if err != nil {
			return id, err
		}
		child := object.IDFromOp(id)
		for _, k := range sortedKeys(v) {
			if _, err := t.put(child, ActionSet, k, v[k]); err != nil {
				return id, err
			}
		}
		return id, nil

	case []any:
		id, err := t.emit(Operation{Action: ActionMakeList, Obj: obj, Key: key, Insert: insert})
		if err != nil {
			return id, err
		}
		child := object.IDFromOp(id)
		anchor := HeadKey
		for _, e := range v {
			elem, err := t.put(child, ActionInsert, anchor, e)
			if err != nil {
				return id, err
			}
			anchor = elem.String()
		}
		return id, nil

	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return t.put(obj, action, key, list)

	default:
		scalar, err := ScalarValue(value)
		if err != nil {
			return object.OpID{}, err
		}
		return t.emit(Operation{Action: action, Obj: obj, Key: key, Value: scalar})
	}
}

func (t *Transaction) resolve(id object.ID) (*objectState, bool) {
	return t.objects.get(id)
}

func (t *Transaction) view(id object.ID) any {
	return materialize(t.resolve, id)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Map is a mutable handle to a map object.
type Map struct {
	tx *Transaction
	id object.ID
}

// ID returns the object id of the map.
func (m *Map) ID() object.ID {
	return m.id
}

func (m *Map) state() *objectState {
	obj, _ := m.tx.resolve(m.id)
	return obj
}

// Get returns the winning value of the given key.
func (m *Map) Get(key string) (any, bool) {
	winner, ok := m.state().fields.resolve(key)
	if !ok {
		return nil, false
	}
	return materializeValue(m.tx.resolve, winner.value), true
}

// Keys returns the keys of the map in sorted order.
func (m *Map) Keys() []string {
	return m.state().fields.keys()
}

// Set assigns the value to the given key.
//
// Maps and slices are stored as nested objects.
func (m *Map) Set(key string, value any) error {
	if m.tx.ReadOnly() {
		return ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	_, err := m.tx.put(m.id, ActionSet, key, value)
	return err
}

// Delete removes the given key.
func (m *Map) Delete(key string) error {
	_, err := m.tx.emit(Operation{Action: ActionDelete, Obj: m.id, Key: key})
	return err
}

// MakeMap creates an empty nested map under the given key.
func (m *Map) MakeMap(key string) (*Map, error) {
	id, err := m.tx.emit(Operation{Action: ActionMakeMap, Obj: m.id, Key: key})
	if err != nil {
		return nil, err
	}
	return &Map{tx: m.tx, id: object.IDFromOp(id)}, nil
}

// MakeList creates an empty nested list under the given key.
func (m *Map) MakeList(key string) (*List, error) {
	id, err := m.tx.emit(Operation{Action: ActionMakeList, Obj: m.id, Key: key})
	if err != nil {
		return nil, err
	}
	return &List{tx: m.tx, id: object.IDFromOp(id)}, nil
}

// MakeTable creates a nested table with the given columns under the given key.
func (m *Map) MakeTable(key string, columns ...string) (*Table, error) {
	id, err := m.tx.emit(Operation{Action: ActionMakeTable, Obj: m.id, Key: key})
	if err != nil {
		return nil, err
	}
	table := &Table{tx: m.tx, id: object.IDFromOp(id)}
	if len(columns) == 0 {
		return table, nil
	}
	if err := table.SetColumns(columns...); err != nil {
		return nil, err
	}
	return table, nil
}

func (m *Map) child(key string, kind object.Kind) (object.ID, bool) {
	winner, ok := m.state().fields.resolve(key)
	if !ok || !winner.value.IsLink() {
		return "", false
	}
	obj, ok := m.tx.resolve(winner.value.Link)
	if !ok || obj.kind != kind {
		return "", false
	}
	return obj.id, true
}

// Map returns a handle to the nested map stored under the given key.
func (m *Map) Map(key string) (*Map, bool) {
	id, ok := m.child(key, object.KindMap)
	if !ok {
		return nil, false
	}
	return &Map{tx: m.tx, id: id}, true
}

// List returns a handle to the nested list stored under the given key.
func (m *Map) List(key string) (*List, bool) {
	id, ok := m.child(key, object.KindList)
	if !ok {
		return nil, false
	}
	return &List{tx: m.tx, id: id}, true
}

// Table returns a handle to the nested table stored under the given key.
func (m *Map) Table(key string) (*Table, bool) {
	id, ok := m.child(key, object.KindTable)
	if !ok {
		return nil, false
	}
	return &Table{tx: m.tx, id: id}, true
}

// View returns the current materialized state of the map.
func (m *Map) View() *MapView {
	v, _ := m.tx.view(m.id).(*MapView)
	return v
}

// List is a mutable handle to a list object.
type List struct {
	tx *Transaction
	id object.ID
}

// ID returns the object id of the list.
func (l *List) ID() object.ID {
	return l.id
}

func (l *List) state() *objectState {
	obj, _ := l.tx.resolve(l.id)
	return obj
}

// Len returns the number of live elements.
func (l *List) Len() int {
	return l.state().items.len()
}

// Get returns the value at the given index.
func (l *List) Get(i int) (any, bool) {
	e, ok := l.state().items.nth(i)
	if !ok {
		return nil, false
	}
	winner, ok := e.value.winner()
	if !ok {
		return nil, false
	}
	return materializeValue(l.tx.resolve, winner.value), true
}

// Values returns all live values in order.
func (l *List) Values() []any {
	return l.View().Values()
}

// Insert adds the value at the given index shifting later elements.
func (l *List) Insert(i int, value any) error {
	if l.tx.ReadOnly() {
		return ErrReadOnly
	}
	anchor := HeadKey
	if i > 0 {
		e, ok := l.state().items.nth(i - 1)
		if !ok {
			return fmt.Errorf("index %d out of range", i)
		}
		anchor = e.id.String()
	} else if i < 0 {
		return fmt.Errorf("index %d out of range", i)
	}
	_, err := l.tx.put(l.id, ActionInsert, anchor, value)
	return err
}

// Push appends the values to the end of the list.
func (l *List) Push(values ...any) error {
	if l.tx.ReadOnly() {
		return ErrReadOnly
	}
	for _, v := range values {
		if err := l.Insert(l.Len(), v); err != nil {
			return err
		}
	}
	return nil
}

// Set overwrites the value at the given index.
func (l *List) Set(i int, value any) error {
	if l.tx.ReadOnly() {
		return ErrReadOnly
	}
	e, ok := l.state().items.nth(i)
	if !ok {
		return fmt.Errorf("index %d out of range", i)
	}
	_, err := l.tx.put(l.id, ActionSet, e.id.String(), value)
	return err
}

// Delete removes the element at the given index.
func (l *List) Delete(i int) error {
	if l.tx.ReadOnly() {
		return ErrReadOnly
	}
	e, ok := l.state().items.nth(i)
	if !ok {
		return fmt.Errorf("index %d out of range", i)
	}
	_, err := l.tx.emit(Operation{Action: ActionDelete, Obj: l.id, Key: e.id.String()})
	return err
}

// View returns the current materialized state of the list.
func (l *List) View() *ListView {
	v, _ := l.tx.view(l.id).(*ListView)
	return v
}

// Table is a mutable handle to a table object.
type Table struct {
	tx *Transaction
	id object.ID
}

// ID returns the object id of the table.
func (t *Table) ID() object.ID {
	return t.id
}

// View returns the current materialized state of the table.
func (t *Table) View() *TableView {
	v, _ := t.tx.view(t.id).(*TableView)
	return v
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.View().Columns()
}

// SetColumns replaces the column names.
func (t *Table) SetColumns(columns ...string) error {
	if t.tx.ReadOnly() {
		return ErrReadOnly
	}
	obj, _ := t.tx.resolve(t.id)
	winner, ok := obj.columns.winner()
	if !ok {
		id, err := t.tx.emit(Operation{Action: ActionMakeList, Obj: t.id, Key: ColumnsKey})
		if err != nil {
			return err
		}
		winner = entry{id: id, value: LinkValue(object.IDFromOp(id))}
	}
	list := &List{tx: t.tx, id: winner.value.Link}
	for list.Len() > 0 {
		if err := list.Delete(0); err != nil {
			return err
		}
	}
	for _, c := range columns {
		if err := list.Push(c); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a new row and returns its id.
//
// A []any row is zipped against the current columns and a map[string]any
// row is stored as is. Keyed rows may contain fields that are not columns.
func (t *Table) Add(row any) (string, error) {
	if t.tx.ReadOnly() {
		return "", ErrReadOnly
	}
	var fields map[string]any
	switch v := row.(type) {
	case map[string]any:
		fields = v
	case []any:
		columns := t.Columns()
		if len(v) > len(columns) {
			return "", fmt.Errorf("row has %d values but table has %d columns", len(v), len(columns))
		}
		fields = make(map[string]any, len(v))
		for i, val := range v {
			fields[columns[i]] = val
		}
	default:
		return "", fmt.Errorf("invalid row type %T", row)
	}
	rowID := string(object.IDFromOp(t.tx.nextID()))
	id, err := t.tx.emit(Operation{Action: ActionMakeMap, Obj: t.id, Key: rowID})
	if err != nil {
		return "", err
	}
	child := object.IDFromOp(id)
	for _, k := range sortedKeys(fields) {
		if _, err := t.tx.put(child, ActionSet, k, fields[k]); err != nil {
			return "", err
		}
	}
	return rowID, nil
}

// Remove deletes the row with the given id.
func (t *Table) Remove(id string) error {
	if t.tx.ReadOnly() {
		return ErrReadOnly
	}
	if _, ok := t.Row(id); !ok {
		return fmt.Errorf("%w: row %s", ErrTargetNotFound, id)
	}
	_, err := t.tx.emit(Operation{Action: ActionDelete, Obj: t.id, Key: id})
	return err
}

// Row returns a handle to the row with the given id.
func (t *Table) Row(id string) (*Map, bool) {
	obj, _ := t.tx.resolve(t.id)
	winner, ok := obj.fields.resolve(id)
	if !ok || winner.value.Link != object.ID(id) {
		return nil, false
	}
	return &Map{tx: t.tx, id: object.ID(id)}, true
}

// ByID returns the materialized row with the given id.
func (t *Table) ByID(id string) (*MapView, bool) {
	row, ok := t.Row(id)
	if !ok {
		return nil, false
	}
	return row.View(), true
}

// Count returns the number of rows.
func (t *Table) Count() int {
	return t.View().Count()
}

// IDs returns the row ids in creation order.
func (t *Table) IDs() []string {
	return t.View().IDs()
}
