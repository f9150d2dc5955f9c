package core

import (
	"github.com/nasdf/quill/object"
)

// applier applies operations of a single batch to an overlay.
type applier struct {
	objects *overlay
	ctx     opContext
}

func newApplier(objects *overlay, b *Batch) *applier {
	return &applier{
		objects: objects,
		ctx: opContext{
			actor: b.Actor,
			seq:   b.Seq,
			deps:  b.Deps,
		},
	}
}

// apply validates and applies a single operation.
func (a *applier) apply(id object.OpID, op Operation) error {
	target, ok := a.objects.get(op.Obj)
	if !ok {
		return malformed("unknown object %s", op.Obj)
	}
	e := entry{id: id, seq: a.ctx.seq, value: op.Value}

	if kind, ok := op.Action.Kind(); ok {
		return a.applyMake(id, op, target.kind, kind)
	}
	if op.Value.IsLink() {
		return malformed("links can only be created by make operations")
	}
	switch op.Action {
	case ActionInsert:
		if target.kind != object.KindList {
			return malformed("cannot insert into %s %s", target.kind, op.Obj)
		}
		return a.insert(op.Obj, op.Key, &element{id: id, value: register{e}})

	case ActionSet:
		switch target.kind {
		case object.KindMap:
			if op.Key == "" {
				return malformed("missing key")
			}
			obj, _ := a.objects.write(op.Obj)
			obj.fields.set(op.Key, a.ctx, e)
			return nil
		case object.KindList:
			return a.assign(op.Obj, op.Key, e)
		default:
			return malformed("cannot set field on %s %s", target.kind, op.Obj)
		}

	case ActionDelete:
		switch target.kind {
		case object.KindMap:
			obj, _ := a.objects.write(op.Obj)
			obj.fields.remove(op.Key, a.ctx)
			return nil
		case object.KindList:
			elem, err := parseElemID(op.Key)
			if err != nil {
				return err
			}
			obj, _ := a.objects.write(op.Obj)
			return obj.items.remove(elem, a.ctx)
		case object.KindTable:
			obj, _ := a.objects.write(op.Obj)
			if op.Key == ColumnsKey {
				obj.columns = obj.columns.remove(a.ctx)
				return nil
			}
			obj.fields.remove(op.Key, a.ctx)
			return nil
		}
	}
	return malformed("invalid action %s", op.Action)
}

func (a *applier) applyMake(id object.OpID, op Operation, parent, kind object.Kind) error {
	child := object.IDFromOp(id)
	if op.Child != child {
		return malformed("child id %s does not match operation %s", op.Child, id)
	}
	if _, ok := a.objects.get(child); ok {
		return ErrDuplicateObjectID
	}
	e := entry{id: id, seq: a.ctx.seq, value: LinkValue(child)}

	var err error
	switch parent {
	case object.KindMap:
		if op.Key == "" {
			return malformed("missing key")
		}
		obj, _ := a.objects.write(op.Obj)
		obj.fields.set(op.Key, a.ctx, e)

	case object.KindList:
		if op.Insert {
			err = a.insert(op.Obj, op.Key, &element{id: id, value: register{e}})
		} else {
			err = a.assign(op.Obj, op.Key, e)
		}

	case object.KindTable:
		switch {
		case kind == object.KindList && op.Key == ColumnsKey:
			obj, _ := a.objects.write(op.Obj)
			obj.columns = obj.columns.set(a.ctx, e)
		case kind == object.KindMap && op.Key == string(child):
			obj, _ := a.objects.write(op.Obj)
			obj.fields.set(op.Key, a.ctx, e)
		default:
			return malformed("cannot create %s %s in table %s", kind, op.Key, op.Obj)
		}
	}
	if err != nil {
		return err
	}
	return a.objects.create(child, kind)
}

func (a *applier) insert(obj object.ID, key string, e *element) error {
	anchor, err := parseAnchor(key)
	if err != nil {
		return err
	}
	target, _ := a.objects.get(obj)
	if !anchor.IsZero() {
		if _, ok := target.items.byID[anchor]; !ok {
			return ErrTargetNotFound
		}
	}
	if _, ok := target.items.byID[e.id]; ok {
		return ErrDuplicateObjectID
	}
	state, _ := a.objects.write(obj)
	return state.items.insert(anchor, e)
}

func (a *applier) assign(obj object.ID, key string, e entry) error {
	elem, err := parseElemID(key)
	if err != nil {
		return err
	}
	state, _ := a.objects.write(obj)
	return state.items.assign(elem, a.ctx, e)
}

func parseAnchor(key string) (object.OpID, error) {
	if key == HeadKey {
		return object.OpID{}, nil
	}
	return parseElemID(key)
}

func parseElemID(key string) (object.OpID, error) {
	id, err := object.ParseOpID(key)
	if err != nil {
		return object.OpID{}, malformed("invalid element id %q", key)
	}
	return id, nil
}
