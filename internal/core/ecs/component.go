package ecs

import "go.uber.org/zap"

// Store is implemented by every component store so the Registry can resolve
// stores by id and bulk-remove an object on disconnect.
type Store interface {
	ID() ObjectID
	Name() string
	Has(id ObjectID) bool
	Remove(id ObjectID) bool
}

// Table is the generic membership + row storage behind every component store.
// Members keep insertion order; a row holds every per-object attribute so that
// removal is a single delete.
type Table[T any] struct {
	id    ObjectID
	name  string
	order []ObjectID
	rows  map[ObjectID]*T
	log   *zap.Logger
}

func NewTable[T any](id ObjectID, name string, log *zap.Logger) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table[T]{
		id:    id,
		name:  name,
		order: make([]ObjectID, 0, 16),
		rows:  make(map[ObjectID]*T, 16),
		log:   log.With(zap.String("store", name), zap.Int64("store_id", int64(id))),
	}
}

func (t *Table[T]) ID() ObjectID { return t.id }
func (t *Table[T]) Name() string { return t.name }

// Insert adds a row. A duplicate id is reported and ignored.
func (t *Table[T]) Insert(id ObjectID, row *T) bool {
	if _, ok := t.rows[id]; ok {
		t.log.Warn("duplicate add ignored", zap.Int64("object", int64(id)))
		return false
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return true
}

// Remove deletes the object. An absent id is reported.
func (t *Table[T]) Remove(id ObjectID) bool {
	if _, ok := t.rows[id]; !ok {
		t.log.Warn("remove of absent object", zap.Int64("object", int64(id)))
		return false
	}
	delete(t.rows, id)
	for i, m := range t.order {
		if m == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *Table[T]) Has(id ObjectID) bool {
	_, ok := t.rows[id]
	return ok
}

// Get returns the row without reporting a miss.
func (t *Table[T]) Get(id ObjectID) (*T, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// Row returns the row for id, reporting a miss on behalf of op.
func (t *Table[T]) Row(id ObjectID, op string) (*T, bool) {
	r, ok := t.rows[id]
	if !ok {
		t.log.Warn("operation on absent object", zap.String("op", op), zap.Int64("object", int64(id)))
	}
	return r, ok
}

func (t *Table[T]) Len() int {
	return len(t.rows)
}

// Members returns a copy of the member ids in insertion order.
func (t *Table[T]) Members() []ObjectID {
	out := make([]ObjectID, len(t.order))
	copy(out, t.order)
	return out
}

// Each visits rows in insertion order. fn must not add or remove members.
func (t *Table[T]) Each(fn func(ObjectID, *T)) {
	for _, id := range t.order {
		fn(id, t.rows[id])
	}
}

// Log returns the store-scoped logger.
func (t *Table[T]) Log() *zap.Logger {
	return t.log
}
