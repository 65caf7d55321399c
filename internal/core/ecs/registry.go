package ecs

import "fmt"

// Registry is the arena of component stores. Stores are addressed by id; the
// expected store type is checked once, when a reference is resolved.
type Registry struct {
	ids    *IDAllocator
	stores []Store
	byID   map[ObjectID]int
}

func NewRegistry(ids *IDAllocator) *Registry {
	return &Registry{
		ids:    ids,
		stores: make([]Store, 0, 16),
		byID:   make(map[ObjectID]int, 16),
	}
}

// IDs returns the allocator shared by stores and objects.
func (r *Registry) IDs() *IDAllocator { return r.ids }

// Register allocates an id, builds the store with it and records it.
func Register[S Store](r *Registry, build func(id ObjectID) S) S {
	s := build(r.ids.Next())
	r.byID[s.ID()] = len(r.stores)
	r.stores = append(r.stores, s)
	return s
}

// Lookup returns the store with the given id, if any.
func (r *Registry) Lookup(id ObjectID) (Store, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.stores[i], true
}

// Resolve returns the store with the given id as S.
func Resolve[S Store](r *Registry, id ObjectID) (S, error) {
	var zero S
	s, ok := r.Lookup(id)
	if !ok {
		return zero, fmt.Errorf("ecs: no store with id %d", id)
	}
	typed, ok := s.(S)
	if !ok {
		return zero, fmt.Errorf("ecs: store %d (%s) is %T, want %T", id, s.Name(), s, zero)
	}
	return typed, nil
}

// ResolveAll resolves each id in order.
func ResolveAll[S Store](r *Registry, ids []ObjectID) ([]S, error) {
	out := make([]S, 0, len(ids))
	for _, id := range ids {
		s, err := Resolve[S](r, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Stores returns the registered stores in registration order.
func (r *Registry) Stores() []Store {
	out := make([]Store, len(r.stores))
	copy(out, r.stores)
	return out
}

// RemoveAll clears the given object from every store that holds it and
// returns how many stores it was removed from.
func (r *Registry) RemoveAll(id ObjectID) int {
	n := 0
	for _, s := range r.stores {
		if s.Has(id) && s.Remove(id) {
			n++
		}
	}
	return n
}
