package ecs

// World owns the id allocator, the store registry and a deferred removal
// queue flushed once per tick.
type World struct {
	ids          *IDAllocator
	registry     *Registry
	destroyQueue []ObjectID
}

func NewWorld() *World {
	ids := NewIDAllocator()
	return &World{
		ids:          ids,
		registry:     NewRegistry(ids),
		destroyQueue: make([]ObjectID, 0, 16),
	}
}

func (w *World) IDs() *IDAllocator   { return w.ids }
func (w *World) Registry() *Registry { return w.registry }

// CreateObject allocates a fresh object id.
func (w *World) CreateObject() ObjectID {
	return w.ids.Next()
}

// MarkForDestruction queues an object for removal at the next flush.
func (w *World) MarkForDestruction(id ObjectID) {
	for _, q := range w.destroyQueue {
		if q == id {
			return
		}
	}
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue removes every queued object from all stores and returns
// the flushed ids.
func (w *World) FlushDestroyQueue() []ObjectID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	flushed := w.destroyQueue
	for _, id := range flushed {
		w.registry.RemoveAll(id)
	}
	w.destroyQueue = make([]ObjectID, 0, 16)
	return flushed
}
