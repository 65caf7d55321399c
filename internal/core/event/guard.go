package event

import "sync"

// Guard serializes access to a Manager between the simulation loop and the
// client goroutines. Handlers already run inside the lock and use the
// Manager directly.
type Guard struct {
	mu sync.Mutex
	m  *Manager
}

func NewGuard(m *Manager) *Guard {
	return &Guard{m: m}
}

// Raise queues e under the lock.
func (g *Guard) Raise(e Event) {
	g.mu.Lock()
	g.m.Raise(e)
	g.mu.Unlock()
}

// HandleEvents runs one dispatch pass under the lock.
func (g *Guard) HandleEvents() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.HandleEvents()
}

// Do runs fn with exclusive access to the Manager.
func (g *Guard) Do(fn func(m *Manager)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.m)
}
