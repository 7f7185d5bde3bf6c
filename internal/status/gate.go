package status

import "sync"

// Gate admits one holder per key at a time. A second Acquire on a held key
// fails immediately instead of waiting.
type Gate struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewGate() *Gate {
	return &Gate{held: make(map[string]struct{})}
}

// Acquire returns a release func and true when key was free. Calling release
// more than once is harmless.
func (g *Gate) Acquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, false
	}

	g.held[key] = struct{}{}

	var once sync.Once

	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true
}

func (g *Gate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.held[key]

	return busy
}
