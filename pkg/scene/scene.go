package scene

import "sync"

// Scene is an ordered collection of elements shared between callers
// and renderers. Renderers hold the lock for a whole render pass:
// projection caches are written on the elements themselves, so
// concurrent mutation would race with enumeration.
type Scene struct {
	mu       sync.Mutex
	elements []Element
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Lock acquires the scene guard.
func (s *Scene) Lock() {
	s.mu.Lock()
}

// Unlock releases the scene guard.
func (s *Scene) Unlock() {
	s.mu.Unlock()
}

// Add appends elements to the scene.
func (s *Scene) Add(elements ...Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = append(s.elements, elements...)
}

// Elements returns the scene's element slice in insertion order.
// Callers traversing it while a render may be in flight must hold the
// scene lock; renderers already do.
func (s *Scene) Elements() []Element {
	return s.elements
}
