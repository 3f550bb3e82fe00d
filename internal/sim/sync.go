package sim

import (
	"sync"

	"github.com/san-kum/rebound/internal/dynamo"
)

// SyncWorld serializes every step and read of a World for hosts that drive
// and observe it from different goroutines.
type SyncWorld struct {
	mu sync.RWMutex
	w  *World
}

func NewSyncWorld(w *World) *SyncWorld {
	return &SyncWorld{w: w}
}

func (s *SyncWorld) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Step()
}

func (s *SyncWorld) Snapshot() dynamo.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Snapshot()
}

func (s *SyncWorld) SetGravity(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.SetGravity(x, y)
}

// Update runs fn with exclusive access, for compound mutations such as a
// reset followed by repopulating the world.
func (s *SyncWorld) Update(fn func(w *World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.w)
}
