package editor

import (
	"errors"
	"sync"
)

// ErrSubmitInFlight is returned when a submit for the same screen has not
// finished yet.
var ErrSubmitInFlight = errors.New("a submit for this screen is already in progress")

// SubmitGate serialises submits per screen so that two full-replace writes
// for one screen never overlap.  Sessions editing the same screen should
// share one gate.
type SubmitGate struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewSubmitGate returns an empty gate.
func NewSubmitGate() *SubmitGate {
	return &SubmitGate{inFlight: make(map[string]bool)}
}

// TryAcquire claims the screen and reports whether it was free.
func (g *SubmitGate) TryAcquire(screenID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[screenID] {
		return false
	}
	g.inFlight[screenID] = true
	return true
}

// Release frees the screen.
func (g *SubmitGate) Release(screenID string) {
	g.mu.Lock()
	delete(g.inFlight, screenID)
	g.mu.Unlock()
}
