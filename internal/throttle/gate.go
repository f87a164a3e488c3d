package throttle

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Timer is the part of *time.Timer the gate needs.
type Timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Gate is a leading-edge rate limiter. The first call to Do runs the action
// and opens a cooldown window; calls made while the window is open are
// dropped, never queued. Once the window elapses the next call runs again.
type Gate struct {
	wait    time.Duration
	cooling *atomic.Bool
	closed  *atomic.Bool

	mu        sync.Mutex
	timer     Timer
	afterFunc afterFunc
}

// New returns a gate with the given cooldown.
func New(wait time.Duration) *Gate {
	return newGate(wait, realAfterFunc)
}

func newGate(wait time.Duration, af afterFunc) *Gate {
	return &Gate{
		wait:      wait,
		cooling:   atomic.NewBool(false),
		closed:    atomic.NewBool(false),
		afterFunc: af,
	}
}

// Do runs action unless a cooldown window is active or the gate is closed.
// It reports whether action was invoked.
func (g *Gate) Do(action func()) bool {
	if g.closed.Load() {
		return false
	}
	if !g.cooling.CompareAndSwap(false, true) {
		return false
	}

	// The window is armed before the action runs so a panicking action
	// cannot leave the gate open.
	g.mu.Lock()
	g.timer = g.afterFunc(g.wait, g.reopen)
	g.mu.Unlock()

	action()
	return true
}

func (g *Gate) reopen() {
	g.mu.Lock()
	g.timer = nil
	g.mu.Unlock()
	g.cooling.Store(false)
}

// Cooling reports whether a cooldown window is currently active.
func (g *Gate) Cooling() bool {
	return g.cooling.Load()
}

// Wait returns the cooldown duration.
func (g *Gate) Wait() time.Duration {
	return g.wait
}

// Close stops any pending timer and refuses all further calls.
func (g *Gate) Close() {
	g.closed.Store(true)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
