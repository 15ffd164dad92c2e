package input

import (
	"time"

	"lumen-cli/internal/logger"
)

// Handler 接收路由到的按键；返回值表示是否已消费。
type Handler interface {
	HandleKey(k Key) bool
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(k Key) bool

func (f HandlerFunc) HandleKey(k Key) bool { return f(k) }

// ChordFunc handles a global chord. Returning false lets the key fall
// through to the focused component, so conditional chords (like an exit
// that requires an empty buffer) can decline without consuming.
type ChordFunc func(k Key) bool

type routeState int

const (
	stateNormal routeState = iota
	stateModalCaptured
)

// Router dispatches decoded keys. Global chords are consulted first and
// win even while a widget is focused; unhandled keys go to the modal
// capture owner when one exists, otherwise to the normal focus target.
type Router struct {
	state     routeState
	focus     Handler
	modal     Handler
	prevFocus Handler
	chords    map[string]ChordFunc
	log       *logger.LogEntry
}

func NewRouter() *Router {
	return &Router{
		chords: make(map[string]ChordFunc),
		log:    logger.Named("router"),
	}
}

// Bind registers a global chord under its Key.String() name.
func (r *Router) Bind(name string, fn ChordFunc) {
	r.chords[name] = fn
}

// SetFocus replaces the normal focus target.
func (r *Router) SetFocus(h Handler) {
	r.focus = h
}

// Focus returns the target that receives non-chord keys right now.
func (r *Router) Focus() Handler {
	if r.state == stateModalCaptured {
		return r.modal
	}
	return r.focus
}

// ModalCaptured reports whether an overlay owns input.
func (r *Router) ModalCaptured() bool { return r.state == stateModalCaptured }

// CaptureModal gives h exclusive ownership of non-chord input and
// remembers the current focus for restoration. A second capture simply
// replaces the owner; the remembered focus is the original one.
func (r *Router) CaptureModal(h Handler) {
	if r.state == stateNormal {
		r.prevFocus = r.focus
	}
	r.modal = h
	r.state = stateModalCaptured
}

// ReleaseModal drops the capture and restores the prior focus target.
func (r *Router) ReleaseModal() {
	if r.state != stateModalCaptured {
		return
	}
	r.modal = nil
	r.state = stateNormal
	r.focus = r.prevFocus
	r.prevFocus = nil
}

// Route dispatches one key event.
func (r *Router) Route(k Key) {
	if fn, ok := r.chords[k.String()]; ok && fn != nil {
		if fn(k) {
			return
		}
	}
	target := r.Focus()
	if target == nil {
		r.log.Debugf("dropped key %s: no focus target", k.String())
		return
	}
	target.HandleKey(k)
}

// ExitGuard implements double-press exit confirmation: the first press
// arms the guard, a second press inside the window confirms. Any other
// input or the window elapsing disarms it. Clock is injectable so the
// window can be tested without sleeping.
type ExitGuard struct {
	Window  time.Duration
	now     func() time.Time
	armedAt time.Time
	armed   bool
}

const defaultExitWindow = 1000 * time.Millisecond

func NewExitGuard(now func() time.Time) *ExitGuard {
	if now == nil {
		now = time.Now
	}
	return &ExitGuard{Window: defaultExitWindow, now: now}
}

// Press records one press of the exit chord and reports whether it
// confirms a previous press inside the window.
func (g *ExitGuard) Press() bool {
	t := g.now()
	if g.armed && t.Sub(g.armedAt) <= g.Window {
		g.armed = false
		return true
	}
	g.armed = true
	g.armedAt = t
	return false
}

// Armed reports whether a confirmation is still pending.
func (g *ExitGuard) Armed() bool {
	if !g.armed {
		return false
	}
	if g.now().Sub(g.armedAt) > g.Window {
		g.armed = false
		return false
	}
	return true
}

// Disarm cancels a pending confirmation, e.g. when unrelated input
// arrives.
func (g *ExitGuard) Disarm() {
	g.armed = false
}
