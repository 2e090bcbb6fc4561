// Package loader implements the workspace-loader state machine (C4): a
// small pluggable readiness policy that interprets server notifications and
// gates workspace-wide tool operations until the language server has
// finished indexing.
package loader

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is a stage in the workspace readiness lifecycle.
type State string

const (
	Uninitialized State = "uninitialized"
	Initializing  State = "initializing"
	Loading       State = "loading"
	Ready         State = "ready"
	Failed        State = "failed"
)

// Event is something observed during startup that may advance the state
// machine: an LSP notification, a preload-completion signal, or an
// explicit failure.
type Event struct {
	// Name identifies the event, e.g. "initialized", "projectInitializationComplete",
	// "preloadComplete", "vendorToast".
	Name string
	// Payload carries event-specific data a variant may inspect (e.g. the
	// text of a vendor toast notification).
	Payload string
}

// Variant is the pluggable capability set a workspace loader implements.
// initialize runs once at session startup; updateState runs for every
// observed Event; isReady answers whether workspace-wide operations may
// proceed for a given state.
type Variant interface {
	Name() string
	Initialize() State
	UpdateState(current State, event Event) State
	IsReady(state State) bool
}

// Status is the externally observable snapshot of the loader, including
// the timestamps Session.Status surfaces.
type Status struct {
	Variant          string
	State            State
	LoadingStartedAt time.Time
	ReadyAt          time.Time
}

// Loader owns the active Variant and its current state. State is mutated
// only in response to Transition calls driven by C3 (notification
// dispatch) and by the startup sequence (C4 itself).
type Loader struct {
	mu               sync.RWMutex
	variant          Variant
	state            State
	loadingStartedAt time.Time
	readyAt          time.Time
	logger           *zap.Logger
}

// New constructs a Loader around variant, running Initialize to obtain the
// starting state. If variant is nil, the Default variant is used.
func New(variant Variant, logger *zap.Logger) *Loader {
	if variant == nil {
		variant = NewDefault(nil)
	}

	l := &Loader{variant: variant, logger: logger}
	l.state = variant.Initialize()
	if l.state == Loading {
		l.loadingStartedAt = now()
	}
	if l.state == Ready {
		l.readyAt = now()
	}
	return l
}

// now is isolated so tests can't be tripped up by wall-clock flakiness and
// so the single wall-clock read in this package is easy to audit.
var now = time.Now

// CurrentState returns the loader's current state.
func (l *Loader) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsReady reports whether workspace-wide operations may proceed.
func (l *Loader) IsReady() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.variant.IsReady(l.state)
}

// Transition feeds event to the active variant and applies the resulting
// state, recording loadingStartedAt/readyAt transitions as they occur.
func (l *Loader) Transition(event Event) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.state
	next := l.variant.UpdateState(prev, event)
	l.state = next

	if prev != Loading && next == Loading {
		l.loadingStartedAt = now()
	}
	if prev != Ready && next == Ready {
		l.readyAt = now()
	}

	if l.logger != nil && prev != next {
		l.logger.Info("workspace loader transitioned",
			zap.String("variant", l.variant.Name()),
			zap.String("from", string(prev)),
			zap.String("to", string(next)),
			zap.String("event", event.Name))
	}

	return next
}

// Fail forces the loader into the Failed state, used when startup cannot
// proceed at all (e.g. the subprocess failed to launch).
func (l *Loader) Fail() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Failed
	if l.logger != nil {
		l.logger.Warn("workspace loader failed", zap.String("variant", l.variant.Name()))
	}
}

// Status returns a snapshot for Session.Status.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Status{
		Variant:          l.variant.Name(),
		State:            l.state,
		LoadingStartedAt: l.loadingStartedAt,
		ReadyAt:          l.readyAt,
	}
}

// FallbackToDefaultReady builds a Loader already in the Ready state using
// the Default variant, and logs nothing itself. The session does not call
// it: Variant.Initialize returns a State with no failure result, so
// session startup has no path that falls back to this loader.
func FallbackToDefaultReady(logger *zap.Logger) *Loader {
	l := &Loader{variant: NewDefault(nil), logger: logger, state: Ready}
	l.readyAt = now()
	return l
}
