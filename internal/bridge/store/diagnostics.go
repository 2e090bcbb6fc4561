// Package store implements the thread-safe, process-local state the session
// owns: diagnostics, the server log ring, dynamic capability registrations,
// and the open-document table. Every store guards its map with its own
// mutex and never invokes a callback while holding it.
package store

import (
	"sync"

	"github.com/p1va/lspbridge/internal/bridge/position"
)

// DiagnosticSeverity mirrors the LSP severity scale (1=Error .. 4=Hint).
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// Diagnostic is the store's URI-agnostic representation of a single LSP
// diagnostic; positions are kept zero-based (wire form) until a tool
// operation translates them at the boundary.
type Diagnostic struct {
	Range    position.ZeroBasedRange
	Severity DiagnosticSeverity
	Code     string
	Source   string
	Message  string
}

// Diagnostics is a thread-safe, per-URI latest-wins diagnostic cache.
// publishDiagnostics has "replace wholesale" semantics: the newest
// publication for a URI fully overwrites whatever was stored before.
type Diagnostics struct {
	mu    sync.RWMutex
	byURI map[string][]Diagnostic
}

// NewDiagnostics constructs an empty Diagnostics store.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{byURI: make(map[string][]Diagnostic)}
}

// Set overwrites the diagnostic list for uri.
func (d *Diagnostics) Set(uri string, diags []Diagnostic) {
	cp := make([]Diagnostic, len(diags))
	copy(cp, diags)

	d.mu.Lock()
	d.byURI[uri] = cp
	d.mu.Unlock()
}

// Get returns the current diagnostic list for uri, or an empty slice if none
// has ever been published.
func (d *Diagnostics) Get(uri string) []Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()

	existing, ok := d.byURI[uri]
	if !ok {
		return []Diagnostic{}
	}
	cp := make([]Diagnostic, len(existing))
	copy(cp, existing)
	return cp
}

// Clear removes any diagnostics recorded for uri.
func (d *Diagnostics) Clear(uri string) {
	d.mu.Lock()
	delete(d.byURI, uri)
	d.mu.Unlock()
}

// Snapshot returns a consistent, independent copy of every URI's diagnostics.
func (d *Diagnostics) Snapshot() map[string][]Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string][]Diagnostic, len(d.byURI))
	for uri, diags := range d.byURI {
		cp := make([]Diagnostic, len(diags))
		copy(cp, diags)
		out[uri] = cp
	}
	return out
}
