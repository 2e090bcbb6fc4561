package tools

import (
	"time"

	"go.uber.org/zap"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/enrich"
	"github.com/p1va/lspbridge/internal/bridge/store"
	"github.com/p1va/lspbridge/internal/bridge/transport"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// FileCache is satisfied by filecache.Cache; kept as an interface here so
// tools has no direct dependency on that package's construction concerns.
type FileCache interface {
	Get(path string) (string, error)
}

// DiagnosticsStrategy selects how diagnostics() obtains results.
type DiagnosticsStrategy string

const (
	DiagnosticsPush DiagnosticsStrategy = "push"
	DiagnosticsPull DiagnosticsStrategy = "pull"
)

// Tools wires the C7 operations to the components they depend on: the
// transport for LSP calls, the document lifecycle manager for C5
// acquire/release, the stores for diagnostics/providers/logs, the
// workspace loader for readiness gating, and the enricher for cursor
// context.
type Tools struct {
	Transport   *transport.Transport
	Documents   *document.Manager
	Diagnostics *store.Diagnostics
	Providers   *store.Providers
	LogRing     *store.LogRing
	Loader      validate.ReadinessChecker
	Enricher    *enrich.Enricher
	FileCache   FileCache
	Logger      *zap.Logger

	DiagnosticsStrategy   DiagnosticsStrategy
	DiagnosticsWaitTimeout time.Duration
}
