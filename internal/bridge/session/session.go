// Package session implements the server lifecycle (C3): it owns the
// spawned language-server subprocess, wires every other component
// (transport, stores, loader, document manager, file cache, enricher,
// tool operations) together, and carries out the startup, shutdown, and
// crash-policy contract around them.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/p1va/lspbridge/internal/bridge/config"
	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/enrich"
	"github.com/p1va/lspbridge/internal/bridge/filecache"
	"github.com/p1va/lspbridge/internal/bridge/loader"
	"github.com/p1va/lspbridge/internal/bridge/store"
	"github.com/p1va/lspbridge/internal/bridge/tools"
	"github.com/p1va/lspbridge/internal/bridge/transport"
)

const (
	shutdownGracePeriod = 2 * time.Second
	killGracePeriod     = 2 * time.Second
)

// Status is the read-only snapshot Session.Status returns: the workspace
// loader's state and timing, plus the size of the session's in-memory
// stores, for introspection and tests.
type Status struct {
	Loader        loader.Status
	OpenDocuments int
	LogCount      int
	ProviderCount int
	Crashed       bool
}

// Session is the single owner of one language-server child process and
// every piece of state the bridge keeps around it.
type Session struct {
	cfg           *config.ServerDescriptor
	workspaceRoot string
	logger        *zap.Logger

	cmd         *exec.Cmd
	childStdin  io.WriteCloser
	childStdout io.ReadCloser
	transport   *transport.Transport

	documents   *store.Documents
	diagnostics *store.Diagnostics
	providers   *store.Providers
	logRing     *store.LogRing

	ld         *loader.Loader
	docManager *document.Manager
	fileCache  *filecache.Cache
	enricher   *enrich.Enricher
	tools      *tools.Tools

	shutdownOnce sync.Once
	crashed      atomic.Bool
	exitWatchWG  sync.WaitGroup
}

// New builds a Session around the given server descriptor. Nothing is
// spawned until Start is called.
func New(cfg *config.ServerDescriptor, workspaceRoot string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	documents := store.NewDocuments()
	diagnostics := store.NewDiagnostics()
	providers := store.NewProviders()
	logRing := store.NewLogRing(cfg.LogRingCapacity)

	return &Session{
		cfg:           cfg,
		workspaceRoot: workspaceRoot,
		logger:        logger,
		documents:     documents,
		diagnostics:   diagnostics,
		providers:     providers,
		logRing:       logRing,
	}
}

// Start performs the full startup sequence (§4.3 steps 1-7): spawn the
// subprocess, construct the transport, initialize/initialized handshake,
// extract static diagnostic providers, and kick off the workspace loader
// and preload set.
func (s *Session) Start(ctx context.Context) error {
	if err := s.spawn(ctx); err != nil {
		return err
	}

	rwc := &stdioRWC{stdin: s.childStdin, stdout: s.childStdout}
	s.transport = transport.New(ctx, rwc, s.logger)
	s.watchChildExit()

	return s.initComponents(ctx)
}

// initComponents wires every component that sits downstream of the
// transport (stores are already built by New): file cache, enricher,
// document manager, workspace loader, tool operations, inbound handler
// registration, and the initialize/initialized handshake. Split out from
// Start so it can be driven directly against a test double transport
// without a real subprocess.
func (s *Session) initComponents(ctx context.Context) error {
	cache, err := filecache.New(s.cfg.FileCacheSize, s.logger)
	if err != nil {
		return fmt.Errorf("building file cache: %w", err)
	}
	s.fileCache = cache
	if s.workspaceRoot != "" {
		if err := s.fileCache.WatchRoot(s.workspaceRoot); err != nil {
			s.logger.Warn("failed to watch workspace root, file cache will not see external edits", zap.Error(err))
		}
	}

	s.enricher = enrich.New(s.cfg.CursorContextRadius, s.fileCache, s.logger)
	s.docManager = document.NewManager(s.documents, s.transport, s.cfg.ExtensionToLanguage, s.fileCache, s.logger)

	registry := loader.NewRegistry(s.logger)
	variant := registry.Resolve(s.cfg.LoaderVariant, s.cfg.Preload)
	s.ld = loader.New(variant, s.logger)

	strategy := tools.DiagnosticsPush
	if s.cfg.DiagnosticsStrategy == "pull" {
		strategy = tools.DiagnosticsPull
	}
	s.tools = &tools.Tools{
		Transport:              s.transport,
		Documents:              s.docManager,
		Diagnostics:            s.diagnostics,
		Providers:              s.providers,
		LogRing:                s.logRing,
		Loader:                 s.ld,
		Enricher:               s.enricher,
		FileCache:              s.fileCache,
		Logger:                 s.logger,
		DiagnosticsStrategy:    strategy,
		DiagnosticsWaitTimeout: s.cfg.DiagnosticsWaitTimeout(),
	}

	s.registerHandlers()

	return s.handshake(ctx)
}

// Tools returns the session's tool operations surface, ready for use once
// Start has returned successfully.
func (s *Session) Tools() *tools.Tools { return s.tools }

// Status returns a snapshot of the session's current state.
func (s *Session) Status() Status {
	var ldStatus loader.Status
	if s.ld != nil {
		ldStatus = s.ld.Status()
	}
	return Status{
		Loader:        ldStatus,
		OpenDocuments: s.documents.Count(),
		LogCount:      s.logRing.Len(),
		ProviderCount: len(s.providers.List()),
		Crashed:       s.crashed.Load(),
	}
}

// handshake sends initialize, extracts static diagnostic providers from
// the result, sends initialized, then feeds the loader an "initialized"
// event and dispatches the preload set (§4.3 steps 4-7). The loader's own
// Initialize has already run when initComponents built it.
func (s *Session) handshake(ctx context.Context) error {
	params := s.initializeParams()

	var result protocol.InitializeResult
	if err := s.transport.SendRequest(ctx, protocol.MethodInitialize, params, &result); err != nil {
		s.ld.Fail()
		return fmt.Errorf("initialize failed: %w", err)
	}

	if result.Capabilities.DiagnosticProvider != nil {
		s.providers.Add(store.DiagnosticProvider{
			ID:                   "static",
			InterFileDependencies: result.Capabilities.DiagnosticProvider.InterFileDependencies,
			WorkspaceDiagnostics:  result.Capabilities.DiagnosticProvider.WorkspaceDiagnostics,
		})
	}

	if err := s.transport.SendNotification(ctx, protocol.MethodInitialized, &protocol.InitializedParams{}); err != nil {
		s.ld.Fail()
		return fmt.Errorf("initialized notification failed: %w", err)
	}

	s.ld.Transition(loader.Event{Name: "initialized"})

	s.dispatchPreload(ctx)

	return nil
}

func (s *Session) initializeParams() *protocol.InitializeParams {
	rootURI := protocol.DocumentURI("")
	if s.workspaceRoot != "" {
		rootURI = protocol.DocumentURI(uri.File(s.workspaceRoot))
	}

	var folders []protocol.WorkspaceFolder
	if s.workspaceRoot != "" {
		folders = []protocol.WorkspaceFolder{{
			URI:  string(rootURI),
			Name: filepath.Base(s.workspaceRoot),
		}}
	}

	return &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		ClientInfo: &protocol.ClientInfo{
			Name:    "lspbridge",
			Version: "0.1.0",
		},
		RootURI:          rootURI,
		WorkspaceFolders: folders,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{
					RelatedInformation:     true,
					VersionSupport:         true,
					CodeDescriptionSupport: true,
					DataSupport:            true,
				},
				Synchronization: &protocol.TextDocumentSyncClientCapabilities{
					DidSave: true,
				},
			},
		},
	}
}

// dispatchPreload opens every configured preload file as Persistent, then
// advances the loader with a synthetic preloadComplete event. A file that
// fails to open is logged and skipped — one bad preload entry must not
// block the rest of the set or wedge the loader in Loading forever.
func (s *Session) dispatchPreload(ctx context.Context) {
	for _, path := range s.cfg.Preload {
		if _, err := s.docManager.Open(ctx, path, document.Persistent); err != nil {
			s.logger.Warn("preload open failed, skipping", zap.String("path", path), zap.Error(err))
		}
	}
	s.ld.Transition(loader.Event{Name: "preloadComplete"})
}

// Shutdown performs the shutdown sequence: shutdown request, exit
// notification, transport close, then SIGTERM/SIGKILL on the child if it
// hasn't exited on its own within the grace periods. Idempotent.
func (s *Session) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.shutdownOnceBody(ctx)
	})
	return shutdownErr
}

func (s *Session) shutdownOnceBody(ctx context.Context) error {
	if s.transport != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
		var shutdownResult interface{}
		_ = s.transport.SendRequest(shutdownCtx, protocol.MethodShutdown, nil, &shutdownResult)
		cancel()
		_ = s.transport.SendNotification(ctx, protocol.MethodExit, nil)
		_ = s.transport.Close()
	}

	if s.fileCache != nil {
		_ = s.fileCache.Close()
	}

	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.exitWatchWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(shutdownGracePeriod):
	}

	s.logger.Warn("child did not exit after shutdown/exit, sending SIGTERM")
	_ = s.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-done:
		return nil
	case <-time.After(killGracePeriod):
	}

	s.logger.Warn("child did not exit after SIGTERM, sending SIGKILL")
	_ = s.cmd.Process.Kill()
	<-done
	return nil
}

// watchChildExit runs in the background for the lifetime of the child
// process and hands every exit to onChildExit: the transport is closed
// (failing every pending and future request with ServerUnavailable) and
// the loader is forced to Failed. An exit caused by Shutdown is handled
// the same way and also marks the session crashed.
func (s *Session) watchChildExit() {
	if s.cmd == nil {
		return
	}
	s.exitWatchWG.Add(1)
	go func() {
		defer s.exitWatchWG.Done()
		s.onChildExit(s.cmd.Wait())
	}()
}

// onChildExit applies the crash policy (§4.3): close the transport so
// every pending and future request fails ServerUnavailable, force the
// loader to Failed, and mark the session crashed for Status(). Also
// invoked directly by watchChildExit's goroutine once cmd.Wait returns.
func (s *Session) onChildExit(err error) {
	s.crashed.Store(true)
	s.logger.Error("language server process exited", zap.Error(err))
	if s.transport != nil {
		_ = s.transport.Close()
	}
	if s.ld != nil {
		s.ld.Fail()
	}
}

func (s *Session) spawn(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range s.cfg.EnvOverrides {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.cfg.Command, err)
	}

	s.cmd = cmd
	s.childStdin = stdin
	s.childStdout = stdout
	s.forwardStderr(stderr)

	return nil
}

// forwardStderr pipes the child's stderr to the session logger at Debug
// level, line by line, per §4.3 step 2.
func (s *Session) forwardStderr(stderr io.ReadCloser) {
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			s.logger.Debug("language server stderr", zap.String("line", scanner.Text()))
		}
	}()
}

// stdioRWC combines a subprocess's separate stdin/stdout pipes into the
// single io.ReadWriteCloser the transport expects.
type stdioRWC struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (r *stdioRWC) Read(p []byte) (int, error)  { return r.stdout.Read(p) }
func (r *stdioRWC) Write(p []byte) (int, error) { return r.stdin.Write(p) }
func (r *stdioRWC) Close() error {
	err1 := r.stdin.Close()
	err2 := r.stdout.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
