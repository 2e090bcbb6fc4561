package session

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
	"github.com/p1va/lspbridge/internal/bridge/config"
	"github.com/p1va/lspbridge/internal/bridge/loader"
	"github.com/p1va/lspbridge/internal/bridge/transport"
)

const waitTick = 10 * time.Millisecond

type pipeRWC struct {
	io.Reader
	io.Writer
	io.Closer
}

// fakeLanguageServer stands in for the spawned subprocess: a second
// Transport wired to the opposite end of an in-process pipe, answering
// initialize and recording what the session sends it.
type fakeLanguageServer struct {
	t         *testing.T
	transport *transport.Transport

	diagnosticProvider *protocol.DiagnosticOptions
}

func newSessionWithFakeServer(t *testing.T, cfg *config.ServerDescriptor) (*Session, *fakeLanguageServer, func()) {
	t.Helper()

	aR, bW := io.Pipe()
	bR, aW := io.Pipe()

	clientRWC := pipeRWC{Reader: aR, Writer: aW, Closer: aW}
	serverRWC := pipeRWC{Reader: bR, Writer: bW, Closer: bW}

	sess := New(cfg, t.TempDir(), zap.NewNop())
	sess.transport = transport.New(context.Background(), clientRWC, zap.NewNop())

	fake := &fakeLanguageServer{
		t:         t,
		transport: transport.New(context.Background(), serverRWC, zap.NewNop()),
	}
	fake.transport.OnRequest(protocol.MethodInitialize, fake.handleInitialize)

	cleanup := func() {
		_ = sess.transport.Close()
		_ = fake.transport.Close()
		if sess.fileCache != nil {
			_ = sess.fileCache.Close()
		}
	}
	return sess, fake, cleanup
}

func (f *fakeLanguageServer) handleInitialize(_ context.Context, _ json.RawMessage) (interface{}, error) {
	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			DiagnosticProvider: f.diagnosticProvider,
		},
	}
	return result, nil
}

func baseTestConfig() *config.ServerDescriptor {
	return &config.ServerDescriptor{
		Name:                "fake",
		Command:             "fake",
		DiagnosticsStrategy: "push",
		LoaderVariant:       "default",
		FileCacheSize:       16,
		LogRingCapacity:     1000,
		CursorContextRadius: 2,
	}
}

func TestHandshakeReachesReadyWithoutPreload(t *testing.T) {
	sess, _, cleanup := newSessionWithFakeServer(t, baseTestConfig())
	defer cleanup()

	require.NoError(t, sess.initComponents(context.Background()))

	assert.Equal(t, loader.Ready, sess.Status().Loader.State)
}

func TestHandshakeExtractsStaticDiagnosticProvider(t *testing.T) {
	cfg := baseTestConfig()
	sess, fake, cleanup := newSessionWithFakeServer(t, cfg)
	defer cleanup()

	fake.diagnosticProvider = &protocol.DiagnosticOptions{
		InterFileDependencies: true,
		WorkspaceDiagnostics:  true,
	}

	require.NoError(t, sess.initComponents(context.Background()))

	status := sess.Status()
	assert.Equal(t, 1, status.ProviderCount)
}

func TestPublishDiagnosticsIsStored(t *testing.T) {
	sess, fake, cleanup := newSessionWithFakeServer(t, baseTestConfig())
	defer cleanup()
	require.NoError(t, sess.initComponents(context.Background()))

	err := fake.transport.SendNotification(context.Background(), protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI: "file:///a.ts",
		Diagnostics: []protocol.Diagnostic{
			{Message: "boom", Severity: protocol.DiagnosticSeverityError},
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sess.diagnostics.Get("file:///a.ts")) == 1
	}, time.Second, waitTick)
}

func TestLogMessageAppendsToRingAndFeedsLoaderToast(t *testing.T) {
	cfg := baseTestConfig()
	cfg.LoaderVariant = "csharp-roslyn"
	sess, fake, cleanup := newSessionWithFakeServer(t, cfg)
	defer cleanup()
	require.NoError(t, sess.initComponents(context.Background()))

	assert.Equal(t, loader.Loading, sess.Status().Loader.State)

	err := fake.transport.SendNotification(context.Background(), protocol.MethodWindowLogMessage, &protocol.LogMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: "Solution load complete.",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sess.Status().Loader.State == loader.Ready
	}, time.Second, waitTick)
	assert.Equal(t, 1, sess.logRing.Len())
}

func TestProjectInitializationCompleteAdvancesRoslynLoader(t *testing.T) {
	cfg := baseTestConfig()
	cfg.LoaderVariant = "csharp-roslyn"
	sess, fake, cleanup := newSessionWithFakeServer(t, cfg)
	defer cleanup()
	require.NoError(t, sess.initComponents(context.Background()))

	err := fake.transport.SendNotification(context.Background(), "workspace/projectInitializationComplete", struct{}{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sess.Status().Loader.State == loader.Ready
	}, time.Second, waitTick)
}

func TestOnChildExitMarksCrashedAndClosesTransport(t *testing.T) {
	sess, _, cleanup := newSessionWithFakeServer(t, baseTestConfig())
	defer cleanup()
	require.NoError(t, sess.initComponents(context.Background()))

	sess.onChildExit(assert.AnError)

	assert.True(t, sess.Status().Crashed)
	assert.Equal(t, loader.Failed, sess.Status().Loader.State)

	var result interface{}
	err := sess.transport.SendRequest(context.Background(), "textDocument/hover", nil, &result)
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodeServerUnavailable))
}

func TestShutdownIsIdempotent(t *testing.T) {
	sess, _, cleanup := newSessionWithFakeServer(t, baseTestConfig())
	defer cleanup()
	require.NoError(t, sess.initComponents(context.Background()))

	require.NoError(t, sess.Shutdown(context.Background()))
	require.NoError(t, sess.Shutdown(context.Background()))
}
