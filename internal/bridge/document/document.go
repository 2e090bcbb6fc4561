// Package document implements document lifecycle management (C5): the
// three open/close strategies tool operations use around a language
// server call, and the WithLifecycle wrapper that guarantees the
// close decision runs on every exit path.
package document

import (
	"context"
	"os"
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
	"github.com/p1va/lspbridge/internal/bridge/store"
	"github.com/p1va/lspbridge/internal/bridge/transport"
)

// Strategy selects how a document is opened and, symmetrically, how it is
// closed once the operation using it has finished.
type Strategy int

const (
	// Temporary opens for the operation and always closes on exit.
	Temporary Strategy = iota
	// Persistent opens (closing and reopening a document that was already
	// open) and is kept open until session end; used for preload.
	Persistent
	// RespectExisting leaves an already-open document open; opens and
	// closes a document that wasn't open.
	RespectExisting
)

// Handle describes the document an operation is about to touch.
type Handle struct {
	URI            uri.URI
	Path           string
	Content        string
	Version        int32
	WasAlreadyOpen bool
	IsPreloaded    bool
	noOp           bool
}

// FileReader is satisfied by the shared file-content cache (filecache.Cache);
// kept as an interface here so document has no dependency on that package.
type FileReader interface {
	Get(path string) (string, error)
}

// Manager implements open-with-strategy / close-with-strategy over a
// Documents store and a transport connected to the language server.
type Manager struct {
	docs          *store.Documents
	transport     *transport.Transport
	extToLanguage map[string]string
	cache         FileReader
	logger        *zap.Logger
}

// NewManager builds a Manager. extToLanguage maps file extensions
// (including the leading dot, e.g. ".ts") to LSP language identifiers.
// cache, when non-nil, is read through for a document's initial open
// content instead of the filesystem directly; a nil cache falls back to
// a direct read.
func NewManager(docs *store.Documents, t *transport.Transport, extToLanguage map[string]string, cache FileReader, logger *zap.Logger) *Manager {
	return &Manager{docs: docs, transport: t, extToLanguage: extToLanguage, cache: cache, logger: logger}
}

// CanonicalURI resolves path to an absolute filesystem URI.
func CanonicalURI(path string) (uri.URI, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", bridgeerrors.InvalidPath(path, err.Error())
	}
	return uri.File(abs), nil
}

// Open performs the open-with-strategy algorithm and returns a Handle
// describing the resulting document state.
func (m *Manager) Open(ctx context.Context, path string, strategy Strategy) (*Handle, error) {
	docURI, err := CanonicalURI(path)
	if err != nil {
		return nil, err
	}
	uriStr := string(docURI)

	unlock := m.docs.LockURI(uriStr)
	defer unlock()

	existing, wasAlreadyOpen := m.docs.Get(uriStr)
	isPreloaded := wasAlreadyOpen && existing.Preloaded

	if wasAlreadyOpen && strategy == RespectExisting {
		return &Handle{
			URI:            docURI,
			Path:           path,
			Content:        existing.Content,
			Version:        int32(existing.Version),
			WasAlreadyOpen: true,
			IsPreloaded:    isPreloaded,
			noOp:           true,
		}, nil
	}

	content, err := m.readContent(uriStr, existing, wasAlreadyOpen)
	if err != nil {
		return nil, err
	}

	if wasAlreadyOpen {
		m.closeOnServer(ctx, uriStr)
		m.docs.Remove(uriStr)
	}

	languageID := m.languageFor(path)
	version := m.docs.NextVersion(uriStr)

	err = m.transport.SendNotification(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(docURI),
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    int32(version),
			Text:       content,
		},
	})
	if err != nil {
		return nil, bridgeerrors.ServerUnavailable(err)
	}

	m.docs.Put(uriStr, &store.OpenDocument{
		URI:        uriStr,
		Content:    content,
		Version:    version,
		LanguageID: languageID,
		IsOpen:     true,
		Preloaded:  strategy == Persistent,
	})

	return &Handle{
		URI:            docURI,
		Path:           path,
		Content:        content,
		Version:        int32(version),
		WasAlreadyOpen: wasAlreadyOpen,
		IsPreloaded:    isPreloaded,
	}, nil
}

// Close performs the close-with-strategy decision table and, if the
// decision is to close, notifies the server and removes the table entry.
// Close failures are logged, never returned, since they must not fail an
// operation that already succeeded.
func (m *Manager) Close(ctx context.Context, h *Handle, strategy Strategy) {
	if h == nil || h.noOp {
		return
	}

	if !m.shouldClose(strategy, h.WasAlreadyOpen, h.IsPreloaded) {
		return
	}

	uriStr := string(h.URI)
	unlock := m.docs.LockURI(uriStr)
	defer unlock()

	m.closeOnServer(ctx, uriStr)
	m.docs.Remove(uriStr)
}

func (m *Manager) shouldClose(strategy Strategy, wasAlreadyOpen, isPreloaded bool) bool {
	switch strategy {
	case Temporary:
		return true
	case Persistent:
		return false
	case RespectExisting:
		if wasAlreadyOpen {
			return false
		}
		return !isPreloaded
	default:
		return true
	}
}

func (m *Manager) closeOnServer(ctx context.Context, uriStr string) {
	err := m.transport.SendNotification(ctx, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uriStr)},
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("didClose failed, continuing", zap.String("uri", uriStr), zap.Error(err))
	}
}

func (m *Manager) readContent(uriStr string, existing *store.OpenDocument, wasAlreadyOpen bool) (string, error) {
	if wasAlreadyOpen && existing != nil {
		return existing.Content, nil
	}
	path := uri.URI(uriStr).Filename()
	if m.cache != nil {
		content, err := m.cache.Get(path)
		if err != nil {
			return "", bridgeerrors.FileNotFound(path, err)
		}
		return content, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", bridgeerrors.FileNotFound(path, err)
	}
	return string(raw), nil
}

func (m *Manager) languageFor(path string) string {
	ext := filepath.Ext(path)
	if id, ok := m.extToLanguage[ext]; ok {
		return id
	}
	return "plaintext"
}

// WithLifecycle runs op against the document at path opened under
// strategy, guaranteeing Close runs on every exit path — success, a
// returned error, or a panic propagated after cleanup.
func WithLifecycle[T any](ctx context.Context, m *Manager, path string, strategy Strategy, op func(ctx context.Context, h *Handle) (T, error)) (T, error) {
	var zero T

	h, err := m.Open(ctx, path, strategy)
	if err != nil {
		return zero, err
	}
	defer m.Close(ctx, h, strategy)

	return op(ctx, h)
}
