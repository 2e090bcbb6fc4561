// Package transport implements the framed JSON-RPC transport (C1): a
// length-prefixed message codec over a subprocess's stdio, request/response
// correlation, notification dispatch, and cancellation — built on
// go.lsp.dev/jsonrpc2, the same library the teacher uses for its own LSP
// wire handling, just pointed the other direction (we are the caller).
package transport

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
)

// NotificationHandler processes a notification delivered by the server.
type NotificationHandler func(params json.RawMessage)

// RequestHandler answers a server-to-client request. Returning a non-nil
// error replies with a JSON-RPC error; otherwise result is sent back as-is.
type RequestHandler func(ctx context.Context, params json.RawMessage) (result interface{}, err error)

// pendingRequest is bookkeeping for one outstanding request, kept only for
// PendingCount and for CancelAll on Close — correlation of the wire-level
// id is owned internally by jsonrpc2.Conn.
type pendingRequest struct {
	method string
	cancel context.CancelFunc
}

// Transport multiplexes JSON-RPC requests and notifications to and from a
// single subprocess connection.
type Transport struct {
	logger *zap.Logger
	conn   jsonrpc2.Conn

	mu              sync.Mutex
	pending         map[uint64]*pendingRequest
	nextLocalID     uint64
	notifHandlers   map[string]NotificationHandler
	requestHandlers map[string]RequestHandler

	closed atomic.Bool
}

// New wraps rwc (the subprocess's combined stdin/stdout pipe) in a framed
// JSON-RPC connection and starts its read loop under ctx.
func New(ctx context.Context, rwc io.ReadWriteCloser, logger *zap.Logger) *Transport {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	t := &Transport{
		logger:          logger,
		conn:            conn,
		pending:         make(map[uint64]*pendingRequest),
		notifHandlers:   make(map[string]NotificationHandler),
		requestHandlers: make(map[string]RequestHandler),
	}

	conn.Go(ctx, t.dispatch())
	return t
}

// Conn exposes the underlying connection for callers that need direct
// access to it.
func (t *Transport) Conn() jsonrpc2.Conn {
	return t.conn
}

// SendRequest issues method with params and decodes the result into result.
// It blocks until a response arrives, ctx is done, or the transport closes.
// When ctx is done first, a $/cancelRequest for the request's id is sent
// and Cancelled is returned; when the transport closes first,
// ServerUnavailable is returned.
func (t *Transport) SendRequest(ctx context.Context, method string, params, result interface{}) error {
	if t.closed.Load() {
		return bridgeerrors.ServerUnavailable(nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := atomic.AddUint64(&t.nextLocalID, 1)
	t.mu.Lock()
	t.pending[id] = &pendingRequest{method: method, cancel: cancel}
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	callID, err := t.conn.Call(ctx, method, params, result)
	if err != nil {
		if t.closed.Load() {
			return bridgeerrors.ServerUnavailable(err)
		}
		if ctx.Err() != nil {
			_ = t.conn.Notify(context.Background(), "$/cancelRequest", map[string]interface{}{"id": &callID})
			return bridgeerrors.Cancelled()
		}
		return bridgeerrors.LSP(method+" failed", err)
	}
	return nil
}

// SendNotification fires method with params without waiting for a reply.
func (t *Transport) SendNotification(ctx context.Context, method string, params interface{}) error {
	if t.closed.Load() {
		return bridgeerrors.ServerUnavailable(nil)
	}
	if err := t.conn.Notify(ctx, method, params); err != nil {
		return bridgeerrors.Wrap(bridgeerrors.CodeServerUnavailable, "notify failed: "+method, err)
	}
	return nil
}

// OnNotification registers handler for method. A later registration for the
// same method replaces the earlier one.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.notifHandlers[method] = handler
	t.mu.Unlock()
}

// OnRequest registers handler to answer server-to-client requests for
// method.
func (t *Transport) OnRequest(method string, handler RequestHandler) {
	t.mu.Lock()
	t.requestHandlers[method] = handler
	t.mu.Unlock()
}

// PendingCount returns the number of requests currently awaiting a reply.
func (t *Transport) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// CancelAll cancels every outstanding request's context, as happens when
// the transport is torn down out from under in-flight calls.
func (t *Transport) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.pending {
		p.cancel()
	}
}

// Close shuts down the underlying connection. Safe to call more than once.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.CancelAll()
	return t.conn.Close()
}

// dispatch builds the jsonrpc2.Handler that routes every message arriving
// from the subprocess: notifications to OnNotification handlers, requests
// to OnRequest handlers, anything unregistered is tolerated per §6/§7 —
// unknown notifications are logged and dropped, unknown requests reply
// with a null result rather than MethodNotFound, since an unexpected
// server-to-client request should never abort the session.
func (t *Transport) dispatch() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		method := req.Method()

		t.mu.Lock()
		notifHandler, isNotif := t.notifHandlers[method]
		reqHandler, isReq := t.requestHandlers[method]
		t.mu.Unlock()

		if isReq {
			result, err := reqHandler(ctx, req.Params())
			if err != nil {
				return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: err.Error()})
			}
			return reply(ctx, result, nil)
		}

		if isNotif {
			notifHandler(req.Params())
			return reply(ctx, nil, nil)
		}

		t.logger.Debug("unhandled inbound message, tolerated", zap.String("method", method))
		return reply(ctx, nil, nil)
	}
}
