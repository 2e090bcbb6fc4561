package tools

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/store"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// methodTextDocumentDiagnostic is the 3.17 pull-diagnostics request. The
// teacher's protocol package predates this method gaining a dedicated
// typed helper in every release, so the literal wire method name is used
// directly rather than guessing an unconfirmed exported constant.
const methodTextDocumentDiagnostic = "textDocument/diagnostic"

// documentDiagnosticReport mirrors the subset of the pull-diagnostics
// response shape this bridge needs; the full report type also carries
// resultId/relatedDocuments for incremental reporting, which push/pull
// parity here doesn't require.
type documentDiagnosticReport struct {
	Kind  string               `json:"kind"`
	Items []protocol.Diagnostic `json:"items"`
}

// Diagnostics returns diagnostics for path using the configured strategy:
// push opens the document and waits (up to the configured timeout) for a
// publishDiagnostics notification, then snapshots the store; pull issues
// textDocument/diagnostic directly. Either way results are sorted by
// severity then position and translated to 1-based.
func (t *Tools) Diagnostics(ctx context.Context, path string) ([]Diagnostic, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}

	if t.DiagnosticsStrategy == DiagnosticsPull {
		return t.diagnosticsPull(ctx, abs)
	}
	return t.diagnosticsPush(ctx, abs)
}

func (t *Tools) diagnosticsPush(ctx context.Context, abs string) ([]Diagnostic, error) {
	// Diagnostics already published for this URI in this session are
	// returned as-is without reopening the document — the store, unlike
	// the open-document table, survives a close.
	docURI, err := document.CanonicalURI(abs)
	if err == nil {
		if diags := t.Diagnostics.Get(string(docURI)); len(diags) > 0 {
			return translateDiagnostics(diags), nil
		}
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) ([]Diagnostic, error) {
		timeout := t.DiagnosticsWaitTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}

		deadline := time.After(timeout)
		poll := time.NewTicker(25 * time.Millisecond)
		defer poll.Stop()

		uriStr := string(h.URI)
		if diags := t.Diagnostics.Get(uriStr); len(diags) > 0 {
			return translateDiagnostics(diags), nil
		}

		for {
			select {
			case <-ctx.Done():
				return translateDiagnostics(t.Diagnostics.Get(uriStr)), nil
			case <-deadline:
				// Spec open question (c): push diagnostics never arriving
				// within the timeout returns whatever is currently stored,
				// empty if none — never an error.
				return translateDiagnostics(t.Diagnostics.Get(uriStr)), nil
			case <-poll.C:
				if diags := t.Diagnostics.Get(uriStr); len(diags) > 0 {
					return translateDiagnostics(diags), nil
				}
			}
		}
	})
}

func (t *Tools) diagnosticsPull(ctx context.Context, abs string) ([]Diagnostic, error) {
	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) ([]Diagnostic, error) {
		var raw json.RawMessage
		err := t.Transport.SendRequest(ctx, methodTextDocumentDiagnostic, &protocol.TextDocumentIdentifier{
			URI: protocol.DocumentURI(h.URI),
		}, &raw)
		if err != nil {
			return nil, err
		}

		if len(raw) == 0 || string(raw) == "null" {
			return []Diagnostic{}, nil
		}

		var report documentDiagnosticReport
		if err := json.Unmarshal(raw, &report); err != nil {
			return nil, err
		}

		diags := make([]store.Diagnostic, 0, len(report.Items))
		for _, d := range report.Items {
			diags = append(diags, store.Diagnostic{
				Range:    rangeFromProtocol(d.Range),
				Severity: store.DiagnosticSeverity(d.Severity),
				Code:     codeToString(d.Code),
				Source:   d.Source,
				Message:  d.Message,
			})
		}
		return translateDiagnostics(diags), nil
	})
}

func codeToString(code interface{}) string {
	if code == nil {
		return ""
	}
	if s, ok := code.(string); ok {
		return s
	}
	b, err := json.Marshal(code)
	if err != nil {
		return ""
	}
	return string(b)
}

// translateDiagnostics sorts by severity then (line, character) and
// converts to 1-based.
func translateDiagnostics(in []store.Diagnostic) []Diagnostic {
	sorted := make([]store.Diagnostic, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity < sorted[j].Severity
		}
		if sorted[i].Range.Start.Line != sorted[j].Range.Start.Line {
			return sorted[i].Range.Start.Line < sorted[j].Range.Start.Line
		}
		return sorted[i].Range.Start.Character < sorted[j].Range.Start.Character
	})

	out := make([]Diagnostic, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, Diagnostic{
			Severity: int32(d.Severity),
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
			Range:    d.Range.ToOneBased(),
		})
	}
	return out
}
