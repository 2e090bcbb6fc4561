package tools

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// Outline issues textDocument/documentSymbol and flattens the response,
// which per LSP is either SymbolInformation[] (flat, already carrying
// containerName) or DocumentSymbol[] (nested, children carry no uri of
// their own since they share the document's).
func (t *Tools) Outline(ctx context.Context, path string) ([]SymbolResult, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) ([]SymbolResult, error) {
		var raw json.RawMessage
		err := t.Transport.SendRequest(ctx, protocol.MethodTextDocumentDocumentSymbol, &protocol.DocumentSymbolParams{
			TextDocument: textDocumentIdentifier(protocol.DocumentURI(h.URI)),
		}, &raw)
		if err != nil {
			return nil, err
		}

		return decodeOutline(raw, h.URI)
	})
}

// decodeOutline discriminates on shape: presence of "location" means
// SymbolInformation; presence of "range"+"selectionRange" means
// DocumentSymbol.
func decodeOutline(raw json.RawMessage, uri string) ([]SymbolResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []SymbolResult{}, nil
	}

	var probes []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probes); err != nil {
		return nil, err
	}
	if len(probes) == 0 {
		return []SymbolResult{}, nil
	}

	if _, hasLocation := probes[0]["location"]; hasLocation {
		var flat []protocol.SymbolInformation
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, err
		}
		out := make([]SymbolResult, 0, len(flat))
		for _, s := range flat {
			out = append(out, SymbolResult{
				Name:          s.Name,
				Kind:          int32(s.Kind),
				URI:           string(s.Location.URI),
				Range:         rangeFromProtocol(s.Location.Range).ToOneBased(),
				ContainerName: s.ContainerName,
				Deprecated:    s.Deprecated,
			})
		}
		return out, nil
	}

	var nested []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}

	var out []SymbolResult
	flattenDocumentSymbols(nested, uri, "", &out)
	return out, nil
}

// flattenDocumentSymbols performs a depth-first traversal, carrying each
// parent's name down as containerName for its children.
func flattenDocumentSymbols(symbols []protocol.DocumentSymbol, uri, containerName string, out *[]SymbolResult) {
	for _, s := range symbols {
		*out = append(*out, SymbolResult{
			Name:          s.Name,
			Kind:          int32(s.Kind),
			URI:           uri,
			Range:         rangeFromProtocol(s.Range).ToOneBased(),
			ContainerName: containerName,
			Detail:        s.Detail,
			Deprecated:    s.Deprecated,
		})
		if len(s.Children) > 0 {
			flattenDocumentSymbols(s.Children, uri, s.Name, out)
		}
	}
}
