package tools

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// References validates pos, then issues textDocument/references with
// includeDeclaration=true, returning every match translated to 1-based.
func (t *Tools) References(ctx context.Context, path string, pos position.OneBased) ([]Location, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}
	zero := pos.ToZeroBased()
	if err := validate.PositionInBounds(t.FileCache, abs, zero); err != nil {
		return nil, err
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) ([]Location, error) {
		var raw json.RawMessage
		err := t.Transport.SendRequest(ctx, protocol.MethodTextDocumentReferences, &protocol.ReferenceParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: textDocumentIdentifier(protocol.DocumentURI(h.URI)),
				Position:     positionToProtocol(zero),
			},
			Context: protocol.ReferenceContext{IncludeDeclaration: true},
		}, &raw)
		if err != nil {
			return nil, err
		}

		var list []protocol.Location
		if len(raw) == 0 || string(raw) == "null" {
			return []Location{}, nil
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}

		out := make([]Location, 0, len(list))
		for _, l := range list {
			out = append(out, locationFromProtocol(l))
		}
		return out, nil
	})
}
