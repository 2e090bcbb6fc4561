package tools

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// Completion validates pos, issues textDocument/completion, and
// normalizes either a bare CompletionItem[] or a CompletionList payload
// to a flat list, translating any textEdit range to 1-based.
func (t *Tools) Completion(ctx context.Context, path string, pos position.OneBased) ([]CompletionItem, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}
	zero := pos.ToZeroBased()
	if err := validate.PositionInBounds(t.FileCache, abs, zero); err != nil {
		return nil, err
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) ([]CompletionItem, error) {
		var raw json.RawMessage
		err := t.Transport.SendRequest(ctx, protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: textDocumentIdentifier(protocol.DocumentURI(h.URI)),
				Position:     positionToProtocol(zero),
			},
		}, &raw)
		if err != nil {
			return nil, err
		}

		return decodeCompletions(raw)
	})
}

// decodeCompletions discriminates a completion response on shape: a
// CompletionList has an "items" key, a bare array is the list itself.
func decodeCompletions(raw json.RawMessage) ([]CompletionItem, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []CompletionItem{}, nil
	}

	var items []protocol.CompletionItem

	var list protocol.CompletionList
	if err := json.Unmarshal(raw, &list); err == nil && list.Items != nil {
		items = list.Items
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]CompletionItem, 0, len(items))
	for _, item := range items {
		ci := CompletionItem{
			Label:      item.Label,
			Kind:       int32(item.Kind),
			Detail:     item.Detail,
			InsertText: item.InsertText,
		}
		ci.Documentation = documentationToString(item.Documentation)
		if item.TextEdit != nil {
			r := rangeFromProtocol(item.TextEdit.Range).ToOneBased()
			ci.TextEditRange = &r
			ci.TextEditText = item.TextEdit.NewText
		}
		out = append(out, ci)
	}
	return out, nil
}

func documentationToString(doc protocol.MarkupContent) string {
	return doc.Value
}
