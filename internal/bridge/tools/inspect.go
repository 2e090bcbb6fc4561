package tools

import (
	"context"
	"encoding/json"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// Inspect validates pos, then issues hover, definition, typeDefinition,
// and implementation in parallel against the language server. A failure
// of any single sibling is recorded in Errors and never fails the call;
// the cursor-context block is attached best-effort alongside.
func (t *Tools) Inspect(ctx context.Context, path string, pos position.OneBased) (*InspectResult, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}
	zero := pos.ToZeroBased()
	if err := validate.PositionInBounds(t.FileCache, abs, zero); err != nil {
		return nil, err
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) (*InspectResult, error) {
		result := &InspectResult{Errors: make(map[string]error)}

		var mu sync.Mutex
		var wg sync.WaitGroup

		run := func(name string, fn func() error) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := fn(); err != nil {
					mu.Lock()
					result.Errors[name] = err
					mu.Unlock()
				}
			}()
		}

		run("hover", func() error {
			var raw json.RawMessage
			if err := t.Transport.SendRequest(ctx, protocol.MethodTextDocumentHover, &protocol.HoverParams{
				TextDocumentPositionParams: protocol.TextDocumentPositionParams{
					TextDocument: textDocumentIdentifier(protocol.DocumentURI(h.URI)),
					Position:     positionToProtocol(zero),
				},
			}, &raw); err != nil {
				return err
			}
			if len(raw) == 0 || string(raw) == "null" {
				return nil
			}
			var hover protocol.Hover
			if err := json.Unmarshal(raw, &hover); err != nil {
				return err
			}
			contents := hover.Contents.Value
			mu.Lock()
			result.Hover = &contents
			if hover.Range != nil {
				r := rangeFromProtocol(*hover.Range).ToOneBased()
				result.HoverRange = &r
			}
			mu.Unlock()
			return nil
		})

		run("definition", func() error {
			locs, err := t.requestLocations(ctx, protocol.MethodTextDocumentDefinition, h.URI, zero)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Definition = locs
			mu.Unlock()
			return nil
		})

		run("typeDefinition", func() error {
			locs, err := t.requestLocations(ctx, protocol.MethodTextDocumentTypeDefinition, h.URI, zero)
			if err != nil {
				return err
			}
			mu.Lock()
			result.TypeDefinition = locs
			mu.Unlock()
			return nil
		})

		run("implementation", func() error {
			locs, err := t.requestLocations(ctx, protocol.MethodTextDocumentImplementation, h.URI, zero)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Implementation = locs
			mu.Unlock()
			return nil
		})

		wg.Wait()

		if t.Enricher != nil {
			if cc, ok := t.Enricher.Enrich(abs, zero); ok {
				result.CursorContext = &cc
			}
		}

		return result, nil
	})
}

func (t *Tools) requestLocations(ctx context.Context, method string, uri string, zero position.ZeroBased) ([]Location, error) {
	var raw json.RawMessage
	if err := t.Transport.SendRequest(ctx, method, &protocol.TextDocumentPositionParams{
		TextDocument: textDocumentIdentifier(protocol.DocumentURI(uri)),
		Position:     positionToProtocol(zero),
	}, &raw); err != nil {
		return nil, err
	}
	return decodeLocations(raw)
}
