package tools

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
)

// Search requires the workspace loader to be Ready, then issues
// workspace/symbol with the literal query string, returning every match
// translated to 1-based.
func (t *Tools) Search(ctx context.Context, query string) ([]SymbolResult, error) {
	if !t.Loader.IsReady() {
		return nil, bridgeerrors.WorkspaceLoadInProgress()
	}

	var raw json.RawMessage
	err := t.Transport.SendRequest(ctx, protocol.MethodWorkspaceSymbol, &protocol.WorkspaceSymbolParams{
		Query: query,
	}, &raw)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return []SymbolResult{}, nil
	}

	var symbols []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil, err
	}

	out := make([]SymbolResult, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, SymbolResult{
			Name:          s.Name,
			Kind:          int32(s.Kind),
			URI:           string(s.Location.URI),
			Range:         rangeFromProtocol(s.Location.Range).ToOneBased(),
			ContainerName: s.ContainerName,
		})
	}
	return out, nil
}
