package tools

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/p1va/lspbridge/internal/bridge/document"
	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/p1va/lspbridge/internal/bridge/validate"
)

// Rename validates pos, issues textDocument/rename, and returns the
// resulting WorkspaceEdit unchanged in structure (1-based). Applying the
// edits to disk is the caller's responsibility via ApplyWorkspaceEdits.
func (t *Tools) Rename(ctx context.Context, path string, pos position.OneBased, newName string) (*RenameResult, error) {
	abs, err := validate.PathValid(path)
	if err != nil {
		return nil, err
	}
	zero := pos.ToZeroBased()
	if err := validate.PositionInBounds(t.FileCache, abs, zero); err != nil {
		return nil, err
	}

	return document.WithLifecycle(ctx, t.Documents, abs, document.RespectExisting, func(ctx context.Context, h *document.Handle) (*RenameResult, error) {
		var raw json.RawMessage
		err := t.Transport.SendRequest(ctx, protocol.MethodTextDocumentRename, &protocol.RenameParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: textDocumentIdentifier(protocol.DocumentURI(h.URI)),
				Position:     positionToProtocol(zero),
			},
			NewName: newName,
		}, &raw)
		if err != nil {
			return nil, err
		}

		if len(raw) == 0 || string(raw) == "null" {
			return &RenameResult{Changes: map[string][]TextEdit{}}, nil
		}

		var edit protocol.WorkspaceEdit
		if err := json.Unmarshal(raw, &edit); err != nil {
			return nil, err
		}

		changes := make(map[string][]TextEdit, len(edit.Changes))
		count := 0
		for editURI, edits := range edit.Changes {
			list := make([]TextEdit, 0, len(edits))
			for _, e := range edits {
				list = append(list, TextEdit{
					Range:   rangeFromProtocol(e.Range).ToOneBased(),
					NewText: e.NewText,
				})
			}
			changes[string(editURI)] = list
			count += len(list)
		}

		return &RenameResult{Changes: changes, ChangeCount: count}, nil
	})
}

// ApplyWorkspaceEdits applies every file's edits bottom-up (descending
// end position, tie-broken by descending end character) so earlier edits
// in file order never see their offsets shifted by a later one applied
// first. Per-edit bounds are re-checked against on-disk content before
// writing; a file is written only if at least one of its edits applied.
func ApplyWorkspaceEdits(changes map[string][]TextEdit) []FileEdit {
	results := make([]FileEdit, 0, len(changes))

	for editURI, edits := range changes {
		results = append(results, applyFileEdits(editURI, edits))
	}

	return results
}

func applyFileEdits(editURI string, edits []TextEdit) FileEdit {
	path := uri.URI(editURI).Filename()

	raw, err := os.ReadFile(path)
	if err != nil {
		return FileEdit{URI: editURI, Failed: len(edits), Error: err}
	}
	content := string(raw)

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Range.End.Line != sorted[j].Range.End.Line {
			return sorted[i].Range.End.Line > sorted[j].Range.End.Line
		}
		return sorted[i].Range.End.Character > sorted[j].Range.End.Character
	})

	applied, failed := 0, 0
	for _, e := range sorted {
		next, ok := applyOneEdit(content, e)
		if !ok {
			failed++
			continue
		}
		content = next
		applied++
	}

	if applied == 0 {
		return FileEdit{URI: editURI, Applied: 0, Failed: failed, Succeeded: false}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return FileEdit{URI: editURI, Applied: 0, Failed: len(edits), Error: err}
	}

	return FileEdit{URI: editURI, Applied: applied, Failed: failed, Succeeded: true}
}

// applyOneEdit replaces the span [start, end) of content (both endpoints
// 1-based) with newText, re-resolving line/character against content's
// current line structure so a prior bottom-up edit's shift of later
// content is always accounted for. Returns ok=false without mutating if
// the edit's bounds no longer fit the current content.
func applyOneEdit(content string, e TextEdit) (string, bool) {
	lines := strings.Split(content, "\n")

	startLine := e.Range.Start.Line - 1
	endLine := e.Range.End.Line - 1
	startCh := e.Range.Start.Character - 1
	endCh := e.Range.End.Character - 1

	if startLine < 0 || endLine < 0 || startLine >= len(lines) || endLine >= len(lines) || endLine < startLine {
		return content, false
	}

	startOffset, ok := runeOffset(lines[startLine], startCh)
	if !ok {
		return content, false
	}
	endOffset, ok := runeOffset(lines[endLine], endCh)
	if !ok {
		return content, false
	}

	before := lineOffset(lines, startLine) + startOffset
	after := lineOffset(lines, endLine) + endOffset

	runes := []rune(content)
	if before < 0 || after > len(runes) || before > after {
		return content, false
	}

	out := string(runes[:before]) + e.NewText + string(runes[after:])
	return out, true
}

// lineOffset returns the rune offset of the start of lines[idx] within
// the joined (\n-separated) content.
func lineOffset(lines []string, idx int) int {
	offset := 0
	for i := 0; i < idx; i++ {
		offset += len([]rune(lines[i])) + 1
	}
	return offset
}

// runeOffset validates character index ch against line's rune length.
func runeOffset(line string, ch int) (int, bool) {
	length := len([]rune(line))
	if ch < 0 || ch > length {
		return 0, false
	}
	return ch, true
}
