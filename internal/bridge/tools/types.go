// Package tools implements the eight agent-facing operations (C7):
// inspect, references, completion, search, outline/read, diagnostics,
// rename, and logs. Each follows validate -> acquire -> request ->
// translate -> release -> return, acquiring its document through the C5
// lifecycle manager and translating every position to 1-based before
// returning.
package tools

import (
	"github.com/p1va/lspbridge/internal/bridge/enrich"
	"github.com/p1va/lspbridge/internal/bridge/position"
)

// Location is a 1-based location surfaced to the caller.
type Location struct {
	URI   string
	Range position.OneBasedRange
}

// InspectResult is the result of inspect(path, pos): up to four parallel
// LSP lookups, each independently nullable, plus best-effort cursor
// context.
type InspectResult struct {
	Hover          *string
	HoverRange     *position.OneBasedRange
	Definition     []Location
	TypeDefinition []Location
	Implementation []Location
	CursorContext  *enrich.Context
	// Errors records which of the four parallel lookups failed, keyed by
	// name ("hover", "definition", "typeDefinition", "implementation");
	// a sibling failure never fails the whole call.
	Errors map[string]error
}

// CompletionItem is a single normalized completion entry.
type CompletionItem struct {
	Label         string
	Kind          int32
	Detail        string
	Documentation string
	InsertText    string
	TextEditRange *position.OneBasedRange
	TextEditText  string
}

// SymbolResult is one entry returned by outline/read or search.
type SymbolResult struct {
	Name          string
	Kind          int32
	URI           string
	Range         position.OneBasedRange
	ContainerName string
	Detail        string
	Deprecated    bool
}

// Diagnostic is one diagnostics() entry, 1-based and sorted.
type Diagnostic struct {
	Severity int32
	Code     string
	Source   string
	Message  string
	Range    position.OneBasedRange
}

// FileEdit is one file's outcome from applying a WorkspaceEdit.
type FileEdit struct {
	URI       string
	Applied   int
	Failed    int
	Succeeded bool
	Error     error
}

// RenameResult is rename()'s return value: the edit map unchanged in
// structure, plus the total edit count across all files.
type RenameResult struct {
	Changes     map[string][]TextEdit
	ChangeCount int
}

// TextEdit is a single textual edit against one file's content.
type TextEdit struct {
	Range   position.OneBasedRange
	NewText string
}

// LogEntry mirrors store.LogEntry at the agent boundary.
type LogEntry struct {
	Type      string
	Message   string
	Timestamp int64
}
