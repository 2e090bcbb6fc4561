// Package enrich implements the cursor-context enricher (C9): a
// best-effort reader that surrounds a tool call's position with a few
// lines of context and the identifier the cursor sits on, for tools
// (inspect, in particular) that benefit from showing a human or agent
// what the position actually points at.
package enrich

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/p1va/lspbridge/internal/bridge/position"
)

// Context is the enrichment payload attached alongside a tool operation's
// raw result.
type Context struct {
	LineText     string
	SymbolName   string
	ContextLines []string
}

// FileReader is satisfied by the shared file-content cache (filecache.Cache);
// kept as an interface here so enrich has no dependency on that package.
type FileReader interface {
	Get(path string) (string, error)
}

// Enricher reads ±ContextRadius lines around a position and identifies
// the identifier spanning the cursor.
type Enricher struct {
	ContextRadius int
	cache         FileReader
	logger        *zap.Logger
}

// New builds an Enricher with the given context radius (lines above and
// below). A radius of 0 disables surrounding context but still resolves
// the line and symbol under the cursor. cache, when non-nil, is read
// through instead of the filesystem directly, sharing hits with
// validate's own file reads of the same path. A nil cache falls back to
// a direct read.
func New(radius int, cache FileReader, logger *zap.Logger) *Enricher {
	return &Enricher{ContextRadius: radius, cache: cache, logger: logger}
}

// Enrich computes a Context for pos inside the file at path. Any failure
// (unreadable file, out-of-range position) is swallowed and reported via
// the returned bool, per the enricher's best-effort contract — a failure
// here must never fail the tool operation it's enriching.
func (e *Enricher) Enrich(path string, pos position.ZeroBased) (Context, bool) {
	content, err := e.readFile(path)
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("cursor context enrichment skipped, file unreadable", zap.String("path", path), zap.Error(err))
		}
		return Context{}, false
	}

	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return Context{}, false
	}

	lineText := strings.TrimSuffix(lines[pos.Line], "\r")
	symbolName := identifierAt(lineText, pos.Character)

	start := pos.Line - e.ContextRadius
	if start < 0 {
		start = 0
	}
	end := pos.Line + e.ContextRadius + 1
	if end > len(lines) {
		end = len(lines)
	}

	contextLines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		contextLines = append(contextLines, strings.TrimSuffix(lines[i], "\r"))
	}

	return Context{
		LineText:     lineText,
		SymbolName:   symbolName,
		ContextLines: contextLines,
	}, true
}

// readFile reads path through the cache when one was configured, falling
// back to a direct read otherwise.
func (e *Enricher) readFile(path string) (string, error) {
	if e.cache != nil {
		return e.cache.Get(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// isIdentifierRune reports whether r may appear inside an identifier.
// Any other rune is treated as a boundary.
func isIdentifierRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		return true
	default:
		return false
	}
}

// identifierAt returns the identifier spanning character offset col in
// line, or "" if col sits on a boundary/non-identifier rune.
func identifierAt(line string, col int) string {
	runes := []rune(line)
	if col < 0 || col > len(runes) {
		return ""
	}

	// A cursor exactly at end-of-line or on a boundary rune still looks
	// one rune to the left, mirroring how editors resolve "the word under
	// the cursor" at a boundary.
	probe := col
	if probe == len(runes) || (probe < len(runes) && !isIdentifierRune(runes[probe])) {
		probe--
	}
	if probe < 0 || probe >= len(runes) || !isIdentifierRune(runes[probe]) {
		return ""
	}

	start := probe
	for start > 0 && isIdentifierRune(runes[start-1]) {
		start--
	}
	end := probe + 1
	for end < len(runes) && isIdentifierRune(runes[end]) {
		end++
	}

	return string(runes[start:end])
}
