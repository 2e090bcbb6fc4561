// Package validate implements the composable precondition guards (C8)
// every tool operation runs before touching the language server:
// workspace readiness, path validity, and position bounds.
package validate

import (
	"os"
	"path/filepath"
	"strings"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
	"github.com/p1va/lspbridge/internal/bridge/position"
)

// ReadinessChecker is satisfied by the workspace loader (C4); kept as an
// interface here so validate has no dependency on the loader package.
type ReadinessChecker interface {
	IsReady() bool
}

// FileReader is satisfied by the shared file-content cache (filecache.Cache);
// kept as an interface here so validate has no dependency on that package.
type FileReader interface {
	Get(path string) (string, error)
}

// WorkspaceReady fails with WorkspaceLoadInProgress unless loader reports
// readiness. Operations that don't require workspace-wide indexing skip
// this guard entirely rather than calling it.
func WorkspaceReady(loader ReadinessChecker) error {
	if !loader.IsReady() {
		return bridgeerrors.WorkspaceLoadInProgress()
	}
	return nil
}

// PathValid absolutizes path, confirms it exists, and confirms it is a
// regular file. Returns the absolute path on success.
func PathValid(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", bridgeerrors.InvalidPath(path, err.Error())
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", bridgeerrors.FileNotFound(abs, err)
		}
		return "", bridgeerrors.InvalidPath(abs, err.Error())
	}

	if !info.Mode().IsRegular() {
		return "", bridgeerrors.InvalidPath(abs, "not a regular file")
	}

	return abs, nil
}

// PositionInBounds reads the file at path (through cache when non-nil, so
// repeated validation of the same file across tool operations doesn't
// re-stat and re-read it from disk) and confirms pos addresses a location
// the document actually has: a 0-based line within [0, lineCount), and a
// 0-based character within [0, len(line)] — the upper bound is inclusive
// to allow a cursor at end-of-line.
func PositionInBounds(cache FileReader, path string, pos position.ZeroBased) error {
	content, err := readFile(cache, path)
	if err != nil {
		return bridgeerrors.FileNotFound(path, err)
	}

	lines := splitLines(content)

	if pos.Line < 0 || pos.Line >= len(lines) {
		return bridgeerrors.PositionOutOfBounds(pos.Line, pos.Character)
	}

	lineLen := len([]rune(lines[pos.Line]))
	if pos.Character < 0 || pos.Character > lineLen {
		return bridgeerrors.PositionOutOfBounds(pos.Line, pos.Character)
	}

	return nil
}

// readFile reads path through cache when non-nil, falling back to a
// direct read otherwise (tests exercising this package in isolation pass
// a nil cache rather than standing up a real filecache.Cache).
func readFile(cache FileReader, path string) (string, error) {
	if cache != nil {
		return cache.Get(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// splitLines splits on \n only, trimming a trailing \r per line, matching
// how LSP line/character offsets are computed against UTF-16 document
// content without requiring a full line-ending normalization pass.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
