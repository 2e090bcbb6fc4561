package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/p1va/lspbridge/internal/bridge/errors"
	"github.com/p1va/lspbridge/internal/bridge/position"
)

type fakeReadiness struct{ ready bool }

func (f fakeReadiness) IsReady() bool { return f.ready }

func TestWorkspaceReadyFailsWhenNotReady(t *testing.T) {
	err := WorkspaceReady(fakeReadiness{ready: false})
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodeWorkspaceLoadInProgress))
}

func TestWorkspaceReadyPassesWhenReady(t *testing.T) {
	assert.NoError(t, WorkspaceReady(fakeReadiness{ready: true}))
}

func TestPathValidAcceptsRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	abs, err := PathValid(path)
	require.NoError(t, err)
	assert.Equal(t, path, abs)
}

func TestPathValidRejectsMissingFile(t *testing.T) {
	_, err := PathValid(filepath.Join(t.TempDir(), "nope.ts"))
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodeFileNotFound))
}

func TestPathValidRejectsDirectory(t *testing.T) {
	_, err := PathValid(t.TempDir())
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodeInvalidPath))
}

func TestPositionInBoundsAcceptsCharacterEqualToLineLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("abc\ndef"), 0o644))

	pos, err := position.NewZeroBased(0, 3)
	require.NoError(t, err)
	assert.NoError(t, PositionInBounds(nil, path, pos))
}

func TestPositionInBoundsRejectsCharacterPastLineLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("abc\ndef"), 0o644))

	pos, err := position.NewZeroBased(0, 4)
	require.NoError(t, err)
	err = PositionInBounds(nil, path, pos)
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodePositionOutOfBounds))
}

func TestPositionInBoundsRejectsLineOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("abc\ndef"), 0o644))

	pos, err := position.NewZeroBased(5, 0)
	require.NoError(t, err)
	err = PositionInBounds(nil, path, pos)
	require.Error(t, err)
	assert.True(t, bridgeerrors.Is(err, bridgeerrors.CodePositionOutOfBounds))
}
