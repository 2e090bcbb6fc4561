package filecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetCachesOnFirstRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	c, err := New(8, zap.NewNop())
	require.NoError(t, err)

	content, err := c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", content)
	assert.Equal(t, 1, c.Len())

	// Mutate on disk without invalidating; cached value must still win.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	content, err = c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", content)
}

func TestInvalidateForcesReread(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	c, err := New(8, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Get(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	c.Invalidate(path)

	content, err := c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", content)
}

func TestGetMissingFileErrors(t *testing.T) {
	c, err := New(8, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Get(filepath.Join(t.TempDir(), "nope.ts"))
	assert.Error(t, err)
}

func TestWatchRootInvalidatesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	c, err := New(8, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(path)
	require.NoError(t, err)

	require.NoError(t, c.WatchRoot(dir))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	assert.Eventually(t, func() bool {
		content, err := c.Get(path)
		return err == nil && content == "v2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseIsSafeWithoutWatch(t *testing.T) {
	c, err := New(4, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
