// Package filecache provides a shared, size-bounded cache of file content
// read from disk, invalidated either explicitly or by an fsnotify watch on
// the workspace root. It exists to avoid re-reading the same file from
// disk on every validate/enrich/document-open pass over a hot path file.
package filecache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// entry is one cached file's content plus the modification time it was
// read at. Get does not compare modTime against the file on disk; a
// cached entry is dropped only by Invalidate or LRU eviction.
type entry struct {
	content string
	modTime time.Time
}

// Cache is a recency-evicted cache of file content keyed by absolute path.
type Cache struct {
	lru    *lru.Cache
	mu     sync.Mutex
	logger *zap.Logger

	watcher *fsnotify.Watcher
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New builds a Cache holding at most size entries. size below 1 is
// treated as 1, since an lru.Cache of size 0 cannot hold anything.
func New(size int, logger *zap.Logger) (*Cache, error) {
	if size < 1 {
		size = 1
	}
	backing, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: backing, logger: logger, stop: make(chan struct{})}, nil
}

// Get returns the cached content for path, reading and populating the
// cache on a miss.
func (c *Cache) Get(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if cached, ok := c.lru.Get(abs); ok {
		e := cached.(entry)
		c.mu.Unlock()
		return e.content, nil
	}
	c.mu.Unlock()

	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}

	info, statErr := os.Stat(abs)
	modTime := time.Now()
	if statErr == nil {
		modTime = info.ModTime()
	}

	c.mu.Lock()
	c.lru.Add(abs, entry{content: string(raw), modTime: modTime})
	c.mu.Unlock()

	return string(raw), nil
}

// Invalidate drops path's cached entry, if any.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.lru.Remove(abs)
	c.mu.Unlock()
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// WatchRoot starts an fsnotify watch under root, invalidating any cached
// entry whose file is written or removed outside the bridge's own
// document lifecycle (e.g. an external editor, or the agent's own file
// tools writing a file that was also read through this cache).
func (c *Cache) WatchRoot(root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = w

	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && !strings.HasPrefix(filepath.Base(path), ".") {
			return w.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.watchLoop()
	return nil
}

func (c *Cache) watchLoop() {
	defer c.wg.Done()

	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				c.Invalidate(event.Name)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			if c.logger != nil {
				c.logger.Debug("filecache watch error", zap.Error(err))
			}
		case <-c.stop:
			return
		}
	}
}

// Close stops the watcher, if running. Safe to call even if WatchRoot was
// never called.
func (c *Cache) Close() error {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.wg.Wait()
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
