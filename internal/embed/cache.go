package embed

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memCacheSize bounds the in-memory vector layer. Disk entries are
// unbounded; cleanup is an operational concern, not the cache's.
const memCacheSize = 512

// Cache is a content-addressed store of embedding vectors. Entries
// live at <base>/embeddings/<model>/<sha256>.bin as raw little-endian
// float32 bytes with no header; the dimension is implicit in the file
// size. Keys derive from the exact embedded text, so entries are
// immutable and never need invalidation.
type Cache struct {
	dir string // <base>/embeddings/<model>
	mem *lru.Cache[string, []float32]
}

// NewCache creates a cache rooted at baseDir for the given model.
func NewCache(baseDir, model string) (*Cache, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("cache base directory is empty")
	}
	mem, err := lru.New[string, []float32](memCacheSize)
	if err != nil {
		return nil, err
	}
	return &Cache{
		dir: filepath.Join(baseDir, "embeddings", model),
		mem: mem,
	}, nil
}

// Path returns the on-disk location for a cache key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, key+".bin")
}

// Read returns the cached vector for key, or ok=false on a miss.
// A missing or unreadable file is a miss, never an error: the caller's
// fast path recomputes. Unexpected decode problems are logged.
// Callers must not mutate the returned slice.
func (c *Cache) Read(key string) ([]float32, bool) {
	if v, ok := c.mem.Get(key); ok {
		return v, true
	}

	data, err := os.ReadFile(c.Path(key))
	if err != nil {
		if !os.IsNotExist(err) && !os.IsPermission(err) {
			slog.Warn("embedding cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(data) == 0 || len(data)%4 != 0 {
		slog.Warn("embedding cache entry malformed", "key", key, "bytes", len(data))
		return nil, false
	}

	v := decodeVector(data)
	c.mem.Add(key, v)
	return v, true
}

// Write persists a vector under key, creating parent directories as
// needed. Concurrent writes for different keys are independent; a
// write for the same key rewrites identical bytes, so last-writer-wins
// is harmless.
func (c *Cache) Write(key string, v []float32) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", c.dir, err)
	}
	if err := os.WriteFile(c.Path(key), encodeVector(v), 0o644); err != nil {
		return fmt.Errorf("cannot write cache entry %s: %w", key, err)
	}
	c.mem.Add(key, v)
	return nil
}

// Stats walks the model's cache directory and reports entry count and
// total bytes. A missing directory is an empty cache.
func (c *Cache) Stats() (entries int, bytes int64, err error) {
	err = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".bin" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries++
		bytes += info.Size()
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return 0, 0, nil
	}
	return entries, bytes, err
}

// Purge removes every entry for this model and clears the memory layer.
func (c *Cache) Purge() error {
	c.mem.Purge()
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("cannot purge cache dir %s: %w", c.dir, err)
	}
	return nil
}

// Dir returns the model-scoped cache directory.
func (c *Cache) Dir() string { return c.dir }

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v
}
