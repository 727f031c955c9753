package embed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nextlevelbuilder/skillmatch/internal/hashing"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	v := []float32{0.25, -1.5, 3.14159, 0, -0.0001}
	key := hashing.Hash("git-helper: Provides git workflow assistance")

	if err := c.Write(key, v); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := c.Read(key)
	if !ok {
		t.Fatal("Read missed a just-written key")
	}
	if len(got) != len(v) {
		t.Fatalf("read %d floats, want %d", len(got), len(v))
	}
	for i := range v {
		// Bit-exact float32 round trip.
		if got[i] != v[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], v[i])
		}
	}
}

func TestCacheDiskRoundTrip(t *testing.T) {
	base := t.TempDir()
	c, err := NewCache(base, "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	key := hashing.Hash("some text")
	if err := c.Write(key, []float32{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Fresh cache object: forces the disk path, not the memory layer.
	c2, err := NewCache(base, "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	got, ok := c2.Read(key)
	if !ok {
		t.Fatal("disk read missed")
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("disk read = %v", got)
	}

	// Layout: <base>/embeddings/<model>/<key>.bin
	want := filepath.Join(base, "embeddings", "all-minilm", key+".bin")
	if c.Path(key) != want {
		t.Errorf("Path = %s, want %s", c.Path(key), want)
	}
	info, err := os.Stat(want)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// Raw float32 bytes, no header.
	if info.Size() != 12 {
		t.Errorf("file size = %d, want 12", info.Size())
	}
}

func TestCacheMissingIsMiss(t *testing.T) {
	c, err := NewCache(t.TempDir(), "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if _, ok := c.Read(hashing.Hash("never written")); ok {
		t.Error("Read of absent key returned ok")
	}
}

func TestCacheMalformedIsMiss(t *testing.T) {
	base := t.TempDir()
	c, err := NewCache(base, "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	key := hashing.Hash("corrupt")
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	// 5 bytes: not a whole number of float32s.
	if err := os.WriteFile(c.Path(key), []byte{1, 2, 3, 4, 5}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, ok := c.Read(key); ok {
		t.Error("Read of malformed entry returned ok")
	}
}

func TestCacheStatsAndPurge(t *testing.T) {
	c, err := NewCache(t.TempDir(), "all-minilm")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	entries, bytes, err := c.Stats()
	if err != nil || entries != 0 || bytes != 0 {
		t.Errorf("empty cache stats = (%d, %d, %v)", entries, bytes, err)
	}

	c.Write(hashing.Hash("a"), []float32{1})
	c.Write(hashing.Hash("b"), []float32{1, 2})

	entries, bytes, err = c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 2 || bytes != 12 {
		t.Errorf("stats = (%d, %d), want (2, 12)", entries, bytes)
	}

	if err := c.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok := c.Read(hashing.Hash("a")); ok {
		t.Error("Read hit after purge")
	}
}
