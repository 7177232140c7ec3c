// Package cache stores graph snapshots on disk keyed by the content of
// the sources they were built from. A cache hit skips parsing entirely;
// any surviving stale or corrupt entry surfaces as an explicit error, not
// as stale analysis.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// Store is a directory-backed snapshot cache. Entries are immutable:
// writing the same key twice overwrites an identical payload.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a cache directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key derives the cache key for a set of source files. The key covers
// every file's path and content, so any edit, rename, addition, or
// removal produces a different key.
func Key(sources map[string][]byte) string {
	files := make([]string, 0, len(sources))
	for f := range sources {
		files = append(files, f)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f))
		h.Write([]byte{0})
		h.Write(sources[f])
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Put stores a graph snapshot under key.
func (s *Store) Put(key string, g *ir.Graph) error {
	snap, err := g.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot graph: %w", err)
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	compressed := snappy.Encode(nil, blob)
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// Get loads the graph stored under key. The second return is false on a
// clean miss. A present but unreadable entry is an error; a present entry
// whose snapshot fails validation surfaces ir.ErrCorruptGraph.
func (s *Store) Get(key string) (*ir.Graph, bool, error) {
	compressed, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	blob, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decompress cache entry %s: %v", ir.ErrCorruptGraph, key, err)
	}

	var snap ir.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, false, fmt.Errorf("%w: decode cache entry %s: %v", ir.ErrCorruptGraph, key, err)
	}

	g, err := ir.Restore(&snap)
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return g, true, nil
}

// Delete removes the entry for key. Deleting a missing entry is not an
// error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".graph.snappy")
}
