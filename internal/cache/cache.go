// Package cache stores compiled artifacts on disk keyed by source hash.
package cache

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sysyc/internal/observ"
	"sysyc/internal/project"
)

// Bump when Entry changes shape; old entries then read as misses.
const schemaVersion uint16 = 1

// Entry is one cached compilation.
type Entry struct {
	Schema    uint16        `msgpack:"schema"`
	Mode      string        `msgpack:"mode"`
	Source    string        `msgpack:"source"`
	Output    string        `msgpack:"output"`
	Timings   observ.Report `msgpack:"timings"`
	CreatedAt time.Time     `msgpack:"created_at"`
}

// Key identifies a compilation: source bytes, mode and compiler version.
func Key(src []byte, mode, version string) project.Digest {
	return project.Combine(sha256.Sum256(src), []byte(mode), []byte(version))
}

// Store is a directory of msgpack files. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// DefaultDir is $XDG_CACHE_HOME/sysyc or ~/.cache/sysyc.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "sysyc"), nil
}

func (s *Store) pathFor(key project.Digest) string {
	hexKey := key.String()
	return filepath.Join(s.dir, hexKey[:2], hexKey+".mp")
}

// Put writes e under key, replacing any previous entry atomically.
func (s *Store) Put(key project.Digest, e *Entry) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmp)
		}
	}()

	payload := *e
	payload.Schema = schemaVersion
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = time.Now().UTC()
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	ok = true
	return nil
}

// Get reads the entry for key. A missing or stale entry is a miss, not an
// error.
func (s *Store) Get(key project.Digest) (*Entry, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false, err
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o750)
}
