// Package store implements the on-disk cache entry store.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/memo-cli/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	ownerDirMode   = os.FileMode(0o700)
	ownerFileMode  = os.FileMode(0o600)
	sharedDirMode  = os.FileMode(0o770)
	sharedFileMode = os.FileMode(0o660)
)

var _ ports.Store = (*Disk)(nil)

// Disk persists one JSON entry file per key under the configured root,
// sharded into a subdirectory by key prefix. Writes go to a temporary file
// followed by an atomic rename, so a concurrent reader never observes a
// partially written entry. Two racing writers on the same key are resolved
// last-writer-wins; no cross-process locking is provided.
type Disk struct {
	cfg    domain.StoreConfig
	logger ports.Logger
}

// NewDisk creates a disk store rooted at cfg.Root.
func NewDisk(cfg domain.StoreConfig, logger ports.Logger) *Disk {
	return &Disk{cfg: cfg, logger: logger}
}

func (s *Disk) dirMode() os.FileMode {
	if s.cfg.Shared {
		return sharedDirMode
	}
	return ownerDirMode
}

func (s *Disk) fileMode() os.FileMode {
	if s.cfg.Shared {
		return sharedFileMode
	}
	return ownerFileMode
}

// path returns the entry file location for a key.
func (s *Disk) path(key domain.CacheKey) string {
	k := key.String()
	shard := "00"
	if len(k) >= 2 {
		shard = k[:2]
	}
	return filepath.Join(s.cfg.Root, shard, k+".json")
}

// Read retrieves the entry for a key. A missing file is a miss (nil, nil); a
// file that exists but cannot be opened or decoded is an error.
func (s *Disk) Read(key domain.CacheKey) (*domain.Entry, error) {
	path := s.path(key)
	s.logger.Debug("cache read", "path", path)

	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from the cache root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(domain.ErrEntryUnreadable, "path", path)
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(domain.ErrEntryUnreadable, "path", path)
	}

	return &entry, nil
}

// Write persists the entry for a key, atomically replacing any prior one.
func (s *Disk) Write(key domain.CacheKey, entry *domain.Entry) error {
	path := s.path(key)
	s.logger.Debug("cache write", "key", key.String(), "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirMode()); err != nil {
		return zerr.With(domain.ErrCacheUnwritable, "path", s.cfg.Root)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache entry")
	}

	tmp, err := os.CreateTemp(dir, "."+key.String()+".tmp")
	if err != nil {
		return zerr.With(domain.ErrCacheUnwritable, "path", s.cfg.Root)
	}

	if err := s.commit(tmp, data, path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.With(domain.ErrCacheUnwritable, "path", s.cfg.Root)
	}

	return nil
}

func (s *Disk) commit(tmp *os.File, data []byte, path string) error {
	defer tmp.Close() //nolint:errcheck // Closed explicitly before rename

	if err := tmp.Chmod(s.fileMode()); err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Remove deletes the entry for a key regardless of its freshness.
func (s *Disk) Remove(key domain.CacheKey) error {
	path := s.path(key)
	s.logger.Debug("cache remove", "key", key.String(), "path", path)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(domain.ErrEntryNotFound, "key", key.String())
		}
		return zerr.With(domain.ErrCacheUnwritable, "path", path)
	}
	return nil
}
