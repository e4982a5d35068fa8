// Package fs implements watch resolution against the local filesystem and
// process environment.
package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/memo-cli/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.WatchResolver = (*Resolver)(nil)

// Resolver computes the current values of watch declarations.
type Resolver struct {
	lookupEnv func(string) (string, bool)
}

// NewResolver creates a Resolver. A nil lookup falls back to os.LookupEnv.
func NewResolver(lookupEnv func(string) (string, bool)) *Resolver {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Resolver{lookupEnv: lookupEnv}
}

// Resolve computes all watch values for the spec, in declaration order.
func (r *Resolver) Resolve(spec domain.WatchSpec) (domain.ResolvedWatches, error) {
	watches := domain.ResolvedWatches{Scopes: spec.Scopes}

	for _, path := range spec.Paths {
		hash, err := HashPath(path)
		if err != nil {
			return domain.ResolvedWatches{}, err
		}
		watches.Paths = append(watches.Paths, domain.PathHash{Path: path, Hash: hash})
	}

	for _, name := range spec.Envs {
		value, ok := r.lookupEnv(name)
		watches.Envs = append(watches.Envs, domain.EnvValue{Name: name, Value: value, Set: ok})
	}

	return watches, nil
}

// HashPath computes the content hash of a watched path. A file hashes to the
// digest of its raw bytes. A directory hashes every contained regular file's
// relative path and content digest, sorted by relative path, so traversal
// order never affects the result.
func HashPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(domain.ErrWatchPathNotFound, "path", path)
		}
		return "", zerr.With(zerr.Wrap(err, "failed to stat watch path"), "path", path)
	}

	if info.IsDir() {
		return hashDir(path)
	}

	sum, err := hashFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", sum), nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

func hashDir(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to walk watch path"), "path", root)
	}

	sort.Strings(files)

	digest := xxhash.New()
	for _, rel := range files {
		sum, err := hashFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		_, _ = digest.WriteString(rel)
		_, _ = digest.Write([]byte{0})
		if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
