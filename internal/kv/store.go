package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound reports that no value has been stored under the requested key.
var ErrNotFound = errors.New("key not found")

// ErrDirRequired is returned when a file store is created without a directory.
var ErrDirRequired = errors.New("storage directory not provided")

// Store is the persistence port used by the services: a flat namespace of
// serialized payloads addressed by opaque keys.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileStore keeps one file per key inside a directory on the provided
// filesystem. Tests inject an in-memory filesystem through the same seam.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates the storage directory if needed and returns a store
// rooted there.
func NewFileStore(fsys afero.Fs, dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirRequired
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{fs: fsys, dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the payload stored under key, or ErrNotFound.
func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the payload stored under key. Writes go through a temp file
// and a rename so a crash never leaves a half-written payload behind.
func (s *FileStore) Set(key string, value []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"

	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s temp file: %w", key, err)
	}

	if _, err := file.Write(value); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", key, err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close %s temp file: %w", key, err)
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}

	return nil
}
