package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Compile-time check: FileStore satisfies Store.
var _ Store = (*FileStore)(nil)

// FileStore persists each slot as a JSON file under a base directory.
type FileStore struct {
	baseDir string
	opts    storeOptions
}

// NewFileStore creates a FileStore that saves slots under baseDir.
func NewFileStore(baseDir string, opts ...Option) *FileStore {
	return &FileStore{baseDir: baseDir, opts: applyOptions(opts)}
}

// Get reads the slot file for key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv: reading %s: %w", p, err)
	}
	return data, true, nil
}

// Set writes the slot through a temporary file and rename, so a failed
// write never leaves a truncated slot behind.
func (s *FileStore) Set(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := checkQuota(key, value, s.opts.maxSlotBytes); err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("kv: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kv: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: replacing %s: %w", p, err)
	}
	return nil
}

// Delete removes the slot file for key.
func (s *FileStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: removing %s: %w", p, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

// path returns the filesystem path for a slot file.
func (s *FileStore) path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if key != filepath.Base(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}
