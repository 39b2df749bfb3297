package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	"github.com/spf13/afero"
)

// LocalStore keeps export files on a filesystem rooted at a base directory.
type LocalStore struct {
	fs afero.Fs
}

var _ gateways.ExportStore = (*LocalStore)(nil)

// NewLocalStore creates a LocalStore rooted at dir on the OS filesystem.
func NewLocalStore(dir string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(osFs, dir)), nil
}

// NewLocalStoreFs creates a LocalStore on top of an existing afero filesystem.
func NewLocalStoreFs(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := afero.WriteReader(s.fs, name, content); err != nil {
		return fmt.Errorf("failed to write export %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to read export %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	name, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, name)
}
