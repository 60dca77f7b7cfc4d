package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/filex"
)

// FSStore keeps one file per blob in a flat directory. Writes go through a
// temp file and rename, so a crash never leaves a truncated blob behind.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	abs, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}
	return &FSStore{dir: abs}, nil
}

func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FSStore) Put(ctx context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(p, data, 0o600); err != nil {
		return fmt.Errorf("blob write error: %w", err)
	}
	return nil
}

func (s *FSStore) Get(ctx context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob read error: %w", err)
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob delete error: %w", err)
	}
	return nil
}

// List skips directories and in-flight temp files.
func (s *FSStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("blob list error: %w", err)
	}

	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filex.IsTempName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("blob stat error: %w", err)
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), ModifiedAt: fi.ModTime()})
	}
	return out, nil
}
