package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps derivatives in sibling directories under one uploads root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// EnsureAreas creates the root and both derivative directories if missing.
func (s *LocalStore) EnsureAreas() error {
	for _, area := range []string{AreaOptimized, AreaThumbnails} {
		if err := os.MkdirAll(filepath.Join(s.root, area), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", area, err)
		}
	}
	return nil
}

func (s *LocalStore) Put(ctx context.Context, area, name string, r io.Reader, _ int64, _ string) error {
	dst, err := s.path(area, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, area, name string) (io.ReadCloser, error) {
	p, err := s.path(area, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, area, name)
	}
	return f, err
}

func (s *LocalStore) Remove(_ context.Context, area, name string) error {
	p, err := s.path(area, name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, area, name)
	}
	return err
}

func (s *LocalStore) List(_ context.Context, area string) ([]string, error) {
	if !isPlainName(area) {
		return nil, fmt.Errorf("invalid area %q", area)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, area))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *LocalStore) path(area, name string) (string, error) {
	if !isPlainName(area) || !isPlainName(name) {
		return "", fmt.Errorf("invalid derivative path %q/%q", area, name)
	}
	return filepath.Join(s.root, area, name), nil
}

// isPlainName rejects anything that could escape its directory.
func isPlainName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
