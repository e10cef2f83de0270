package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	if err := s.EnsureAreas(); err != nil {
		t.Fatalf("ensure areas: %v", err)
	}
	for _, area := range []string{AreaOptimized, AreaThumbnails} {
		if fi, err := os.Stat(filepath.Join(root, area)); err != nil || !fi.IsDir() {
			t.Fatalf("area %s missing: %v", area, err)
		}
	}

	ctx := context.Background()
	if err := s.Put(ctx, AreaOptimized, "a.webp", strings.NewReader("pixels"), 6, "image/webp"); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := s.Open(ctx, AreaOptimized, "a.webp")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "pixels" {
		t.Fatalf("read back %q", data)
	}

	names, err := s.List(ctx, AreaOptimized)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "a.webp" {
		t.Fatalf("list returned %v", names)
	}

	if err := s.Remove(ctx, AreaOptimized, "a.webp"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, AreaOptimized, "a.webp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove should be ErrNotFound, got %v", err)
	}
	if _, err := s.Open(ctx, AreaOptimized, "a.webp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open after remove should be ErrNotFound, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalStoreFailedPutLeavesNothing(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	if err := s.Put(context.Background(), AreaThumbnails, "b.webp", failingReader{}, 10, "image/webp"); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(filepath.Join(root, AreaThumbnails))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty area, found %d entries", len(entries))
	}
}

func TestLocalStoreRejectsEscapingNames(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	ctx := context.Background()
	for _, name := range []string{"../x.webp", "..", "a/b.webp", ""} {
		if err := s.Put(ctx, AreaOptimized, name, strings.NewReader("x"), 1, ""); err == nil {
			t.Fatalf("put %q should fail", name)
		}
		if _, err := s.Open(ctx, AreaOptimized, name); err == nil {
			t.Fatalf("open %q should fail", name)
		}
	}
	if _, err := s.List(ctx, "../"); err == nil {
		t.Fatal("list outside root should fail")
	}
}

func TestLocalStoreListMissingArea(t *testing.T) {
	names, err := NewLocalStore(t.TempDir()).List(context.Background(), AreaOptimized)
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty list, got %v %v", names, err)
	}
}
