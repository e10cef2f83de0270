package janitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanAndSweep(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "stale.jpg")
	fresh := filepath.Join(root, "fresh.png")
	hidden := filepath.Join(root, ".gitkeep")
	derivDir := filepath.Join(root, "optimized")
	writeFile(t, stale)
	writeFile(t, fresh)
	writeFile(t, hidden)
	if err := os.MkdirAll(derivDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(derivDir, "keep.webp"))

	now := time.Now()
	if err := os.Chtimes(stale, now.Add(-time.Hour), now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	j := New(root, 10*time.Minute, zerolog.Nop())
	if err := j.Scan(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	removed := j.Sweep(now)
	if len(removed) != 1 || removed[0] != stale {
		t.Fatalf("removed = %v", removed)
	}
	for _, p := range []string{fresh, hidden, filepath.Join(derivDir, "keep.webp")} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should remain: %v", p, err)
		}
	}

	// fresh.png is removed once it ages past the grace period
	removed = j.Sweep(now.Add(11 * time.Minute))
	if len(removed) != 1 || removed[0] != fresh {
		t.Fatalf("second sweep removed %v", removed)
	}
}

func TestSweepIgnoresAlreadyDiscarded(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "gone.jpg")
	writeFile(t, p)
	j := New(root, time.Minute, zerolog.Nop())
	j.track(p, time.Now().Add(-2*time.Minute))
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	if removed := j.Sweep(time.Now()); len(removed) != 0 {
		t.Fatalf("nothing should be reported, got %v", removed)
	}
	if j.tracked(p) {
		t.Fatal("entry should be forgotten")
	}
}

func TestRunTracksNewOriginals(t *testing.T) {
	root := t.TempDir()
	j := New(root, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	p := filepath.Join(root, "spooled.jpg")
	deadline := time.Now().Add(5 * time.Second)
	// the watch is registered asynchronously; rewrite until the create event lands
	for !j.tracked(p) {
		if time.Now().After(deadline) {
			t.Fatal("spooled file was never tracked")
		}
		os.Remove(p)
		writeFile(t, p)
		time.Sleep(50 * time.Millisecond)
	}

	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(5 * time.Second)
	for j.tracked(p) {
		if time.Now().After(deadline) {
			t.Fatal("removed file still tracked")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
