// Package janitor removes spooled upload originals that outlive their request,
// for example after a crash between spooling and derivative generation.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultGrace is how long an original may stay in the uploads root.
const DefaultGrace = 10 * time.Minute

// Janitor tracks plain files in the uploads root. Derivative directories below
// it are never touched.
type Janitor struct {
	root  string
	grace time.Duration
	log   zerolog.Logger

	mu   sync.Mutex
	seen map[string]time.Time
}

func New(root string, grace time.Duration, log zerolog.Logger) *Janitor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Janitor{root: root, grace: grace, log: log, seen: make(map[string]time.Time)}
}

// Scan registers files already present in the root, aged by their mtime.
func (j *Janitor) Scan() error {
	entries, err := os.ReadDir(j.root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", j.root, err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range entries {
		if !e.Type().IsRegular() || skip(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		j.seen[filepath.Join(j.root, e.Name())] = info.ModTime()
	}
	return nil
}

// Sweep removes tracked files older than the grace period at now and returns
// their paths.
func (j *Janitor) Sweep(now time.Time) []string {
	j.mu.Lock()
	var due []string
	for path, at := range j.seen {
		if now.Sub(at) >= j.grace {
			due = append(due, path)
			delete(j.seen, path)
		}
	}
	j.mu.Unlock()

	var removed []string
	for _, path := range due {
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
			j.log.Info().Str("path", path).Msg("removed stale upload original")
		case errors.Is(err, fs.ErrNotExist):
		default:
			j.log.Error().Err(err).Str("path", path).Msg("failed to remove stale upload original")
		}
	}
	return removed
}

// Run scans the root, then watches it and sweeps periodically until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(j.root); err != nil {
		return fmt.Errorf("watch %s: %w", j.root, err)
	}
	if err := j.Scan(); err != nil {
		return err
	}

	interval := j.grace / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.log.Info().Str("root", j.root).Dur("grace", j.grace).Msg("upload janitor started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			j.handle(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			j.log.Warn().Err(err).Msg("janitor watcher error")
		case now := <-ticker.C:
			j.Sweep(now)
		}
	}
}

func (j *Janitor) handle(ev fsnotify.Event) {
	if skip(filepath.Base(ev.Name)) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		j.track(ev.Name, time.Now())
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		j.mu.Lock()
		delete(j.seen, ev.Name)
		j.mu.Unlock()
	}
}

func (j *Janitor) track(path string, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.seen[path]; !ok {
		j.seen[path] = at
	}
}

func (j *Janitor) tracked(path string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.seen[path]
	return ok
}

func skip(name string) bool {
	return strings.HasPrefix(name, ".")
}
