// Package watch rebuilds the documentation whenever annotated sources change,
// and optionally on a fixed interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/annodoc/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one complete build.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	SearchDir string
	// Extension selects the source files whose changes trigger a rebuild.
	Extension string
	Debounce  time.Duration
	// Interval enables an additional periodic rebuild when positive.
	Interval time.Duration
}

// Watcher runs builds on startup, on debounced source changes and on an
// optional schedule. Builds never overlap; requests arriving during a build
// coalesce into one follow-up build.
type Watcher struct {
	opts     Options
	build    BuildFunc
	requests chan struct{}
}

// New creates a Watcher.
func New(opts Options, build BuildFunc) (*Watcher, error) {
	if build == nil {
		return nil, errors.New("build function is required")
	}
	if opts.SearchDir == "" {
		return nil, errors.New("search directory is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{opts: opts, build: build, requests: make(chan struct{}, 1)}, nil
}

// Request asks for a rebuild. It never blocks.
func (w *Watcher) Request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Run performs an initial build and then watches until ctx is canceled.
// Build failures are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	if err := addDirsRecursive(fsw, w.opts.SearchDir); err != nil {
		return err
	}

	if w.opts.Interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	deb := newDebouncer(w.opts.Debounce, w.Request)
	defer deb.Stop()

	loopCtx, stopLoop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.buildLoop(loopCtx)
	}()
	defer func() {
		stopLoop()
		wg.Wait()
	}()

	w.Request()
	slog.Info("Watching for changes", logfields.Path(w.opts.SearchDir), slog.String("extension", w.opts.Extension))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsw, ev) {
				slog.Debug("Source change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
				deb.Trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.Request),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	slog.Info("Periodic rebuild scheduled", slog.Duration("interval", w.opts.Interval))
	return s, nil
}

// buildLoop runs requested builds one at a time until ctx is canceled.
func (w *Watcher) buildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			start := time.Now()
			if err := w.build(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			slog.Info("Rebuilt documentation", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

// handleEvent watches newly created directories and reports whether ev
// affects the build.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if shouldIgnoreEvent(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name)
			return containsSources(ev.Name, w.opts.Extension)
		}
	}
	return isRelevant(ev, w.opts.Extension)
}

// isRelevant reports whether ev concerns a source file. Removed or renamed
// paths without an extension may have been directories holding sources.
func isRelevant(ev fsnotify.Event, ext string) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	switch filepath.Ext(ev.Name) {
	case ext:
		return true
	case "":
		return ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	default:
		return false
	}
}

func containsSources(dir, ext string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including editor lock files such as .#name
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
