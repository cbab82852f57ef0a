// Package watch re-analyses a Ryujinx log whenever the emulator writes to it.
//
// A watcher follows either a single log file or a Logs directory. In
// directory mode it switches to whichever log the emulator last created or
// wrote, so a new emulator session is picked up without restarting.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bimmerbailey/ryulog/internal/logfile"
)

// DefaultDebounce is the quiet period after the last write before the
// callback runs.
const DefaultDebounce = 2 * time.Second

// ChangeFunc is called with the path of the log that changed.
type ChangeFunc func(ctx context.Context, path string) error

// Options configures the watcher behavior.
type Options struct {
	Path     string        // Log file or Logs directory
	Debounce time.Duration // Quiet period before OnChange runs
	OnChange ChangeFunc    // Called once per burst of writes
	Logger   *slog.Logger
}

// Watcher follows a log file or directory.
type Watcher struct {
	opts    Options
	dir     string
	target  string // fixed file in file mode, empty in directory mode
	current string
}

// New creates a Watcher with the given options.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{opts: opts}
}

// Run calls OnChange for the current log, then again after every burst of
// writes. It blocks until ctx is cancelled or OnChange returns an error.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	if err := w.resolve(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	defer fw.Close()

	// The directory is watched even in file mode so a log that is deleted
	// and recreated keeps being followed.
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	if err := w.fire(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if w.handleEvent(event) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-timer.C:
			if err := w.fire(ctx); err != nil {
				return err
			}
		}
	}
}

// resolve decides between file and directory mode.
func (w *Watcher) resolve() error {
	info, err := os.Stat(w.opts.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", w.opts.Path, err)
	}
	if !info.IsDir() {
		w.target = filepath.Clean(w.opts.Path)
		w.dir = filepath.Dir(w.target)
		w.current = w.target
		return nil
	}

	w.dir = filepath.Clean(w.opts.Path)
	if newest, err := logfile.Newest(w.dir); err == nil {
		w.current = newest
	} else {
		w.opts.Logger.Info("no log yet, waiting for the emulator", "dir", w.dir)
	}
	return nil
}

// handleEvent reports whether event should schedule a callback.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)

	if w.target != "" {
		return name == w.target
	}

	if isLog, _ := logfile.IsLogName(name); !isLog {
		return false
	}
	if name != w.current {
		w.opts.Logger.Info("following log", "path", name)
		w.current = name
	}
	return true
}

func (w *Watcher) fire(ctx context.Context) error {
	if w.current == "" {
		return nil
	}
	if _, err := os.Stat(w.current); err != nil {
		w.opts.Logger.Debug("log not readable yet", "path", w.current, "error", err)
		return nil
	}
	w.opts.Logger.Debug("log changed", "path", w.current)
	return w.opts.OnChange(ctx, w.current)
}
