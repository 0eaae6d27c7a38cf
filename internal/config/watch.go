package config

import (
	"context"
	"os"
	"time"

	"github.com/xtding233/slimelab/pkg/logger"
)

// FileWatcher polls file modification times and triggers a callback on change.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Start primes the mtime cache and polls in a goroutine until ctx is done.
// The returned channel closes when polling has stopped.
func (w *FileWatcher) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
// A file that appears after priming counts as a change.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		if ok && !mt.After(last) {
			continue
		}
		w.lastMTime[p] = mt
		if prime || w.onChange == nil {
			continue
		}
		logger.Log.WithField("path", p).Info("config file changed")
		w.onChange(p)
	}
}

// Watch reloads settings for profile whenever one of its files changes and hands
// each valid result to apply. Invalid edits are logged and skipped.
func (l *Loader) Watch(ctx context.Context, profile string, interval time.Duration, apply func(Settings)) <-chan struct{} {
	w := NewFileWatcher(l.Paths(profile), interval, func(string) {
		l.Invalidate()
		_, s, err := l.Resolve(profile)
		if err != nil {
			logger.Log.WithError(err).Warn("config reload rejected")
			return
		}
		apply(s)
	})
	return w.Start(ctx)
}
