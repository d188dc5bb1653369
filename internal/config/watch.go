package config

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
// A file that disappears after being seen also counts as a change. The list
// function is re-evaluated on every scan so new files are picked up.
type FileWatcher struct {
	Interval  time.Duration
	list      func() ([]string, error)
	onChange  func(string) // called with path that changed
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher over a fixed set of paths.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	fixed := append([]string(nil), paths...)
	return NewListWatcher(func() ([]string, error) { return fixed, nil }, interval, onChange)
}

// NewListWatcher creates a watcher whose path set comes from list.
func NewListWatcher(list func() ([]string, error), interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Interval:  interval,
		list:      list,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *FileWatcher) Start() {
	ticker := time.NewTicker(w.Interval)
	// prime cache
	w.scanAll(true)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that changed since
// last scan. Files seen for the first time after priming are changes too.
func (w *FileWatcher) scanAll(prime bool) {
	paths, err := w.list()
	if err != nil {
		return
	}
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		present[p] = true
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime || (ok && !mt.After(last)) {
			continue
		}
		w.notify(p)
	}
	for p := range w.lastMTime {
		if !present[p] {
			delete(w.lastMTime, p)
			if !prime {
				w.notify(p)
			}
		}
	}
}

func (w *FileWatcher) notify(p string) {
	if w.onChange != nil {
		w.onChange(p)
	}
}
