package settings

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 100 * time.Millisecond

type watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// Watch reloads the document whenever the file changes on disk and calls
// onReload with the new content. The parent directory is watched so atomic
// replacements (write temp, rename) are seen.
func (s *Store) Watch(onReload func(Document)) error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		fw.Close()
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return err
	}
	w := &watcher{fw: fw, done: make(chan struct{})}
	s.watcher = w

	var timer *time.Timer
	reload := func() {
		doc, err := s.read()
		if err != nil {
			s.logger.Warn("settings reload failed", "path", s.path, "error", err)
			return
		}
		s.mu.Lock()
		s.doc = doc
		s.mu.Unlock()
		s.logger.Info("settings reloaded", "rules", len(doc.Mapping), "order", len(doc.Order))
		if onReload != nil {
			onReload(doc.clone())
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// editors and atomic writers emit bursts; settle before reading
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceInterval, reload)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher error", "error", err)
			case <-w.done:
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()
	return nil
}

// Stop ends watching. Safe to call more than once.
func (s *Store) Stop() error {
	s.watchMu.Lock()
	w := s.watcher
	s.watchMu.Unlock()
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
