package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"feriaocr/pkg/log"
)

const (
	debounceTick = 250 * time.Millisecond
	stableAfter  = 300 * time.Millisecond
)

// watchDirectory processes files that appear in dir until ctx is done,
// rewriting the results file after each one.
func (r *runner) watchDirectory(ctx context.Context, dir string, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info(log.Fields{"dir": dir}, "watching (debounced)")

	fileCh := make(chan string, 256)
	go debounce(ctx, w, fileCh)

	r.onDone = func(string) {
		if err := r.flush(); err != nil {
			log.Error(log.Fields{"error": err.Error()}, "write results")
		}
	}
	r.runWorkerPool(ctx, nil, workers, fileCh)
	return nil
}

// debounce forwards supported file names once no write event has been seen
// for stableAfter. It closes out when ctx is done or the watcher stops.
func debounce(ctx context.Context, w *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounceTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isSupportedExt(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > stableAfter {
					out <- name
					delete(pending, name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn(log.Fields{"error": err.Error()}, "watch error")
		}
	}
}
