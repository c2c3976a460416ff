package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the write bursts produced while a file is copied in.
const DefaultDebounce = 2 * time.Second

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // emit files already present in the roots
	Debounce    time.Duration // quiet period before a changed file is emitted
	Logger      *slog.Logger
}

// Watch emits paths of supported report files that are created or written
// under the configured roots. A path is emitted once its events have been
// quiet for the debounce period. The channel closes when ctx is done.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan string, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.New("no roots provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	var initial []string
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && eligible(path) {
				initial = append(initial, path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}
	sort.Strings(initial)

	out := make(chan string, 256)
	go func() {
		defer close(out)
		defer w.Close()

		emit := func(p string) bool {
			select {
			case out <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]time.Time{}
		timer := time.NewTimer(cfg.Debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := w.Add(e.Name); err != nil {
							log.Warn("ingest.watch.add_dir", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if eligible(e.Name) && (e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) {
					pending[e.Name] = time.Now()
					timer.Reset(cfg.Debounce)
				}

			case <-timer.C:
				now := time.Now()
				var ready []string
				for p, last := range pending {
					if now.Sub(last) >= cfg.Debounce {
						ready = append(ready, p)
						delete(pending, p)
					}
				}
				if len(pending) > 0 {
					timer.Reset(cfg.Debounce)
				}
				sort.Strings(ready)
				for _, p := range ready {
					log.Info("ingest.watch.file", "path", p)
					if !emit(p) {
						return
					}
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error("ingest.watch.error", "error", err)
			}
		}
	}()

	return out, nil
}
