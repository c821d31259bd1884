package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid create/write bursts per file
}

// StartWatcher emits the path of every allowed document created, written or
// renamed under the roots. Both channels close when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("ingest.watch.no_roots")
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)
	var initial []string

	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && Allowed(path) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("ingest.watch.add_root_failed", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	logger.Info("ingest.watch.started", "roots", cfg.Roots, "initial", len(initial))

	go func() {
		var (
			mu      sync.Mutex
			pending = map[string]*time.Timer{}
			wg      sync.WaitGroup
		)
		defer func() {
			mu.Lock()
			for p, t := range pending {
				if t.Stop() {
					wg.Done()
				}
				delete(pending, p)
			}
			mu.Unlock()
			wg.Wait()
			_ = w.Close()
			close(evCh)
			close(errCh)
		}()

		emit := func(p string) {
			select {
			case evCh <- p:
			case <-ctx.Done():
			}
		}
		for _, p := range initial {
			emit(p)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					// new sub-directories are watched too; files make this fail quietly
					_ = w.Add(e.Name)
				}
				if !Allowed(e.Name) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
					continue
				}
				if cfg.Debounce <= 0 {
					emit(e.Name)
					continue
				}
				name := e.Name
				mu.Lock()
				if t, ok := pending[name]; ok && t.Stop() {
					wg.Done()
				}
				wg.Add(1)
				var t *time.Timer
				t = time.AfterFunc(cfg.Debounce, func() {
					defer wg.Done()
					mu.Lock()
					if pending[name] == t {
						delete(pending, name)
					}
					mu.Unlock()
					emit(name)
				})
				pending[name] = t
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
