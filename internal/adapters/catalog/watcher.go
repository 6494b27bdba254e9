package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Reloader is implemented by the catalog cache.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher reloads the catalog when its file changes on disk.
// The parent directory is watched so editors that replace the file atomically
// are still seen. Bursts of events collapse into one reload.
type Watcher struct {
	path     string
	target   Reloader
	debounce time.Duration

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(path string, target Reloader, debounce time.Duration) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("catalog watcher: target is nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: resolve %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: new watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("catalog watcher: watch %q: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		path:     abs,
		target:   target,
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start processes events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			log.Info().Str("file", w.path).Msg("catalog file changed, reloading")
			if err := w.target.Reload(ctx); err != nil {
				log.Error().Err(err).Str("file", w.path).Msg("catalog reload failed, keeping previous snapshot")
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("catalog watcher error")
		}
	}
}

func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
