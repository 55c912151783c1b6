package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a configuration file whenever it changes on disk and emits the spirograph
// parameters each time they differ from the last ones seen.
//
// The watcher never touches the GPU; receivers hand the values to the render thread.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	params  chan spirograph.Params
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	logger  *log.Logger
	current spirograph.Params
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger redirects reload errors.
func WithWatchLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher starts watching path. The file's directory is watched so editors that replace the
// file by rename are followed.
//
// Parameters:
//   - path: the YAML file to watch
//   - initial: the parameters currently in effect; a reload producing the same values emits nothing
//   - options: functional options
//
// Returns:
//   - *Watcher: the running watcher
//   - error: if the file system watcher cannot be created
func NewWatcher(path string, initial spirograph.Params, options ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		fs:      fsw,
		params:  make(chan spirograph.Params, 1),
		done:    make(chan struct{}),
		logger:  log.Default(),
		current: initial.Clamp(),
	}
	for _, opt := range options {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Params returns the channel changed parameters are delivered on. It is closed by Close.
func (w *Watcher) Params() <-chan spirograph.Params {
	return w.params
}

// Close stops the watcher and closes the Params channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.params)
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Printf("[Config] watch %s: %v", w.path, err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		// Partial writes fail to parse; the next write event retries.
		w.logger.Printf("[Config] reload %s: %v", w.path, err)
		return
	}

	next := cfg.Spirograph.Params
	if next == w.current {
		return
	}
	w.current = next
	w.logger.Printf("[Config] %s: spirograph %s", filepath.Base(w.path), next)

	// Keep only the newest value when the receiver lags.
	select {
	case <-w.params:
	default:
	}
	select {
	case w.params <- next:
	case <-w.done:
	}
}
