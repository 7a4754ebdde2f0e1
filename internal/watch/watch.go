// Package watch re-runs a callback when a watched file changes, debouncing
// editor write bursts (many editors write, truncate, and rename in quick
// succession on a single save).
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"novel-translator/internal/logger"
	"novel-translator/internal/textenc"
	"novel-translator/internal/types"
)

// DefaultDebounce is the quiet period after the last write before the
// callback fires.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches one file and invokes a callback with its re-read content
// after each debounced change.
type Watcher struct {
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher
	onChange func(content string)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// New starts watching path. onChange receives the decoded file content after
// each change settles. Close stops the watcher.
func New(path string, debounce time.Duration, onChange func(content string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create file watcher", err)
	}

	// Watch the directory, not the file: rename-based saves replace the
	// inode and would silently drop a file-level watch.
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, types.NewAppError(types.ErrFileNotFound, "failed to watch directory", err)
	}

	w := &Watcher{
		path:     path,
		debounce: debounce,
		fw:       fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()

	logger.Debug("watching file", logger.String("path", path))
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.bump()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", logger.Err(err))
		case <-w.done:
			return
		}
	}
}

// bump resets the debounce timer; the callback fires once the file has been
// quiet for the debounce period.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	content, err := textenc.DecodeFile(w.path)
	if err != nil {
		logger.Warn("failed to re-read watched file",
			logger.String("path", w.path), logger.Err(err))
		return
	}
	w.onChange(content)
}

// Close stops watching and releases the underlying fsnotify watcher. Pending
// debounced callbacks are cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	w.mu.Unlock()
	return w.fw.Close()
}
