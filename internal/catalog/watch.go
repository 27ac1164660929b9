package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches the catalog directory and triggers a callback when a section
// file is written, created or renamed. Bursts of events within Debounce collapse
// into one callback.
type FileWatcher struct {
	Dir      string
	Debounce time.Duration
	onChange func(string) // called with path that changed
	onError  func(error)

	w      *fsnotify.Watcher
	stopCh chan struct{}
	once   sync.Once
}

// NewFileWatcher creates a watcher for dir; onError may be nil.
func NewFileWatcher(dir string, debounce time.Duration, onChange func(string), onError func(error)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &FileWatcher{
		Dir:      dir,
		Debounce: debounce,
		onChange: onChange,
		onError:  onError,
		w:        w,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (fw *FileWatcher) Start() {
	go fw.loop()
}

// Stop terminates the watcher. Safe to call more than once.
func (fw *FileWatcher) Stop() {
	fw.once.Do(func() {
		close(fw.stopCh)
		_ = fw.w.Close()
	})
}

func (fw *FileWatcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !isSection(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = ev.Name
			if fw.Debounce <= 0 {
				fw.fire(pending)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.Debounce)
			} else {
				timer.Reset(fw.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			fw.fire(pending)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		case <-fw.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (fw *FileWatcher) fire(path string) {
	if fw.onChange != nil {
		fw.onChange(path)
	}
}

func isSection(path string) bool {
	base := filepath.Base(path)
	for _, s := range sectionFiles {
		if s == base {
			return true
		}
	}
	return false
}
