package collections

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watch observes the collections directory (and each collection subdir)
// and calls onChange after edits settle. Events are debounced so that an
// editor writing index.json in several steps triggers one reload.
// The watcher stops when ctx is cancelled.
func Watch(ctx context.Context, dir string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	addSubdirs(w, dir)

	go func() {
		defer w.Close()

		var debounce *time.Timer
		fire := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// A new collection directory needs its own watch entry.
				if ev.Op.Has(fsnotify.Create) {
					if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
						_ = w.Add(ev.Name)
					}
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Collections: watch error: %v", err)
			case <-fire:
				log.Printf("Collections: change detected, reloading")
				onChange()
			}
		}
	}()

	return nil
}

func addSubdirs(w *fsnotify.Watcher, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			_ = w.Add(filepath.Join(dir, entry.Name()))
		}
	}
}
