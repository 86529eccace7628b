package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var mu sync.Mutex

func Init() error {
	return clipboard.Init()
}

// ReadText returns the clipboard's current text content, or "" when the
// clipboard is empty or holds a non-text format.
func ReadText() string {
	mu.Lock()
	defer mu.Unlock()
	return string(clipboard.Read(clipboard.FmtText))
}

// WriteText performs a mutex-guarded clipboard write to prevent corruption
// under parallel writes.
func WriteText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
