package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Config wires the tray menu actions.
type Config struct {
	Title   string
	Tooltip string

	OnRefresh         func()
	OnOpenCollections func()
	OnExit            func()
}

var (
	mu    sync.Mutex
	ready bool
)

// Run starts the systray loop. Blocks until Quit; callers run it on its
// own goroutine.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() {
		if cfg.OnExit != nil {
			cfg.OnExit()
		}
	})
}

func onReady(cfg Config) {
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	mRefresh := systray.AddMenuItem("Refresh Spells", "Reload spell collections from disk")
	mOpen := systray.AddMenuItem("Open Collections Folder", "Open the collections directory")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit spellpaste")

	mu.Lock()
	ready = true
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				log.Printf("Tray: refresh requested")
				if cfg.OnRefresh != nil {
					cfg.OnRefresh()
				}
			case <-mOpen.ClickedCh:
				if cfg.OnOpenCollections != nil {
					cfg.OnOpenCollections()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// UpdateTooltip changes the tray tooltip (busy indication). No-op until
// the tray is ready.
func UpdateTooltip(tt string) {
	mu.Lock()
	ok := ready
	mu.Unlock()
	if ok {
		systray.SetTooltip(tt)
	}
}

// Quit tears the tray down.
func Quit() {
	systray.Quit()
}
