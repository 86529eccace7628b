package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"spellpaste/src/clipboard"
	"spellpaste/src/collections"
	"spellpaste/src/config"
	"spellpaste/src/dispatch"
	"spellpaste/src/eventloop"
	"spellpaste/src/focus"
	"spellpaste/src/gui"
	"spellpaste/src/logutil"
	"spellpaste/src/registry"
	"spellpaste/src/selection"
	"spellpaste/src/singleinstance"
	"spellpaste/src/spell"
	"spellpaste/src/tray"
)

// normalizeFlagDashes maps GNU-style --cast/--list to Go's -cast/-list.
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case arg == "--cast":
			os.Args[i] = "-cast"
		case strings.HasPrefix(arg, "--cast="):
			os.Args[i] = "-cast" + arg[len("--cast"):]
		case arg == "--list":
			os.Args[i] = "-list"
		}
	}
}

func main() {
	cast := flag.String("cast", "", "Run one spell (delegating to a resident instance if present) and exit")
	list := flag.Bool("list", false, "List loaded spells and exit")
	normalizeFlagDashes()
	flag.Parse()

	// Load .env early so SINGLEINSTANCE_PORT_* apply before any port scan.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *list || *cast != "" {
		logutil.Setup(cfg.EnableFileLogging)
		runCLI(cfg, *cast, *list)
		return
	}

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		fmt.Printf("spellpaste is already running on port %d\n", startPort)
		os.Exit(1)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, we are the resident", startPort)
	// ------------------------------------------------

	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	collectionsDir := cfg.CollectionsDir
	if collectionsDir == "" {
		collectionsDir = collections.DefaultDir()
	}
	if err := collections.Ensure(collectionsDir); err != nil {
		log.Fatalf("Failed to prepare collections dir %s: %v", collectionsDir, err)
	}

	reg := registry.New()
	reg.Replace(collections.Load(collectionsDir))

	log.Printf("Spellpaste initialized")
	log.Printf("Collections: %s (%d spells)", collectionsDir, reg.Len())
	log.Printf("Hotkey: %s", cfg.Hotkey)

	broker := focus.NewBroker()
	capturer := selection.NewCapturer(cfg.SelectionSettle)
	ui := gui.New()

	dispatcher := dispatch.New(dispatch.Options{
		Focus:         broker,
		Window:        ui,
		Notifier:      ui,
		FocusSettle:   cfg.FocusSettle,
		FlushInterval: cfg.FlushInterval,
	})

	tooltip := fmt.Sprintf("Spellpaste - Press %s to cast", cfg.Hotkey)
	loop := eventloop.New(eventloop.Options{
		Registry:       reg,
		Dispatcher:     dispatcher,
		Capturer:       capturer,
		Focus:          broker,
		LoadSpells:     func() []spell.Spell { return collections.Load(collectionsDir) },
		DefaultTooltip: tooltip,
	})
	ui.SetHandlers(gui.Handlers{
		OnInvoke: loop.RequestInvoke,
		OnCancel: loop.RequestCancel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tray.Run(tray.Config{
		Title:             "Spellpaste",
		Tooltip:           tooltip,
		OnRefresh:         loop.RequestRefresh,
		OnOpenCollections: func() { openFolder(collectionsDir) },
		OnExit:            cancel,
	})

	loop.StartHotkey(cfg.Hotkey)

	if cfg.WatchCollections {
		if err := collections.Watch(ctx, collectionsDir, loop.RequestRefresh); err != nil {
			log.Printf("Collections watch unavailable: %v", err)
		}
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Tear the UI down when anything cancels the run context.
	go func() {
		<-ctx.Done()
		tray.Quit()
		ui.Quit()
	}()

	// fyne requires the main goroutine; blocks until Quit.
	ui.Run()
}

// openFolder opens the collections directory in the platform file manager.
func openFolder(dir string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", dir, err)
	}
}
