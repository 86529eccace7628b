package eventloop

import (
	"context"
	"log"

	"spellpaste/src/dispatch"
	"spellpaste/src/focus"
	"spellpaste/src/hotkey"
	"spellpaste/src/notification"
	"spellpaste/src/registry"
	"spellpaste/src/runner"
	"spellpaste/src/selection"
	"spellpaste/src/singleinstance"
	"spellpaste/src/spell"
	"spellpaste/src/tray"
	"spellpaste/src/worker"
)

// UI is the picker surface as seen from the loop. Implementations must be
// safe to call from the loop goroutine (the fyne UI marshals internally).
type UI interface {
	ShowPicker(spells []spell.Info)
	ShowPreview(content string)
	ShowError(msg string)
	Hide()
}

// Loop is the single-threaded coordinator for hotkey, picker, and
// delegated-TCP flows. All shared-state decisions (busy gate, registry
// refresh) happen on the loop goroutine; other goroutines only post into
// its channels.
type Loop struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	capturer   *selection.Capturer
	focus      *focus.Broker
	ui         UI
	pool       *worker.Pool
	srv        singleinstance.Server

	loadSpells func() []spell.Spell
	runSpell   func(entry, dir, input string) (string, error)

	busy           bool
	defaultTooltip string

	hotkeyCh  chan struct{}
	invokeCh  chan string
	cancelCh  chan struct{}
	refreshCh chan struct{}
	results   chan result
}

type result struct {
	res    spell.Result
	err    error
	target resultTarget
}

type resultTarget interface {
	OnResult(res spell.Result)
	OnError(err error)
	Close()
}

// hotkeyTarget delivers outcomes of picker-driven invocations back to the
// window.
type hotkeyTarget struct{ ui UI }

func (t hotkeyTarget) OnResult(res spell.Result) {
	if res.Mode == spell.ResultPreview {
		t.ui.ShowPreview(res.Content)
	}
	// Done and Stream need nothing here: delivery already happened or is
	// continuing out-of-band.
}

func (t hotkeyTarget) OnError(err error) {
	t.ui.ShowError(err.Error())
}

func (t hotkeyTarget) Close() {}

// delegatedTarget answers a CAST connection.
type delegatedTarget struct{ conn singleinstance.Conn }

func (t delegatedTarget) OnResult(res spell.Result) {
	_ = t.conn.RespondSuccess(res.Content)
}

func (t delegatedTarget) OnError(err error) {
	_ = t.conn.RespondError(err.Error())
}

func (t delegatedTarget) Close() {
	_ = t.conn.Close()
}

// Options wires the loop's collaborators.
type Options struct {
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher
	Capturer   *selection.Capturer
	Focus      *focus.Broker
	LoadSpells func() []spell.Spell
	// RunSpell serves delegated CAST requests, which always run to
	// completion and return stdout over the socket.
	RunSpell       func(entry, dir, input string) (string, error)
	PoolSize       int
	DefaultTooltip string
}

func New(opts Options) *Loop {
	if opts.RunSpell == nil {
		opts.RunSpell = runner.Run
	}
	if opts.DefaultTooltip == "" {
		opts.DefaultTooltip = "Spellpaste"
	}
	return &Loop{
		registry:       opts.Registry,
		dispatcher:     opts.Dispatcher,
		capturer:       opts.Capturer,
		focus:          opts.Focus,
		loadSpells:     opts.LoadSpells,
		runSpell:       opts.RunSpell,
		pool:           worker.New(opts.PoolSize),
		defaultTooltip: opts.DefaultTooltip,
		hotkeyCh:       make(chan struct{}, 4),
		invokeCh:       make(chan string, 4),
		cancelCh:       make(chan struct{}, 4),
		refreshCh:      make(chan struct{}, 4),
		results:        make(chan result, 1),
	}
}

// SetUI attaches the picker surface. Must happen before Run.
func (l *Loop) SetUI(ui UI) { l.ui = ui }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("Spellpaste: casting...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// StartHotkey registers the global hotkey and posts events into the loop.
func (l *Loop) StartHotkey(combo string) {
	if combo == "" {
		return
	}
	hotkey.Listen(combo, func() {
		select {
		case l.hotkeyCh <- struct{}{}:
		default:
		}
	})
}

// RequestInvoke posts a picker invocation (called from the UI thread).
func (l *Loop) RequestInvoke(trigger string) {
	select {
	case l.invokeCh <- trigger:
	default:
	}
}

// RequestCancel posts a cancel-and-hide (Esc / window close).
func (l *Loop) RequestCancel() {
	select {
	case l.cancelCh <- struct{}{}:
	default:
	}
}

// RequestRefresh posts a registry reload (tray menu, fs watcher).
func (l *Loop) RequestRefresh() {
	select {
	case l.refreshCh <- struct{}{}:
	default:
	}
}

// Run starts the singleinstance server and processes events until ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling.
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey()
		case trigger := <-l.invokeCh:
			l.handleInvoke(ctx, trigger)
		case <-l.cancelCh:
			l.handleCancel()
		case <-l.refreshCh:
			l.handleRefresh()
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

// handleHotkey runs the front half of the pipeline: save focus, capture
// the selection, show the picker. Focus MUST be saved before the window
// shows, or the broker captures the tool itself.
func (l *Loop) handleHotkey() {
	log.Printf("handleHotkey: called")
	if l.busy {
		notification.ShowError("Spellpaste", "Busy, please retry")
		return
	}
	l.focus.Save()
	l.capturer.Capture()
	l.ui.ShowPicker(l.registry.List())
}

func (l *Loop) handleInvoke(ctx context.Context, trigger string) {
	log.Printf("handleInvoke: trigger=%q", trigger)
	if l.busy {
		l.ui.ShowError("Busy, please retry")
		return
	}

	// Unknown trigger fails here, before any process is spawned or window
	// manipulated.
	sp, err := l.registry.Lookup(trigger)
	if err != nil {
		log.Printf("handleInvoke: %v", err)
		l.ui.ShowError(err.Error())
		return
	}

	input := l.capturer.Last()
	target := hotkeyTarget{ui: l.ui}

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, func(context.Context) (spell.Result, error) {
		return l.dispatcher.Invoke(sp, input)
	}, func(res spell.Result, err error) {
		l.results <- result{res: res, err: err, target: target}
	})
	if !submitted {
		l.setBusy(false)
		l.ui.ShowError("Busy, please retry")
	}
}

// handleCancel hides the window and restores prior focus without running
// any spell.
func (l *Loop) handleCancel() {
	l.ui.Hide()
	l.focus.Restore()
}

func (l *Loop) handleRefresh() {
	if l.loadSpells == nil {
		return
	}
	l.registry.Replace(l.loadSpells())
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	req := conn.Request()
	switch req.Kind {
	case singleinstance.KindList:
		_ = conn.RespondSuccess(singleinstance.FormatInventory(l.registry.List()))
		_ = conn.Close()

	case singleinstance.KindCast:
		target := delegatedTarget{conn: conn}
		if l.busy {
			target.OnError(errBusy{})
			target.Close()
			return
		}
		sp, err := l.registry.Lookup(req.Trigger)
		if err != nil {
			target.OnError(err)
			target.Close()
			return
		}
		l.setBusy(true)
		submitted := l.pool.Submit(ctx, func(context.Context) (spell.Result, error) {
			out, err := l.runSpell(sp.Entry, sp.Dir, req.Input)
			return spell.Result{Mode: spell.ResultDone, Content: out}, err
		}, func(res spell.Result, err error) {
			l.results <- result{res: res, err: err, target: target}
		})
		if !submitted {
			l.setBusy(false)
			target.OnError(errBusy{})
			target.Close()
		}
	}
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: mode=%d err=%v", res.res.Mode, res.err)
	l.setBusy(false)
	if res.target == nil {
		return
	}
	defer res.target.Close()

	if res.err != nil {
		res.target.OnError(res.err)
		return
	}
	res.target.OnResult(res.res)
}

type errBusy struct{}

func (errBusy) Error() string { return "Busy, please retry" }
