// Package dispatch turns a resolved spell plus the captured selection into
// delivered output. It is a branch over (output mode × stream mode); every
// branch that both restores focus and sends synthetic input does so in the
// strict order hide-window → restore-focus → settle → synthetic-input.
// Reversing hide/restore risks the restore targeting the tool's own
// window; skipping the settle risks input landing mid focus transition.
package dispatch

import (
	"log"
	"strings"
	"time"

	"spellpaste/src/clipboard"
	"spellpaste/src/focus"
	"spellpaste/src/platform"
	"spellpaste/src/runner"
	"spellpaste/src/spell"
	"spellpaste/src/stream"
)

// Child is the streamed view of a spawned spell process.
type Child interface {
	Chunks() <-chan string
	Wait() error
}

// Window hides the tool window before focus is handed back.
type Window interface {
	Hide()
}

// Notifier receives the preview-stream push events: zero or more ordered
// chunks, then exactly one end signal.
type Notifier interface {
	StreamChunk(text string)
	StreamEnd()
}

// Options wires the dispatcher's collaborators. Zero fields get the real
// implementations; tests inject fakes.
type Options struct {
	Focus    *focus.Broker
	Window   Window
	Notifier Notifier

	Spawn        func(entry, dir, input string) (Child, error)
	Run          func(entry, dir, input string) (string, error)
	SetClipboard func(text string) error
	TypeText     func(text string)
	PasteGesture func()

	// FocusSettle is the wait between restore-focus and synthetic input.
	FocusSettle time.Duration
	// FlushInterval is the stream batching window.
	FlushInterval time.Duration
}

type Dispatcher struct {
	opts Options
}

func New(opts Options) *Dispatcher {
	if opts.Spawn == nil {
		opts.Spawn = func(entry, dir, input string) (Child, error) {
			return runner.Spawn(entry, dir, input)
		}
	}
	if opts.Run == nil {
		opts.Run = runner.Run
	}
	if opts.SetClipboard == nil {
		opts.SetClipboard = clipboard.WriteText
	}
	if opts.TypeText == nil {
		opts.TypeText = platform.TypeText
	}
	if opts.PasteGesture == nil {
		opts.PasteGesture = platform.SendPasteGesture
	}
	if opts.FocusSettle <= 0 {
		opts.FocusSettle = 50 * time.Millisecond
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = stream.DefaultFlushInterval
	}
	return &Dispatcher{opts: opts}
}

// Invoke runs one spell against the captured selection. The spell's output
// and stream modes are read once here and fixed for the invocation.
// Streaming branches return immediately and continue on their own
// goroutines; blocking branches return after delivery. The only error is
// a spawn failure, which occurs before any output side effect.
func (d *Dispatcher) Invoke(sp spell.Spell, selection string) (spell.Result, error) {
	log.Printf("Dispatch: %q mode=%s stream=%v", sp.Trigger, sp.OutputMode, sp.StreamMode)

	if sp.OutputMode == spell.OutputPreview && sp.StreamMode {
		go d.previewStream(sp, selection)
		return spell.Result{Mode: spell.ResultStream}, nil
	}

	if sp.OutputMode == spell.OutputPaste && sp.StreamMode {
		d.hideAndRestore()
		time.Sleep(d.opts.FocusSettle)
		go d.typeStream(sp, selection)
		return spell.Result{Mode: spell.ResultDone}, nil
	}

	output, err := d.opts.Run(sp.Entry, sp.Dir, selection)
	if err != nil {
		return spell.Result{}, err
	}

	switch sp.OutputMode {
	case spell.OutputNone:
		d.hideAndRestore()
		return spell.Result{Mode: spell.ResultDone}, nil

	case spell.OutputClipboard:
		if err := d.opts.SetClipboard(trimTrailingNewlines(output)); err != nil {
			log.Printf("Dispatch: clipboard write failed: %v", err)
		}
		d.hideAndRestore()
		return spell.Result{Mode: spell.ResultDone}, nil

	case spell.OutputPreview:
		// The window stays up; the caller displays the content in place.
		return spell.Result{Mode: spell.ResultPreview, Content: output}, nil

	default: // spell.OutputPaste
		if err := d.opts.SetClipboard(trimTrailingNewlines(output)); err != nil {
			log.Printf("Dispatch: clipboard write failed: %v", err)
		}
		d.hideAndRestore()
		time.Sleep(d.opts.FocusSettle)
		d.opts.PasteGesture()
		return spell.Result{Mode: spell.ResultDone}, nil
	}
}

func (d *Dispatcher) hideAndRestore() {
	if d.opts.Window != nil {
		d.opts.Window.Hide()
	}
	if d.opts.Focus != nil {
		d.opts.Focus.Restore()
	}
}

// previewStream feeds batched output to the notifier. Spawn failure still
// emits the end signal so the surface can stop waiting.
func (d *Dispatcher) previewStream(sp spell.Spell, selection string) {
	child, err := d.opts.Spawn(sp.Entry, sp.Dir, selection)
	if err != nil {
		log.Printf("Dispatch: preview stream spawn failed: %v", err)
		if d.opts.Notifier != nil {
			d.opts.Notifier.StreamEnd()
		}
		return
	}
	stream.Batch(child.Chunks(), d.opts.FlushInterval, func(content string, final bool) {
		if d.opts.Notifier == nil {
			return
		}
		if content != "" {
			d.opts.Notifier.StreamChunk(content)
		}
		if final {
			d.opts.Notifier.StreamEnd()
		}
	})
	_ = child.Wait()
}

// typeStream types each batch into whatever now holds focus. Focus was
// already handed back before this goroutine started.
func (d *Dispatcher) typeStream(sp spell.Spell, selection string) {
	child, err := d.opts.Spawn(sp.Entry, sp.Dir, selection)
	if err != nil {
		log.Printf("Dispatch: type stream spawn failed: %v", err)
		return
	}
	stream.Batch(child.Chunks(), d.opts.FlushInterval, func(content string, final bool) {
		if content != "" {
			d.opts.TypeText(content)
		}
	})
	_ = child.Wait()
}

func trimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\n")
}
