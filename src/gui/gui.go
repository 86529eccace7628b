// Package gui owns the picker window: a list of loaded spells shown when
// the hotkey fires, a preview pane for non-streaming preview results, and
// a live surface for streamed chunks. All state here belongs to the fyne
// driver goroutine; other goroutines reach it only through fyne.Do.
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"spellpaste/src/spell"
)

// Handlers are the picker's outbound actions. They are called on the fyne
// goroutine and must only post into the event loop.
type Handlers struct {
	OnInvoke func(trigger string)
	OnCancel func()
}

type UI struct {
	app      fyne.App
	win      fyne.Window
	list     *widget.List
	preview  *widget.Label
	status   *widget.Label
	handlers Handlers

	// accessed only on the fyne goroutine
	spells   []spell.Info
	selected int
}

func New() *UI {
	u := &UI{app: app.New()}

	u.win = u.app.NewWindow("Spellpaste")
	u.win.SetMaster()
	u.win.Resize(fyne.NewSize(460, 360))
	u.win.CenterOnScreen()

	u.status = widget.NewLabel("Select a spell")
	u.preview = widget.NewLabel("")
	u.preview.Wrapping = fyne.TextWrapWord

	u.list = widget.NewList(
		func() int { return len(u.spells) },
		func() fyne.CanvasObject { return widget.NewLabel("trigger") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= len(u.spells) {
				return
			}
			info := u.spells[i]
			text := info.Trigger
			if info.Description != "" {
				text += "  -  " + info.Description
			}
			o.(*widget.Label).SetText(text)
		})
	u.list.OnSelected = func(id widget.ListItemID) { u.selected = id }

	u.win.SetContent(container.NewBorder(
		u.status, nil, nil, nil,
		container.NewVSplit(u.list, container.NewVScroll(u.preview)),
	))

	// Closing the window is cancel, not quit; the resident lives in the tray.
	u.win.SetCloseIntercept(func() {
		if u.handlers.OnCancel != nil {
			u.handlers.OnCancel()
		}
	})

	u.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			if u.handlers.OnCancel != nil {
				u.handlers.OnCancel()
			}
		case fyne.KeyReturn, fyne.KeyEnter:
			if u.handlers.OnInvoke != nil && u.selected >= 0 && u.selected < len(u.spells) {
				u.handlers.OnInvoke(u.spells[u.selected].Trigger)
			}
		case fyne.KeyDown:
			if u.selected+1 < len(u.spells) {
				u.list.Select(u.selected + 1)
			}
		case fyne.KeyUp:
			if u.selected > 0 {
				u.list.Select(u.selected - 1)
			}
		}
	})

	return u
}

func (u *UI) SetHandlers(h Handlers) { u.handlers = h }

// Run drives the fyne event loop. Must run on the main goroutine; blocks
// until Quit.
func (u *UI) Run() { u.app.Run() }

func (u *UI) Quit() { fyne.Do(u.app.Quit) }

// ShowPicker presents the spell list. Called after focus save + selection
// capture so the window never becomes "the previous window" itself.
func (u *UI) ShowPicker(spells []spell.Info) {
	fyne.Do(func() {
		u.spells = spells
		u.preview.SetText("")
		u.status.SetText("Select a spell")
		u.list.Refresh()
		if len(spells) > 0 {
			u.list.Select(0)
		}
		u.win.Show()
		u.win.RequestFocus()
	})
}

// Hide withdraws the picker window.
func (u *UI) Hide() {
	fyne.Do(func() { u.win.Hide() })
}

// ShowPreview displays a completed spell's output in place; the window
// stays up.
func (u *UI) ShowPreview(content string) {
	fyne.Do(func() {
		u.status.SetText("Result")
		u.preview.SetText(content)
	})
}

// ShowError surfaces a user-visible failure in the status line.
func (u *UI) ShowError(msg string) {
	fyne.Do(func() { u.status.SetText(msg) })
}

// StreamChunk appends one batched chunk to the preview surface. Chunks
// arrive in emission order; appending reproduces the child's output.
func (u *UI) StreamChunk(text string) {
	fyne.Do(func() {
		u.status.SetText("Streaming...")
		u.preview.SetText(u.preview.Text + text)
	})
}

// StreamEnd marks the end of a streamed invocation.
func (u *UI) StreamEnd() {
	fyne.Do(func() { u.status.SetText("Done") })
}
