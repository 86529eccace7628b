package eventloop

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellpaste/src/dispatch"
	"spellpaste/src/focus"
	"spellpaste/src/platform"
	"spellpaste/src/registry"
	"spellpaste/src/selection"
	"spellpaste/src/singleinstance"
	"spellpaste/src/spell"
)

type fakeUI struct {
	mu       sync.Mutex
	pickers  int
	shown    []spell.Info
	preview  string
	errMsg   string
	hides    int
	chunks   []string
	streamed bool
}

func (f *fakeUI) ShowPicker(spells []spell.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pickers++
	f.shown = spells
}

func (f *fakeUI) ShowPreview(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preview = content
}

func (f *fakeUI) ShowError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg = msg
}

func (f *fakeUI) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
}

func (f *fakeUI) StreamChunk(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, text)
}

func (f *fakeUI) StreamEnd() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamed = true
}

func (f *fakeUI) get(read func(*fakeUI) string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return read(f)
}

// pinPorts restricts the resident port scan to one ephemeral port so
// parallel test runs cannot collide.
func pinPorts(t *testing.T) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()
	t.Setenv("SINGLEINSTANCE_PORT_START", strconv.Itoa(port))
	t.Setenv("SINGLEINSTANCE_PORT_END", strconv.Itoa(port))
}

type testLoop struct {
	loop     *Loop
	ui       *fakeUI
	reg      *registry.Registry
	restored atomic.Int32

	mu   sync.Mutex
	next []spell.Spell
}

func (tl *testLoop) setNext(spells []spell.Spell) {
	tl.mu.Lock()
	tl.next = spells
	tl.mu.Unlock()
}

func newTestLoop(t *testing.T, spells []spell.Spell) *testLoop {
	t.Helper()
	pinPorts(t)

	tl := &testLoop{ui: &fakeUI{}}
	ui := tl.ui
	reg := registry.New()
	reg.Replace(spells)
	tl.reg = reg

	broker := focus.NewBrokerWithHooks(
		func() platform.Handle { return 11 },
		func(platform.Handle) { tl.restored.Add(1) },
	)

	// The clipboard changes across the first capture's before/after reads
	// and is stable afterwards.
	first := true
	capturer := &selection.Capturer{
		Settle: time.Millisecond,
		ReadClipboard: func() string {
			if first {
				first = false
				return "stale"
			}
			return "selected text"
		},
		SendCopy: func() {},
	}

	dispatcher := dispatch.New(dispatch.Options{
		Focus:    broker,
		Window:   ui,
		Notifier: ui,
		Run: func(entry, dir, input string) (string, error) {
			return "ran " + entry + " on " + input, nil
		},
		SetClipboard:  func(string) error { return nil },
		TypeText:      func(string) {},
		PasteGesture:  func() {},
		FocusSettle:   time.Millisecond,
		FlushInterval: 30 * time.Millisecond,
	})

	loop := New(Options{
		Registry:   reg,
		Dispatcher: dispatcher,
		Capturer:   capturer,
		Focus:      broker,
		LoadSpells: func() []spell.Spell {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			return tl.next
		},
		RunSpell: func(entry, dir, input string) (string, error) {
			return "cast " + entry + " on " + input, nil
		},
		PoolSize: 1,
	})
	loop.SetUI(ui)
	tl.loop = loop

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	return tl
}

func TestHotkeyCapturesAndShowsPicker(t *testing.T) {
	tl := newTestLoop(t, []spell.Spell{{Trigger: "hello", Entry: "echo hi"}})

	tl.loop.hotkeyCh <- struct{}{}

	require.Eventually(t, func() bool {
		tl.ui.mu.Lock()
		defer tl.ui.mu.Unlock()
		return tl.ui.pickers == 1
	}, 2*time.Second, 10*time.Millisecond)

	tl.ui.mu.Lock()
	defer tl.ui.mu.Unlock()
	require.Len(t, tl.ui.shown, 1)
	assert.Equal(t, "hello", tl.ui.shown[0].Trigger)
	assert.Equal(t, "selected text", tl.loop.capturer.Last())
}

func TestInvokeUnknownTriggerShowsError(t *testing.T) {
	tl := newTestLoop(t, nil)

	tl.loop.RequestInvoke("nope")

	require.Eventually(t, func() bool {
		return tl.ui.get(func(f *fakeUI) string { return f.errMsg }) != ""
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, `spell "nope" not found`, tl.ui.get(func(f *fakeUI) string { return f.errMsg }))
}

func TestInvokePreviewSpellShowsOutput(t *testing.T) {
	tl := newTestLoop(t, []spell.Spell{
		{Trigger: "peek", Entry: "wc -c", OutputMode: spell.OutputPreview},
	})

	tl.loop.hotkeyCh <- struct{}{} // capture a selection first
	require.Eventually(t, func() bool {
		tl.ui.mu.Lock()
		defer tl.ui.mu.Unlock()
		return tl.ui.pickers == 1
	}, 2*time.Second, 10*time.Millisecond)

	tl.loop.RequestInvoke("peek")

	require.Eventually(t, func() bool {
		return tl.ui.get(func(f *fakeUI) string { return f.preview }) != ""
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "ran wc -c on selected text",
		tl.ui.get(func(f *fakeUI) string { return f.preview }))
}

func TestCancelHidesAndRestoresFocus(t *testing.T) {
	tl := newTestLoop(t, nil)

	tl.loop.hotkeyCh <- struct{}{}
	require.Eventually(t, func() bool {
		tl.ui.mu.Lock()
		defer tl.ui.mu.Unlock()
		return tl.ui.pickers == 1
	}, 2*time.Second, 10*time.Millisecond)

	tl.loop.RequestCancel()

	require.Eventually(t, func() bool {
		return tl.restored.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	tl.ui.mu.Lock()
	defer tl.ui.mu.Unlock()
	assert.Equal(t, 1, tl.ui.hides)
}

func TestRefreshReloadsRegistry(t *testing.T) {
	tl := newTestLoop(t, []spell.Spell{{Trigger: "old"}})
	tl.setNext([]spell.Spell{{Trigger: "new-a"}, {Trigger: "new-b"}})

	tl.loop.RequestRefresh()

	require.Eventually(t, func() bool {
		return tl.reg.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
	_, err := tl.reg.Lookup("old")
	assert.Error(t, err)
}

func TestDelegatedCastOverTCP(t *testing.T) {
	newTestLoop(t, []spell.Spell{{Trigger: "hello", Entry: "echo hi"}})

	client := singleinstance.NewClient()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// The loop binds its port asynchronously inside Run.
	var delegated bool
	var output string
	var err error
	require.Eventually(t, func() bool {
		delegated, output, err = client.TryCast(ctx, "hello", "stdin text")
		return delegated
	}, 2*time.Second, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "cast echo hi on stdin text", output)

	delegated, spells, err := client.TryList(ctx)
	require.NoError(t, err)
	require.True(t, delegated)
	require.Len(t, spells, 1)
	assert.Equal(t, "hello", spells[0].Trigger)

	_, _, err = client.TryCast(ctx, "ghost", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
