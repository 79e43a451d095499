package perovskite

import (
	"errors"
	"testing"
	"time"

	"github.com/JacobMillward/perovskite/menu"
	"github.com/JacobMillward/perovskite/platform"
	"github.com/JacobMillward/perovskite/surface"
)

type testShell struct {
	handle    *RunHandle
	win       *platform.HeadlessWindow
	presenter *surface.Headless
	host      *menu.Headless
}

func buildTestShell(t *testing.T, configure func(*AppBuilder)) *testShell {
	t.Helper()

	shell := &testShell{
		win:       platform.NewHeadlessWindow(800, 600),
		presenter: surface.NewHeadless(),
		host:      menu.NewHeadless(),
	}

	builder := NewApp("T").
		WithWindow(shell.win).
		WithPresenter(shell.presenter).
		WithMenuHost(shell.host)

	if configure != nil {
		configure(builder)
	}

	handle, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	shell.handle = handle
	return shell
}

// countingApp quits from Update once quitAfter updates have run.
type countingApp struct {
	updates, draws, inits int
	quitAfter             int

	onInit   func(ctx *Context) error
	onEvent  func(ev platform.Event) error
	onUpdate func(ctx *Context)
	onDraw   func(ctx *Context)
}

func (a *countingApp) Init(ctx *Context) error {
	a.inits++

	if a.onInit != nil {
		return a.onInit(ctx)
	}
	return nil
}

func (a *countingApp) HandleEvent(ev platform.Event) error {
	if a.onEvent != nil {
		return a.onEvent(ev)
	}
	return nil
}

func (a *countingApp) Update(ctx *Context) error {
	a.updates++

	if a.onUpdate != nil {
		a.onUpdate(ctx)
	}

	if a.quitAfter > 0 && a.updates >= a.quitAfter {
		ctx.Quit()
	}

	return nil
}

func (a *countingApp) Draw(ctx *Context) error {
	a.draws++

	if a.onDraw != nil {
		a.onDraw(ctx)
	}

	return nil
}

func TestInitRunsOnceBeforeFirstUpdate(t *testing.T) {
	shell := buildTestShell(t, nil)

	app := &countingApp{quitAfter: 3}
	app.onInit = func(ctx *Context) error {
		if app.updates != 0 {
			t.Errorf("Init ran after %d updates, want before the first", app.updates)
		}
		return nil
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if app.inits != 1 {
		t.Errorf("inits = %d, want exactly 1", app.inits)
	}
	if app.updates != 3 {
		t.Errorf("updates = %d, want 3", app.updates)
	}
}

func TestInitErrorIsFatal(t *testing.T) {
	shell := buildTestShell(t, nil)

	boom := errors.New("boom")
	app := &countingApp{}
	app.onInit = func(ctx *Context) error { return boom }

	if err := shell.handle.Run(app); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}

	if app.updates != 0 || app.draws != 0 {
		t.Errorf("updates = %d, draws = %d, want 0 and 0 after failed init", app.updates, app.draws)
	}
	if got := shell.handle.State(); got != StateTerminated {
		t.Errorf("State() = %v, want Terminated", got)
	}
	if !shell.win.Terminated() {
		t.Error("window not terminated after failed init")
	}
}

func TestHandleEventSeesRawEventsBeforeRouting(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.win.Push(platform.Event{Kind: platform.KeyDown, Key: platform.KeySpace})

	var kinds []platform.EventKind

	app := &countingApp{quitAfter: 1}
	app.onEvent = func(ev platform.Event) error {
		kinds = append(kinds, ev.Kind)

		// the input snapshot must not have seen the event yet
		if ev.Kind == platform.KeyDown && shell.handle.input.IsKeyHeld(ev.Key) {
			t.Error("input snapshot updated before HandleEvent ran")
		}
		return nil
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(kinds) != 1 || kinds[0] != platform.KeyDown {
		t.Errorf("handled events = %v, want exactly one KeyDown", kinds)
	}

	// routing still happened after the handler
	if !shell.handle.input.IsKeyHeld(platform.KeySpace) {
		t.Error("event never reached the input snapshot")
	}
}

func TestHandleEventErrorIsFatal(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.win.Push(platform.Event{Kind: platform.KeyDown, Key: platform.KeySpace})

	boom := errors.New("boom")
	app := &countingApp{}
	app.onEvent = func(ev platform.Event) error { return boom }

	if err := shell.handle.Run(app); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}

	if app.updates != 0 {
		t.Errorf("updates = %d, want 0 after failed event handling", app.updates)
	}
	if got := shell.handle.State(); got != StateTerminated {
		t.Errorf("State() = %v, want Terminated", got)
	}
}

func TestDeltaTimeClampedToMaxFrameTime(t *testing.T) {
	shell := buildTestShell(t, func(b *AppBuilder) {
		b.WithMaxFrameTime(time.Millisecond)
	})

	app := &countingApp{quitAfter: 2}
	app.onUpdate = func(ctx *Context) {
		switch app.updates {
		case 1:
			// stall one frame so the next delta exceeds the clamp
			time.Sleep(5 * time.Millisecond)

		case 2:
			if got := ctx.DeltaTime(); got != time.Millisecond {
				t.Errorf("DeltaTime() = %v, want clamped to %v", got, time.Millisecond)
			}
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestDeltaTimeUnclampedByDefault(t *testing.T) {
	shell := buildTestShell(t, nil)

	app := &countingApp{quitAfter: 2}
	app.onUpdate = func(ctx *Context) {
		switch app.updates {
		case 1:
			time.Sleep(5 * time.Millisecond)

		case 2:
			if got := ctx.DeltaTime(); got < 5*time.Millisecond {
				t.Errorf("DeltaTime() = %v, want at least the 5ms stall", got)
			}
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestTargetFrameTimePacesLoop(t *testing.T) {
	shell := buildTestShell(t, func(b *AppBuilder) {
		b.WithTargetFrameTime(10 * time.Millisecond)
	})

	app := &countingApp{quitAfter: 3}

	start := time.Now()
	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// two full frames complete before the quit frame
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("3 paced frames took %v, want at least 20ms", elapsed)
	}
}

func TestCloseBeforeUpdateTerminatesWithoutDraw(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.win.RequestClose()

	app := &countingApp{}
	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if app.updates != 0 || app.draws != 0 {
		t.Errorf("updates = %d, draws = %d, want 0 and 0", app.updates, app.draws)
	}
	if got := shell.handle.State(); got != StateTerminated {
		t.Errorf("State() = %v, want Terminated", got)
	}
	if !shell.win.Terminated() || !shell.presenter.Released() || !shell.host.Released() {
		t.Error("teardown did not release all resources")
	}
}

func TestQuitInUpdateSkipsThatFramesDraw(t *testing.T) {
	shell := buildTestShell(t, nil)

	app := &countingApp{quitAfter: 1}
	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if app.updates != 1 {
		t.Errorf("updates = %d, want 1", app.updates)
	}
	if app.draws != 0 {
		t.Errorf("draws = %d, want 0 (quit frame must not draw)", app.draws)
	}
	if got := shell.handle.State(); got != StateTerminated {
		t.Errorf("State() = %v, want Terminated", got)
	}
}

func TestFrameViewOnlyDuringDraw(t *testing.T) {
	shell := buildTestShell(t, nil)

	app := &countingApp{quitAfter: 2}
	app.onUpdate = func(ctx *Context) {
		if ctx.Frame() != nil {
			t.Error("Frame() non-nil during Update")
		}
	}
	app.onDraw = func(ctx *Context) {
		if ctx.Frame() == nil {
			t.Error("Frame() nil during Draw")
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if app.draws != 1 {
		t.Errorf("draws = %d, want 1", app.draws)
	}
}

func TestInputEdgesAcrossFrames(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.win.Push(platform.Event{Kind: platform.KeyDown, Key: platform.KeySpace})

	app := &countingApp{quitAfter: 3}
	app.onUpdate = func(ctx *Context) {
		input := ctx.Input()

		switch app.updates {
		case 1:
			if !input.IsKeyPressed(platform.KeySpace) || !input.IsKeyHeld(platform.KeySpace) {
				t.Error("frame 1: want pressed and held")
			}
			// release arrives during the next frame
			shell.win.Push(platform.Event{Kind: platform.KeyUp, Key: platform.KeySpace})

		case 2:
			if input.IsKeyPressed(platform.KeySpace) {
				t.Error("frame 2: pressed must be one frame wide")
			}
			if !input.IsKeyReleased(platform.KeySpace) {
				t.Error("frame 2: want released")
			}

		case 3:
			if input.IsKeyPressed(platform.KeySpace) ||
				input.IsKeyHeld(platform.KeySpace) ||
				input.IsKeyReleased(platform.KeySpace) {
				t.Error("frame 3: key did not settle back to up")
			}
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestResizeReconstructsFrameZeroFilled(t *testing.T) {
	shell := buildTestShell(t, nil)

	app := &countingApp{quitAfter: 3}
	app.onUpdate = func(ctx *Context) {
		if app.updates == 1 {
			// dirty the first frame, then resize before the second
			shell.win.Resize(400, 300)
		}
	}
	app.onDraw = func(ctx *Context) {
		frame := ctx.Frame()

		switch app.draws {
		case 1:
			if frame.Width() != 800 || frame.Height() != 600 {
				t.Errorf("draw 1: frame = %dx%d, want 800x600", frame.Width(), frame.Height())
			}
			frame.Fill(0xff, 0xff, 0xff, 0xff)

		case 2:
			if frame.Width() != 400 || frame.Height() != 300 {
				t.Errorf("draw 2: frame = %dx%d, want 400x300", frame.Width(), frame.Height())
			}
			for i, b := range frame.Pixels() {
				if b != 0 {
					t.Fatalf("draw 2: pixel byte %d = %d, want zero-filled frame", i, b)
				}
			}
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if app.draws != 2 {
		t.Errorf("draws = %d, want 2", app.draws)
	}
}

func TestFixedFrameSizeSurvivesResize(t *testing.T) {
	shell := buildTestShell(t, func(b *AppBuilder) {
		b.WithFrameSize(320, 240)
	})

	app := &countingApp{quitAfter: 3}
	app.onUpdate = func(ctx *Context) {
		if app.updates == 1 {
			shell.win.Resize(1024, 768)
		}
	}
	app.onDraw = func(ctx *Context) {
		frame := ctx.Frame()
		if frame.Width() != 320 || frame.Height() != 240 {
			t.Errorf("draw %d: frame = %dx%d, want fixed 320x240",
				app.draws, frame.Width(), frame.Height())
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestTransientPresentFailureIsAbsorbed(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.presenter.FailNext(1)

	app := &countingApp{quitAfter: 3}
	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v, want transient failure absorbed", err)
	}

	if app.draws != 2 {
		t.Errorf("draws = %d, want 2", app.draws)
	}
	if shell.presenter.PresentCount() != 1 {
		t.Errorf("PresentCount() = %d, want 1", shell.presenter.PresentCount())
	}
}

func TestMenuActionsArriveDuringUpdate(t *testing.T) {
	shell := buildTestShell(t, func(b *AppBuilder) {
		b.WithMenu(menu.Tree{
			{Label: "File", Children: []menu.Item{
				{ID: "open", Label: "Open", Enabled: true},
			}},
		})
	})

	shell.host.Activate("open")

	app := &countingApp{quitAfter: 2}
	app.onUpdate = func(ctx *Context) {
		actions := ctx.MenuActions()

		switch app.updates {
		case 1:
			if len(actions) != 1 || actions[0].ID != "open" {
				t.Errorf("frame 1: actions = %v, want one 'open'", actions)
			}

		case 2:
			if len(actions) != 0 {
				t.Errorf("frame 2: actions = %v, want none", actions)
			}
		}
	}

	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestUpdateErrorIsFatalAndPropagated(t *testing.T) {
	shell := buildTestShell(t, nil)

	boom := errors.New("boom")
	err := shell.handle.RunFunc(
		func(ctx *Context) error { return boom },
		nil,
	)

	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}

	// best-effort teardown still ran
	if got := shell.handle.State(); got != StateTerminated {
		t.Errorf("State() = %v, want Terminated", got)
	}
	if !shell.win.Terminated() {
		t.Error("window not terminated after fatal app error")
	}
}

func TestRunFuncFeedsTheSameLoop(t *testing.T) {
	shell := buildTestShell(t, nil)

	draws := 0
	err := shell.handle.RunFunc(
		func(ctx *Context) error {
			if draws >= 2 {
				ctx.Quit()
			}
			return nil
		},
		func(ctx *Context) error {
			if ctx.Frame() == nil {
				t.Error("Frame() nil during closure draw")
			}
			draws++
			return nil
		},
	)
	if err != nil {
		t.Fatalf("RunFunc() error = %v", err)
	}

	if draws != 2 {
		t.Errorf("draws = %d, want 2", draws)
	}
}

func TestRunHandleIsSingleUse(t *testing.T) {
	shell := buildTestShell(t, nil)
	shell.win.RequestClose()

	if err := shell.handle.Run(&countingApp{}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	if err := shell.handle.Run(&countingApp{}); !errors.Is(err, ErrAlreadyRan) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRan", err)
	}
}

func TestContextMenuShownOnRightClick(t *testing.T) {
	shell := buildTestShell(t, func(b *AppBuilder) {
		b.WithContextMenu(menu.Tree{{ID: "ctx", Label: "Context", Enabled: true}})
	})

	shell.win.Push(platform.Event{Kind: platform.MouseDown, Button: platform.MouseButtonRight})

	app := &countingApp{quitAfter: 1}
	if err := shell.handle.Run(app); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if shell.host.ContextShown() != 1 {
		t.Errorf("ContextShown() = %d, want 1", shell.host.ContextShown())
	}
}
