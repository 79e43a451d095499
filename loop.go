package perovskite

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JacobMillward/perovskite/menu"
	"github.com/JacobMillward/perovskite/platform"
	"github.com/JacobMillward/perovskite/surface"
	"github.com/pkg/profile"
)

// State is the lifecycle of the shell.
type State uint8

const (
	StateUninitialized State = iota
	StateBuilt
	StateRunning
	StateQuitting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateBuilt:
		return "Built"
	case StateRunning:
		return "Running"
	case StateQuitting:
		return "Quitting"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// RunHandle owns the built window, surface and menu. Run transfers
// control to the event loop and blocks until the shell terminates.
type RunHandle struct {
	cfg     RunConfig
	win     platform.Window
	surface *surface.FrameSurface
	bridge  *menu.Bridge
	input   *platform.InputState

	state State

	// frame buffer tracks the window size when no fixed frame size
	// was configured
	frameFollowsWindow bool
	pendingW, pendingH int

	quitRequested bool
}

func (h *RunHandle) State() State {
	return h.state
}

// Run drives the loop with an App until quit, then tears down the
// surface, the menu and the window, in that order. Errors returned
// from the app callbacks are fatal and propagated after teardown;
// surface transients are absorbed internally.
func (h *RunHandle) Run(app App) error {
	if h.state != StateBuilt {
		return ErrAlreadyRan
	}

	if h.cfg.Profiling {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	slog.Info("Event loop starting", slog.String("title", h.cfg.Title))

	h.state = StateRunning
	err := h.loop(app)
	h.teardown()

	return err
}

// RunFunc is the closure-style entry point. It feeds the same loop as
// Run.
func (h *RunHandle) RunFunc(update, draw func(ctx *Context) error) error {
	return h.Run(&funcApp{update: update, draw: draw})
}

func (h *RunHandle) loop(app App) error {
	initialized := false
	lastFrame := time.Now()

	for {
		var tick time.Time
		if h.cfg.TargetFrameTime > 0 {
			tick = time.Now().Add(h.cfg.TargetFrameTime)
		}

		// demote edge states before any event of the new frame
		h.input.NextFrame()

		for _, ev := range h.win.Poll() {
			if handler, ok := app.(EventHandler); ok {
				if err := handler.HandleEvent(ev); err != nil {
					return fmt.Errorf("handle event: %w", err)
				}
			}

			h.route(ev)
		}

		if h.state == StateQuitting {
			return nil
		}

		delta := time.Since(lastFrame)
		lastFrame = time.Now()
		if h.cfg.MaxFrameTime > 0 && delta > h.cfg.MaxFrameTime {
			delta = h.cfg.MaxFrameTime
		}

		ctx := &Context{
			handle:  h,
			delta:   delta,
			actions: h.bridge.PollActions(),
		}

		if !initialized {
			initialized = true

			if init, ok := app.(Initializer); ok {
				if err := init.Init(ctx); err != nil {
					return fmt.Errorf("initialize app: %w", err)
				}
			}
		}

		if err := app.Update(ctx); err != nil {
			return fmt.Errorf("update app: %w", err)
		}

		if h.quitRequested {
			h.state = StateQuitting
			return nil
		}

		frame, err := h.surface.BeginFrame()
		if errors.Is(err, surface.ErrSurfaceLost) {
			width, height := h.frameSize()

			if err = h.surface.Reconstruct(width, height); err != nil {
				return fmt.Errorf("reconstruct surface: %w", err)
			}

			frame, err = h.surface.BeginFrame()
		}
		if err != nil {
			return fmt.Errorf("begin frame: %w", err)
		}

		ctx.frame = frame
		err = app.Draw(ctx)
		ctx.frame = nil

		if err != nil {
			return fmt.Errorf("draw app: %w", err)
		}

		if err := h.surface.Present(frame); err != nil {
			var presentErr *surface.PresentError
			if !errors.As(err, &presentErr) {
				return err
			}

			// transient compositing failure, retry next frame
			slog.Warn("Present failed", slog.Any("error", err))
		}

		if !tick.IsZero() {
			time.Sleep(time.Until(tick))
		}
	}
}

// route sends one raw event to its consumer, in arrival order.
func (h *RunHandle) route(ev platform.Event) {
	switch ev.Kind {
	case platform.CloseRequested:
		h.state = StateQuitting

	case platform.Resized:
		h.pendingW, h.pendingH = ev.Width, ev.Height

		if err := h.surface.Resize(ev.Width, ev.Height); err != nil {
			slog.Warn("Resize present surface", slog.Any("error", err))
		}

		if h.frameFollowsWindow {
			h.surface.MarkLost()
		}

	case platform.FocusChanged:
		slog.Debug("Focus changed", slog.Bool("focused", ev.Focused))

	case platform.MouseDown:
		if ev.Button == platform.MouseButtonRight && len(h.cfg.ContextMenu) > 0 {
			h.bridge.ShowContext(h.cfg.ContextMenu)
		}

		h.input.Apply(ev)

	default:
		h.input.Apply(ev)
	}
}

// frameSize is the size the pixel buffer should have right now.
func (h *RunHandle) frameSize() (int, int) {
	if !h.frameFollowsWindow {
		width, height := h.surface.Size()
		return width, height
	}

	if h.pendingW > 0 && h.pendingH > 0 {
		return h.pendingW, h.pendingH
	}

	return h.win.Size()
}

func (h *RunHandle) teardown() {
	h.state = StateQuitting

	h.surface.Release()
	h.bridge.Release()
	h.win.Terminate()

	h.state = StateTerminated

	slog.Info("Event loop terminated")
}
