package perovskite

import (
	"time"

	"github.com/JacobMillward/perovskite/menu"
	"github.com/JacobMillward/perovskite/platform"
	"github.com/JacobMillward/perovskite/surface"
)

// Context is the view of the shell handed to Update and Draw. It is
// only valid for the duration of the callback; do not retain it, the
// frame view or the input snapshot past the return.
type Context struct {
	handle  *RunHandle
	frame   *surface.Frame
	actions []menu.Action
	delta   time.Duration
}

// Input returns the read-only input snapshot for this frame.
func (c *Context) Input() *platform.InputState {
	return c.handle.input
}

// Frame returns the mutable pixel view of the current frame. It is
// non-nil only during Draw.
func (c *Context) Frame() *surface.Frame {
	return c.frame
}

// MenuActions returns the menu activations delivered this frame, in
// activation order.
func (c *Context) MenuActions() []menu.Action {
	return c.actions
}

// Menu exposes the live menu bridge for cosmetic state updates.
func (c *Context) Menu() *menu.Bridge {
	return c.handle.bridge
}

// DeltaTime returns the wall time since the previous frame, clamped
// to the configured maximum frame time.
func (c *Context) DeltaTime() time.Duration {
	return c.delta
}

// Quit requests a cooperative shutdown. The loop observes it at the
// next iteration boundary; the current frame's Draw is skipped.
func (c *Context) Quit() {
	c.handle.quitRequested = true
}

func (c *Context) SetTitle(title string) {
	c.handle.win.SetTitle(title)
}
