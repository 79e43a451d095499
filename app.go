// Package perovskite is an application shell that ties a platform
// window, a native menu bar and a software pixel buffer into one
// per-frame update/draw cycle with synchronous input snapshots.
package perovskite

import "github.com/JacobMillward/perovskite/platform"

// App receives the per-frame callbacks. Update runs before Draw every
// frame; both must return promptly, since the loop is single-threaded
// and a blocked callback stalls event delivery.
type App interface {
	Update(ctx *Context) error
	Draw(ctx *Context) error
}

// Initializer is implemented by apps that need one-time setup. Init
// runs once, before the first Update.
type Initializer interface {
	Init(ctx *Context) error
}

// EventHandler is implemented by apps that want the raw platform
// events. HandleEvent runs for every event, before the shell's own
// routing.
type EventHandler interface {
	HandleEvent(ev platform.Event) error
}

// funcApp adapts the closure style onto the App interface, so both
// entry points share one loop.
type funcApp struct {
	update func(ctx *Context) error
	draw   func(ctx *Context) error
}

func (f *funcApp) Update(ctx *Context) error {
	if f.update == nil {
		return nil
	}
	return f.update(ctx)
}

func (f *funcApp) Draw(ctx *Context) error {
	if f.draw == nil {
		return nil
	}
	return f.draw(ctx)
}
