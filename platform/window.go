// Package platform owns the OS window, the raw event pump and the
// per-frame input snapshot. The rest of the shell only ever talks to
// the Window interface, so tests can substitute a headless window and
// drive the loop without any display server.
package platform

import "github.com/oliverbestmann/webgpu/wgpu"

type Window interface {
	// Poll pumps all pending platform events and returns them in
	// arrival order. The returned slice is only valid until the next
	// call to Poll.
	Poll() []Event

	// Size returns the current window size in pixels.
	Size() (int, int)

	// SurfaceDescriptor describes the native surface for the present
	// backend. A headless window returns nil.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	SetTitle(title string)

	Terminate()
}
