package platform

import "github.com/oliverbestmann/webgpu/wgpu"

// HeadlessWindow is a window without a display, used to drive the
// event loop in tests. Events queued with Push are delivered by the
// next Poll, in the order they were pushed.
type HeadlessWindow struct {
	width, height int
	title         string
	pending       []Event
	terminated    bool
}

func NewHeadlessWindow(width, height int) *HeadlessWindow {
	return &HeadlessWindow{width: width, height: height}
}

// Push queues raw events for the next Poll.
func (h *HeadlessWindow) Push(events ...Event) {
	h.pending = append(h.pending, events...)
}

// RequestClose queues a close-requested event.
func (h *HeadlessWindow) RequestClose() {
	h.Push(Event{Kind: CloseRequested})
}

// Resize queues a resize event and updates the reported window size.
func (h *HeadlessWindow) Resize(width, height int) {
	h.width = width
	h.height = height
	h.Push(Event{Kind: Resized, Width: width, Height: height})
}

func (h *HeadlessWindow) Poll() []Event {
	events := h.pending
	h.pending = nil
	return events
}

func (h *HeadlessWindow) Size() (int, int) {
	return h.width, h.height
}

func (h *HeadlessWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (h *HeadlessWindow) SetTitle(title string) {
	h.title = title
}

func (h *HeadlessWindow) Title() string {
	return h.title
}

func (h *HeadlessWindow) Terminate() {
	h.terminated = true
}

func (h *HeadlessWindow) Terminated() bool {
	return h.terminated
}
