package surface

import (
	"errors"

	"github.com/oliverbestmann/webgpu/wgpu"
)

func init() {
	Register("headless", func(_ *wgpu.SurfaceDescriptor, windowWidth, windowHeight int) (Presenter, error) {
		h := NewHeadless()
		h.windowWidth = windowWidth
		h.windowHeight = windowHeight
		return h, nil
	})
}

// Headless is a presenter without a display. It records the last
// presented frame and can be armed to fail, which is how the loop
// tests exercise the transient-error path.
type Headless struct {
	frameWidth, frameHeight   int
	windowWidth, windowHeight int

	last      []byte
	presented int
	failures  int
	released  bool
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Configure(frameWidth, frameHeight int) error {
	h.frameWidth = frameWidth
	h.frameHeight = frameHeight
	return nil
}

func (h *Headless) Resize(windowWidth, windowHeight int) error {
	h.windowWidth = windowWidth
	h.windowHeight = windowHeight
	return nil
}

func (h *Headless) Present(pixels []byte) error {
	if h.failures > 0 {
		h.failures--
		return errors.New("headless: scripted present failure")
	}

	h.last = append(h.last[:0], pixels...)
	h.presented++
	return nil
}

func (h *Headless) Release() {
	h.released = true
}

// FailNext arms the presenter to fail the next n Present calls.
func (h *Headless) FailNext(n int) {
	h.failures = n
}

// Last returns a copy-free view of the most recently presented frame.
func (h *Headless) Last() []byte {
	return h.last
}

// PresentCount returns how many frames were presented successfully.
func (h *Headless) PresentCount() int {
	return h.presented
}

func (h *Headless) Released() bool {
	return h.released
}

// FrameSize returns the configured frame dimensions.
func (h *Headless) FrameSize() (int, int) {
	return h.frameWidth, h.frameHeight
}
