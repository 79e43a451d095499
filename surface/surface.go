// Package surface owns the presentable pixel buffer and the backends
// that blit it to the window. The application only ever sees a Frame,
// a mutable view scoped to a single draw call.
package surface

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceLost signals that the backing store needs to be
	// reconstructed (typically after a resize) before another frame
	// can begin. Callers reconstruct via Reconstruct and retry.
	ErrSurfaceLost = errors.New("surface: backing store lost")

	// ErrFrameInFlight is returned when BeginFrame is called before
	// the previous frame was presented.
	ErrFrameInFlight = errors.New("surface: frame already in flight")
)

// PresentError wraps a transient compositing failure. It is non-fatal:
// the event loop logs it and retries on the next frame.
type PresentError struct {
	Err error
}

func (e *PresentError) Error() string {
	return "surface: present: " + e.Err.Error()
}

func (e *PresentError) Unwrap() error {
	return e.Err
}

// FrameSurface is a single-buffered RGBA pixel surface. Exactly one
// frame may be in flight at a time: BeginFrame hands out a view,
// Present blits it and invalidates the view.
type FrameSurface struct {
	presenter Presenter

	width, height int
	pixels        []byte

	lost     bool
	inFrame  bool
	sequence uint64
}

// New allocates a zero-filled surface and configures the presenter
// for the given frame dimensions.
func New(presenter Presenter, width, height int) (*FrameSurface, error) {
	if err := presenter.Configure(width, height); err != nil {
		return nil, fmt.Errorf("configure presenter: %w", err)
	}

	return &FrameSurface{
		presenter: presenter,
		width:     width,
		height:    height,
		pixels:    make([]byte, width*height*4),
	}, nil
}

// MarkLost invalidates the backing store. The next BeginFrame fails
// with ErrSurfaceLost until Reconstruct is called.
func (s *FrameSurface) MarkLost() {
	s.lost = true
}

// Reconstruct reallocates the buffer at the given dimensions and
// zero-fills it.
func (s *FrameSurface) Reconstruct(width, height int) error {
	if err := s.presenter.Configure(width, height); err != nil {
		return fmt.Errorf("configure presenter: %w", err)
	}

	s.width = width
	s.height = height
	s.pixels = make([]byte, width*height*4)
	s.lost = false

	return nil
}

// BeginFrame returns the mutable pixel view for the current frame.
// The view is valid until the matching Present.
func (s *FrameSurface) BeginFrame() (*Frame, error) {
	if s.inFrame {
		return nil, ErrFrameInFlight
	}

	if s.lost {
		return nil, ErrSurfaceLost
	}

	s.inFrame = true

	return &Frame{surface: s, sequence: s.sequence}, nil
}

// Present blits the frame to the window. A presenter failure comes
// back as a *PresentError; the frame view is invalidated either way.
func (s *FrameSurface) Present(frame *Frame) error {
	if frame == nil || frame.surface != s || frame.sequence != s.sequence {
		return errors.New("surface: present of a stale frame view")
	}

	s.inFrame = false
	s.sequence++

	if err := s.presenter.Present(s.pixels); err != nil {
		return &PresentError{Err: err}
	}

	return nil
}

func (s *FrameSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *FrameSurface) Release() {
	s.presenter.Release()
}

// Resize tells the presenter about a new window size. This does not
// touch the pixel buffer; callers decide separately whether the frame
// itself follows the window.
func (s *FrameSurface) Resize(windowWidth, windowHeight int) error {
	return s.presenter.Resize(windowWidth, windowHeight)
}

// Frame is the mutable pixel view handed to a single draw call. It
// must not be retained past the matching Present.
type Frame struct {
	surface  *FrameSurface
	sequence uint64
}

func (f *Frame) valid() bool {
	return f.surface.sequence == f.sequence && f.surface.inFrame
}

// Pixels returns the raw RGBA buffer, 4 bytes per pixel, row-major.
// It panics if the view outlived its frame.
func (f *Frame) Pixels() []byte {
	if !f.valid() {
		panic("surface: frame view used after present")
	}

	return f.surface.pixels
}

func (f *Frame) Width() int {
	return f.surface.width
}

func (f *Frame) Height() int {
	return f.surface.height
}

// Set writes one pixel. Out-of-bounds coordinates are ignored.
func (f *Frame) Set(x, y int, r, g, b, a byte) {
	if x < 0 || y < 0 || x >= f.surface.width || y >= f.surface.height {
		return
	}

	i := (y*f.surface.width + x) * 4
	pixels := f.Pixels()
	pixels[i+0] = r
	pixels[i+1] = g
	pixels[i+2] = b
	pixels[i+3] = a
}

// Fill sets every pixel of the frame to the given color.
func (f *Frame) Fill(r, g, b, a byte) {
	pixels := f.Pixels()
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = r
		pixels[i+1] = g
		pixels[i+2] = b
		pixels[i+3] = a
	}
}
