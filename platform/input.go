package platform

import "log/slog"

// InputState is the per-frame snapshot of keyboard and mouse state.
//
// The event loop owns it exclusively: raw events are applied between
// frames via Apply, and NextFrame runs the edge-state demotion before
// any events of the new frame arrive. Application code only ever gets
// a read-only view during its update/draw callbacks, so the Is* family
// of queries has no observable side effects.
type InputState struct {
	// keys currently held down
	keysDown map[Key]bool

	// edges recorded since the last call to NextFrame
	keysJustPressed  map[Key]bool
	keysJustReleased map[Key]bool

	buttonsDown         map[MouseButton]bool
	buttonsJustPressed  map[MouseButton]bool
	buttonsJustReleased map[MouseButton]bool

	cursorX, cursorY float64
	scrollX, scrollY float64
}

func NewInputState() *InputState {
	return &InputState{
		keysDown:            map[Key]bool{},
		keysJustPressed:     map[Key]bool{},
		keysJustReleased:    map[Key]bool{},
		buttonsDown:         map[MouseButton]bool{},
		buttonsJustPressed:  map[MouseButton]bool{},
		buttonsJustReleased: map[MouseButton]bool{},
	}
}

// Apply folds a single raw event into the snapshot. Must only be
// called by the event loop, never concurrently with application code.
func (s *InputState) Apply(ev Event) {
	switch ev.Kind {
	case KeyDown:
		slog.Debug("Key pressed", slog.String("key", ev.Key.String()))
		s.keysDown[ev.Key] = true
		s.keysJustPressed[ev.Key] = true

	case KeyUp:
		s.keysDown[ev.Key] = false
		s.keysJustReleased[ev.Key] = true

	case MouseDown:
		s.buttonsDown[ev.Button] = true
		s.buttonsJustPressed[ev.Button] = true

	case MouseUp:
		s.buttonsDown[ev.Button] = false
		s.buttonsJustReleased[ev.Button] = true

	case MouseMove:
		s.cursorX = ev.X
		s.cursorY = ev.Y

	case Scroll:
		s.scrollX += ev.X
		s.scrollY += ev.Y
	}
}

// NextFrame demotes the one-frame-wide edge states and zeroes the
// scroll delta. The event loop calls this at the start of every frame,
// before pumping new events. This keeps IsKeyPressed/IsKeyReleased
// true for exactly one frame per physical transition, regardless of
// when within a frame the raw event arrived.
func (s *InputState) NextFrame() {
	clear(s.keysJustPressed)
	clear(s.keysJustReleased)
	clear(s.buttonsJustPressed)
	clear(s.buttonsJustReleased)

	s.scrollX = 0
	s.scrollY = 0
}

// IsKeyPressed reports whether the key went down this frame.
func (s *InputState) IsKeyPressed(key Key) bool {
	return s.keysJustPressed[key]
}

// IsKeyHeld reports whether the key is currently down. This is true
// for every frame the key remains down, including the press frame.
func (s *InputState) IsKeyHeld(key Key) bool {
	return s.keysDown[key]
}

// IsKeyReleased reports whether the key went up this frame.
func (s *InputState) IsKeyReleased(key Key) bool {
	return s.keysJustReleased[key]
}

func (s *InputState) IsMouseButtonPressed(button MouseButton) bool {
	return s.buttonsJustPressed[button]
}

func (s *InputState) IsMouseButtonHeld(button MouseButton) bool {
	return s.buttonsDown[button]
}

func (s *InputState) IsMouseButtonReleased(button MouseButton) bool {
	return s.buttonsJustReleased[button]
}

// CursorPosition returns the cursor position in window coordinates.
func (s *InputState) CursorPosition() (float64, float64) {
	return s.cursorX, s.cursorY
}

// ScrollDelta returns the wheel movement accumulated during the
// current frame. It resets to (0, 0) at every frame boundary.
func (s *InputState) ScrollDelta() (float64, float64) {
	return s.scrollX, s.scrollY
}
