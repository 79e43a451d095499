package platform

type EventKind uint8

const (
	KeyDown EventKind = iota
	KeyUp
	MouseMove
	MouseDown
	MouseUp
	Scroll
	Resized
	CloseRequested
	FocusChanged
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	case MouseMove:
		return "MouseMove"
	case MouseDown:
		return "MouseDown"
	case MouseUp:
		return "MouseUp"
	case Scroll:
		return "Scroll"
	case Resized:
		return "Resized"
	case CloseRequested:
		return "CloseRequested"
	case FocusChanged:
		return "FocusChanged"
	default:
		return "Unknown"
	}
}

// Event is a single raw platform event. Only the fields relevant for
// the Kind are set.
type Event struct {
	Kind EventKind

	// KeyDown, KeyUp
	Key Key

	// MouseDown, MouseUp
	Button MouseButton

	// MouseMove: cursor position. Scroll: wheel delta.
	X, Y float64

	// Resized
	Width, Height int

	// FocusChanged
	Focused bool
}

type MouseButton uint32

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)
