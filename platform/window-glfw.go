//go:build !js

package platform

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// glfw event handling must stay on the main OS thread
	runtime.LockOSThread()
}

type glfwWindow struct {
	win *glfw.Window

	// events recorded by the glfw callbacks since the last Poll
	queue []Event

	closeSent bool
}

// NewWindow creates the OS window and hooks up the event callbacks.
func NewWindow(width, height int, title string, resizable bool) (Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	if resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{win: window}
	w.configureCallbacks()

	return w, nil
}

func (g *glfwWindow) Poll() []Event {
	g.queue = g.queue[:0]

	glfw.PollEvents()

	if g.win.ShouldClose() && !g.closeSent {
		g.closeSent = true
		g.queue = append(g.queue, Event{Kind: CloseRequested})
	}

	return g.queue
}

func (g *glfwWindow) Size() (int, int) {
	return g.win.GetSize()
}

func (g *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.win)
}

func (g *glfwWindow) SetTitle(title string) {
	g.win.SetTitle(title)
}

func (g *glfwWindow) Terminate() {
	g.win.Destroy()
	glfw.Terminate()
}

func (g *glfwWindow) configureCallbacks() {
	g.win.SetKeyCallback(func(_ *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}

		key, ok := keyOf(glfwKey)
		if !ok {
			return
		}

		switch action {
		case glfw.Press:
			g.queue = append(g.queue, Event{Kind: KeyDown, Key: key})

		case glfw.Release:
			g.queue = append(g.queue, Event{Kind: KeyUp, Key: key})
		}
	})

	g.win.SetMouseButtonCallback(func(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		button := MouseButton(btn)

		switch action {
		case glfw.Press:
			g.queue = append(g.queue, Event{Kind: MouseDown, Button: button})
		case glfw.Release:
			g.queue = append(g.queue, Event{Kind: MouseUp, Button: button})
		}
	})

	g.win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		g.queue = append(g.queue, Event{Kind: MouseMove, X: xpos, Y: ypos})
	})

	g.win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		g.queue = append(g.queue, Event{Kind: Scroll, X: xoff, Y: yoff})
	})

	g.win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		g.queue = append(g.queue, Event{Kind: Resized, Width: width, Height: height})
	})

	g.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		g.queue = append(g.queue, Event{Kind: FocusChanged, Focused: focused})
	})
}

func keyOf(glfwKey glfw.Key) (key Key, ok bool) {
	key, ok = glfwToKey[glfwKey]
	if !ok {
		slog.Warn(
			"Unknown key code",
			slog.String("key", glfw.GetKeyName(glfwKey, 0)),
		)
	}

	return
}

var glfwToKey = map[glfw.Key]Key{
	glfw.KeyA: KeyA,
	glfw.KeyB: KeyB,
	glfw.KeyC: KeyC,
	glfw.KeyD: KeyD,
	glfw.KeyE: KeyE,
	glfw.KeyF: KeyF,
	glfw.KeyG: KeyG,
	glfw.KeyH: KeyH,
	glfw.KeyI: KeyI,
	glfw.KeyJ: KeyJ,
	glfw.KeyK: KeyK,
	glfw.KeyL: KeyL,
	glfw.KeyM: KeyM,
	glfw.KeyN: KeyN,
	glfw.KeyO: KeyO,
	glfw.KeyP: KeyP,
	glfw.KeyQ: KeyQ,
	glfw.KeyR: KeyR,
	glfw.KeyS: KeyS,
	glfw.KeyT: KeyT,
	glfw.KeyU: KeyU,
	glfw.KeyV: KeyV,
	glfw.KeyW: KeyW,
	glfw.KeyX: KeyX,
	glfw.KeyY: KeyY,
	glfw.KeyZ: KeyZ,

	glfw.Key0: Key0,
	glfw.Key1: Key1,
	glfw.Key2: Key2,
	glfw.Key3: Key3,
	glfw.Key4: Key4,
	glfw.Key5: Key5,
	glfw.Key6: Key6,
	glfw.Key7: Key7,
	glfw.Key8: Key8,
	glfw.Key9: Key9,

	glfw.KeySpace:     KeySpace,
	glfw.KeyEnter:     KeyEnter,
	glfw.KeyEscape:    KeyEscape,
	glfw.KeyTab:       KeyTab,
	glfw.KeyBackspace: KeyBackspace,
	glfw.KeyDelete:    KeyDelete,
	glfw.KeyInsert:    KeyInsert,
	glfw.KeyHome:      KeyHome,
	glfw.KeyEnd:       KeyEnd,
	glfw.KeyPageUp:    KeyPageUp,
	glfw.KeyPageDown:  KeyPageDown,

	glfw.KeyLeft:  KeyArrowLeft,
	glfw.KeyRight: KeyArrowRight,
	glfw.KeyUp:    KeyArrowUp,
	glfw.KeyDown:  KeyArrowDown,

	glfw.KeyLeftShift:    KeyLeftShift,
	glfw.KeyRightShift:   KeyRightShift,
	glfw.KeyLeftControl:  KeyLeftControl,
	glfw.KeyRightControl: KeyRightControl,
	glfw.KeyLeftAlt:      KeyLeftAlt,
	glfw.KeyRightAlt:     KeyRightAlt,
	glfw.KeyLeftSuper:    KeyLeftSuper,
	glfw.KeyRightSuper:   KeyRightSuper,

	glfw.KeyF1:  KeyF1,
	glfw.KeyF2:  KeyF2,
	glfw.KeyF3:  KeyF3,
	glfw.KeyF4:  KeyF4,
	glfw.KeyF5:  KeyF5,
	glfw.KeyF6:  KeyF6,
	glfw.KeyF7:  KeyF7,
	glfw.KeyF8:  KeyF8,
	glfw.KeyF9:  KeyF9,
	glfw.KeyF10: KeyF10,
	glfw.KeyF11: KeyF11,
	glfw.KeyF12: KeyF12,
}
