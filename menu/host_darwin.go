//go:build darwin

package menu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego/objc"
)

// NewHost returns the native menu host for the current platform.
func NewHost() Host {
	return &darwinHost{}
}

// darwinHost drives the Cocoa menu bar through the objc runtime. The
// menu bar is process-global, so only one host can be active; this
// mirrors how AppKit itself treats NSApp's main menu.
type darwinHost struct {
	handler  objc.ID
	mainMenu objc.ID

	// native item handles by identifier, and back
	items    map[string]objc.ID
	byHandle map[objc.ID]string

	activate func(id string)
}

var (
	classOnce    sync.Once
	classErr     error
	handlerClass objc.Class

	// the host currently owning the main menu, read by the
	// activation callback
	activeHost *darwinHost
)

var (
	selAlloc                 = objc.RegisterName("alloc")
	selNew                   = objc.RegisterName("new")
	selInitWithTitle         = objc.RegisterName("initWithTitle:")
	selInitItem              = objc.RegisterName("initWithTitle:action:keyEquivalent:")
	selStringWithUTF8String  = objc.RegisterName("stringWithUTF8String:")
	selAddItem               = objc.RegisterName("addItem:")
	selSeparatorItem         = objc.RegisterName("separatorItem")
	selSetSubmenu            = objc.RegisterName("setSubmenu:")
	selSetTarget             = objc.RegisterName("setTarget:")
	selSetEnabled            = objc.RegisterName("setEnabled:")
	selSetState              = objc.RegisterName("setState:")
	selSetAutoenablesItems   = objc.RegisterName("setAutoenablesItems:")
	selSharedApplication     = objc.RegisterName("sharedApplication")
	selSetMainMenu           = objc.RegisterName("setMainMenu:")
	selMenuActivate          = objc.RegisterName("menuActivate:")
	selPopUpMenuAtLocation   = objc.RegisterName("popUpMenuPositioningItem:atLocation:inView:")
)

type nsPoint struct {
	X, Y float64
}

func nsString(s string) objc.ID {
	buf := append([]byte(s), 0)
	return objc.ID(objc.GetClass("NSString")).Send(selStringWithUTF8String, unsafe.Pointer(&buf[0]))
}

func registerHandlerClass() (objc.Class, error) {
	classOnce.Do(func() {
		handlerClass, classErr = objc.RegisterClass(
			"PerovskiteMenuHandler",
			objc.GetClass("NSObject"),
			nil,
			nil,
			[]objc.MethodDef{
				{
					Cmd: selMenuActivate,
					Fn: func(self objc.ID, _cmd objc.SEL, sender objc.ID) {
						host := activeHost
						if host == nil || host.activate == nil {
							return
						}

						if id, ok := host.byHandle[sender]; ok {
							host.activate(id)
						}
					},
				},
			},
		)
	})

	return handlerClass, classErr
}

func (h *darwinHost) Build(tree Tree, activate func(id string)) error {
	cls, err := registerHandlerClass()
	if err != nil {
		return fmt.Errorf("register menu handler class: %w", err)
	}

	h.handler = objc.ID(cls).Send(selNew)
	h.items = map[string]objc.ID{}
	h.byHandle = map[objc.ID]string{}
	h.activate = activate
	activeHost = h

	h.mainMenu = h.buildNSMenu("", tree)

	if len(tree) > 0 {
		app := objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
		app.Send(selSetMainMenu, h.mainMenu)
	}

	return nil
}

func (h *darwinHost) buildNSMenu(title string, tree Tree) objc.ID {
	menu := objc.ID(objc.GetClass("NSMenu")).Send(selAlloc).Send(selInitWithTitle, nsString(title))
	menu.Send(selSetAutoenablesItems, false)

	for _, item := range tree {
		if item.Separator {
			menu.Send(selAddItem, objc.ID(objc.GetClass("NSMenuItem")).Send(selSeparatorItem))
			continue
		}

		action := objc.SEL(0)
		if len(item.Children) == 0 {
			action = selMenuActivate
		}

		native := objc.ID(objc.GetClass("NSMenuItem")).
			Send(selAlloc).
			Send(selInitItem, nsString(item.Label), action, nsString(""))

		if len(item.Children) > 0 {
			native.Send(selSetSubmenu, h.buildNSMenu(item.Label, item.Children))
		} else {
			native.Send(selSetTarget, h.handler)
			native.Send(selSetEnabled, item.Enabled)
			native.Send(selSetState, stateOf(item.Checked))
		}

		if item.ID != "" {
			h.items[item.ID] = native
			h.byHandle[native] = item.ID
		}

		menu.Send(selAddItem, native)
	}

	return menu
}

func stateOf(checked bool) int {
	if checked {
		return 1
	}
	return 0
}

func (h *darwinHost) SetEnabled(id string, enabled bool) {
	if native, ok := h.items[id]; ok {
		native.Send(selSetEnabled, enabled)
	}
}

func (h *darwinHost) SetChecked(id string, checked bool) {
	if native, ok := h.items[id]; ok {
		native.Send(selSetState, stateOf(checked))
	}
}

func (h *darwinHost) ShowContext(tree Tree, activate func(id string)) {
	h.activate = activate

	menu := h.buildNSMenu("", tree)
	menu.Send(selPopUpMenuAtLocation, objc.ID(0), nsPoint{}, objc.ID(0))
}

func (h *darwinHost) Release() {
	if activeHost == h {
		app := objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
		app.Send(selSetMainMenu, objc.ID(0))
		activeHost = nil
	}

	h.items = nil
	h.byHandle = nil
	h.activate = nil
}
