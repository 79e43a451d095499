package surface

import (
	"sync"

	"github.com/oliverbestmann/webgpu/wgpu"
)

// Presenter blits a finished RGBA frame to the window surface.
//
// Configure sets the dimensions of the incoming pixel buffer, Resize
// follows the window. The two are decoupled so a fixed-resolution
// frame can be scaled up to whatever size the window currently has.
type Presenter interface {
	Configure(frameWidth, frameHeight int) error
	Resize(windowWidth, windowHeight int) error
	Present(pixels []byte) error
	Release()
}

// PresenterFactory creates a presenter for a native surface. The
// descriptor is nil for headless windows.
type PresenterFactory func(desc *wgpu.SurfaceDescriptor, windowWidth, windowHeight int) (Presenter, error)

var (
	registryMu sync.RWMutex
	presenters = make(map[string]PresenterFactory)

	// first available wins
	presenterPriority = []string{"wgpu", "headless"}
)

// Register registers a presenter factory under a name. Typically
// called from init() in the backend files.
func Register(name string, factory PresenterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	presenters[name] = factory
}

// Get returns the factory registered under name, or nil.
func Get(name string) PresenterFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return presenters[name]
}

// Default returns the best available presenter factory. Windows with
// a native surface get the GPU backend when it is compiled in;
// headless windows always fall back to the recording backend.
func Default(desc *wgpu.SurfaceDescriptor) PresenterFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if desc == nil {
		return presenters["headless"]
	}

	for _, name := range presenterPriority {
		if factory, ok := presenters[name]; ok {
			return factory
		}
	}

	return nil
}
