package perovskite

import (
	"errors"
	"fmt"
	"time"

	"github.com/JacobMillward/perovskite/menu"
	"github.com/JacobMillward/perovskite/platform"
	"github.com/JacobMillward/perovskite/surface"
)

var (
	// ErrInvalidConfig is returned from Build for malformed builder
	// parameters, before any OS resource is touched.
	ErrInvalidConfig = errors.New("perovskite: invalid configuration")

	// ErrAlreadyRan is returned when Run is called on a handle that
	// already ran.
	ErrAlreadyRan = errors.New("perovskite: run handle already consumed")
)

// RunConfig is the immutable configuration captured by Build.
type RunConfig struct {
	Title        string
	WindowWidth  int
	WindowHeight int

	// FrameWidth/FrameHeight fix the pixel buffer resolution; the
	// frame is scaled up to the window with its aspect ratio kept.
	// Zero means the frame follows the window size.
	FrameWidth  int
	FrameHeight int

	Resizable   bool
	Menu        menu.Tree
	ContextMenu menu.Tree

	// TargetFrameTime paces the loop; zero runs uncapped.
	TargetFrameTime time.Duration

	// MaxFrameTime clamps the delta time reported to the app; zero
	// disables the clamp.
	MaxFrameTime time.Duration

	Profiling bool
}

// AppBuilder assembles the window, surface and menu configuration.
// All validation happens in Build; the With methods just record.
type AppBuilder struct {
	cfg RunConfig

	// test/embedding overrides
	window    platform.Window
	presenter surface.Presenter
	menuHost  menu.Host
}

// NewApp starts a builder with an 800x600 resizable window, no menu
// and uncapped pacing.
func NewApp(title string) *AppBuilder {
	return &AppBuilder{
		cfg: RunConfig{
			Title:        title,
			WindowWidth:  800,
			WindowHeight: 600,
			Resizable:    true,
		},
	}
}

func (b *AppBuilder) WithWindowSize(width, height int) *AppBuilder {
	b.cfg.WindowWidth = width
	b.cfg.WindowHeight = height
	return b
}

// WithFrameSize decouples the pixel buffer resolution from the window
// size.
func (b *AppBuilder) WithFrameSize(width, height int) *AppBuilder {
	b.cfg.FrameWidth = width
	b.cfg.FrameHeight = height
	return b
}

func (b *AppBuilder) WithResizable(resizable bool) *AppBuilder {
	b.cfg.Resizable = resizable
	return b
}

func (b *AppBuilder) WithMenu(tree menu.Tree) *AppBuilder {
	b.cfg.Menu = tree
	return b
}

// WithContextMenu shows the tree on right click.
func (b *AppBuilder) WithContextMenu(tree menu.Tree) *AppBuilder {
	b.cfg.ContextMenu = tree
	return b
}

func (b *AppBuilder) WithTargetFrameTime(d time.Duration) *AppBuilder {
	b.cfg.TargetFrameTime = d
	return b
}

func (b *AppBuilder) WithMaxFrameTime(d time.Duration) *AppBuilder {
	b.cfg.MaxFrameTime = d
	return b
}

// WithProfiling writes a CPU profile for the whole run.
func (b *AppBuilder) WithProfiling() *AppBuilder {
	b.cfg.Profiling = true
	return b
}

// WithWindow substitutes the platform window, typically a
// platform.HeadlessWindow in tests.
func (b *AppBuilder) WithWindow(win platform.Window) *AppBuilder {
	b.window = win
	return b
}

// WithPresenter substitutes the present backend.
func (b *AppBuilder) WithPresenter(p surface.Presenter) *AppBuilder {
	b.presenter = p
	return b
}

// WithMenuHost substitutes the native menu layer.
func (b *AppBuilder) WithMenuHost(h menu.Host) *AppBuilder {
	b.menuHost = h
	return b
}

// Build validates the configuration and performs all OS-level
// construction: window, surface and menu. This is the only place
// platform side effects happen before Run.
func (b *AppBuilder) Build() (*RunHandle, error) {
	if b.cfg.WindowWidth <= 0 || b.cfg.WindowHeight <= 0 {
		return nil, fmt.Errorf("%w: window size %dx%d",
			ErrInvalidConfig, b.cfg.WindowWidth, b.cfg.WindowHeight)
	}

	if b.cfg.FrameWidth < 0 || b.cfg.FrameHeight < 0 ||
		(b.cfg.FrameWidth == 0) != (b.cfg.FrameHeight == 0) {
		return nil, fmt.Errorf("%w: frame size %dx%d",
			ErrInvalidConfig, b.cfg.FrameWidth, b.cfg.FrameHeight)
	}

	// the context menu is only realized lazily on right click, so its
	// identifiers are checked here instead of in NewBridge
	if err := menu.Validate(b.cfg.ContextMenu); err != nil {
		return nil, fmt.Errorf("context menu: %w", err)
	}

	win := b.window
	if win == nil {
		var err error
		win, err = platform.NewWindow(b.cfg.WindowWidth, b.cfg.WindowHeight, b.cfg.Title, b.cfg.Resizable)
		if err != nil {
			return nil, fmt.Errorf("create window: %w", err)
		}
	}

	frameW, frameH := b.cfg.FrameWidth, b.cfg.FrameHeight
	followsWindow := frameW == 0
	if followsWindow {
		frameW, frameH = win.Size()
	}

	presenter := b.presenter
	if presenter == nil {
		desc := win.SurfaceDescriptor()

		factory := surface.Default(desc)
		if factory == nil {
			win.Terminate()
			return nil, errors.New("perovskite: no present backend available")
		}

		var err error
		presenter, err = factory(desc, b.cfg.WindowWidth, b.cfg.WindowHeight)
		if err != nil {
			win.Terminate()
			return nil, fmt.Errorf("create presenter: %w", err)
		}
	}

	frameSurface, err := surface.New(presenter, frameW, frameH)
	if err != nil {
		win.Terminate()
		return nil, fmt.Errorf("create surface: %w", err)
	}

	host := b.menuHost
	if host == nil {
		host = menu.NewHost()
	}

	bridge, err := menu.NewBridge(host, b.cfg.Menu)
	if err != nil {
		frameSurface.Release()
		win.Terminate()
		return nil, err
	}

	return &RunHandle{
		cfg:                b.cfg,
		win:                win,
		surface:            frameSurface,
		bridge:             bridge,
		input:              platform.NewInputState(),
		state:              StateBuilt,
		frameFollowsWindow: followsWindow,
	}, nil
}
