//go:build !darwin

package menu

import "log/slog"

// NewHost returns the native menu host for the current platform.
// There is no native menu-bar binding outside darwin yet; menus are
// cosmetic, so the shell runs fine without them.
func NewHost() Host {
	return &noopHost{}
}

type noopHost struct{}

func (noopHost) Build(tree Tree, activate func(id string)) error {
	if len(tree) > 0 {
		slog.Warn("Native menu bar is not supported on this platform")
	}
	return nil
}

func (noopHost) SetEnabled(id string, enabled bool) {}

func (noopHost) SetChecked(id string, checked bool) {}

func (noopHost) ShowContext(tree Tree, activate func(id string)) {}

func (noopHost) Release() {}
