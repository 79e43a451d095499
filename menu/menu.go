// Package menu maps a declarative menu tree onto the native menu bar
// and turns item activations into application-level actions.
package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrDuplicateID is returned when two items of one tree share an
// identifier.
var ErrDuplicateID = errors.New("menu: duplicate item id")

// Item is one node of a declarative menu tree. Items with children
// become submenus; their own ID is never activated. Identifiers are
// opaque application-chosen strings.
type Item struct {
	ID      string
	Label   string
	Enabled bool
	Checked bool

	// Separator items render as a divider; all other fields are
	// ignored for them.
	Separator bool

	Children []Item
}

// Tree is a whole menu, top level first.
type Tree []Item

// Action is emitted when a native menu item is activated.
type Action struct {
	ID   string
	Time time.Time
}

// Bridge owns the native menu handles and queues activations until
// the event loop drains them once per frame.
type Bridge struct {
	host    Host
	ids     map[string]bool
	pending []Action
}

// NewBridge validates the tree and asks the host to realize it.
func NewBridge(host Host, tree Tree) (*Bridge, error) {
	ids := map[string]bool{}
	if err := collectIDs(tree, ids); err != nil {
		return nil, fmt.Errorf("build menu: %w", err)
	}

	b := &Bridge{host: host, ids: ids}

	if err := host.Build(tree, b.activate); err != nil {
		return nil, fmt.Errorf("build menu: %w", err)
	}

	return b, nil
}

// Validate checks a tree for duplicate identifiers without realizing
// it. Useful for trees that are only built lazily, like context menus.
func Validate(tree Tree) error {
	return collectIDs(tree, map[string]bool{})
}

func collectIDs(tree Tree, ids map[string]bool) error {
	for _, item := range tree {
		if item.Separator {
			continue
		}

		if item.ID != "" {
			if ids[item.ID] {
				return fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
			}
			ids[item.ID] = true
		}

		if err := collectIDs(item.Children, ids); err != nil {
			return err
		}
	}

	return nil
}

// activate is invoked by the host when an item is clicked.
func (b *Bridge) activate(id string) {
	b.pending = append(b.pending, Action{ID: id, Time: time.Now()})
}

// PollActions drains all activations since the last poll, in
// activation order. The event loop calls this once per frame, before
// the application update.
func (b *Bridge) PollActions() []Action {
	actions := b.pending
	b.pending = nil
	return actions
}

// SetEnabled toggles a live menu item. Menu state is cosmetic: an
// unknown identifier is a no-op.
func (b *Bridge) SetEnabled(id string, enabled bool) {
	if !b.ids[id] {
		slog.Debug("SetEnabled for unknown menu item", slog.String("id", id))
		return
	}

	b.host.SetEnabled(id, enabled)
}

// SetChecked toggles the check mark of a live menu item. An unknown
// identifier is a no-op.
func (b *Bridge) SetChecked(id string, checked bool) {
	if !b.ids[id] {
		slog.Debug("SetChecked for unknown menu item", slog.String("id", id))
		return
	}

	b.host.SetChecked(id, checked)
}

// ShowContext pops up a secondary tree at the cursor. Activations are
// queued like menu-bar ones.
func (b *Bridge) ShowContext(tree Tree) {
	b.host.ShowContext(tree, b.activate)
}

func (b *Bridge) Release() {
	b.host.Release()
}
