package menu

// Headless is an in-memory Host for tests. Activate stands in for the
// user clicking a native item.
type Headless struct {
	tree     Tree
	activate func(id string)

	enabled  map[string]bool
	checked  map[string]bool
	released bool

	contextShown int
}

func NewHeadless() *Headless {
	return &Headless{
		enabled: map[string]bool{},
		checked: map[string]bool{},
	}
}

func (h *Headless) Build(tree Tree, activate func(id string)) error {
	h.tree = tree
	h.activate = activate
	return nil
}

// Activate simulates a native activation of the item with the given
// identifier.
func (h *Headless) Activate(id string) {
	if h.activate != nil {
		h.activate(id)
	}
}

func (h *Headless) SetEnabled(id string, enabled bool) {
	h.enabled[id] = enabled
}

func (h *Headless) SetChecked(id string, checked bool) {
	h.checked[id] = checked
}

func (h *Headless) ShowContext(tree Tree, activate func(id string)) {
	h.contextShown++
}

func (h *Headless) Release() {
	h.released = true
}

func (h *Headless) Enabled(id string) (bool, bool) {
	on, ok := h.enabled[id]
	return on, ok
}

func (h *Headless) Checked(id string) (bool, bool) {
	on, ok := h.checked[id]
	return on, ok
}

func (h *Headless) Released() bool {
	return h.released
}

func (h *Headless) ContextShown() int {
	return h.contextShown
}

func (h *Headless) Tree() Tree {
	return h.tree
}
