package menu

// Host is the native menu layer behind a Bridge. The darwin host
// builds a real NSMenu; other desktop platforms currently get a no-op
// host, and tests use the Headless host.
type Host interface {
	// Build realizes the tree as the application menu. The activate
	// callback is invoked with the item identifier whenever an item
	// is clicked; it always runs on the event-loop thread.
	Build(tree Tree, activate func(id string)) error

	SetEnabled(id string, enabled bool)
	SetChecked(id string, checked bool)

	// ShowContext pops the tree up as a context menu at the current
	// cursor position.
	ShowContext(tree Tree, activate func(id string))

	Release()
}
