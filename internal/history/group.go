package history

// GroupScope provides a convenient way to group records using defer.
// Usage:
//
//	func pasteRows(h *History) {
//	    defer h.GroupScope("Paste rows").End()
//	    // ... several transactions ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Group runs fn inside an explicit group. The group is closed whether or
// not fn fails; changes fn already applied stay recorded. Inside another
// group fn joins the open one.
func (h *History) Group(name string, fn func() error) error {
	if h.IsGrouping() {
		return fn()
	}
	defer h.GroupScope(name).End()
	return fn()
}
