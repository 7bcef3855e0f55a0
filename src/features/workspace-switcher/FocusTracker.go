package workspaceswitcher

// FocusTracker remembers the monitor of the most recent window activation
// until the next resync consumes it.
type FocusTracker struct {
	monitor int
	set     bool
}

// Record sets the hint to the window's current monitor. Any window kind counts.
func (f *FocusTracker) Record(window WindowHandle) {
	f.monitor = window.MonitorIndex()
	f.set = true
}

// Consume returns the hint, if any, and clears it
func (f *FocusTracker) Consume() (int, bool) {
	monitor, ok := f.monitor, f.set
	f.monitor, f.set = 0, false
	return monitor, ok
}

// Peek returns the hint without clearing it
func (f *FocusTracker) Peek() (int, bool) {
	return f.monitor, f.set
}
