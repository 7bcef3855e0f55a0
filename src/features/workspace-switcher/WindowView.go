package workspaceswitcher

import "fmt"

// WindowView is a snapshot of one window taken when an operation begins.
// The initial indices are frozen at construction; the live accessors read
// through to the handle. A view is never reused across operations.
type WindowView struct {
	handle WindowHandle
	id     WindowID
	kind   WindowKind

	initialMonitorIndex   int
	initialWorkspaceIndex int
}

// NewWindowView snapshots handle
func NewWindowView(handle WindowHandle) WindowView {
	return WindowView{
		handle:                handle,
		id:                    handle.ID(),
		kind:                  handle.Kind(),
		initialMonitorIndex:   handle.MonitorIndex(),
		initialWorkspaceIndex: handle.WorkspaceIndex(),
	}
}

func (v WindowView) ID() WindowID { return v.id }

func (v WindowView) Kind() WindowKind { return v.kind }

// IsNormal reports whether the window is an ordinary application window
func (v WindowView) IsNormal() bool { return v.kind == KindNormal }

func (v WindowView) InitialMonitorIndex() int { return v.initialMonitorIndex }

func (v WindowView) InitialWorkspaceIndex() int { return v.initialWorkspaceIndex }

// LiveWorkspaceIndex reads the window's current workspace
func (v WindowView) LiveWorkspaceIndex() int {
	return v.handle.WorkspaceIndex()
}

// LiveMonitorIndex reads the window's current monitor
func (v WindowView) LiveMonitorIndex() int {
	return v.handle.MonitorIndex()
}

// MoveToWorkspace asks the windowing system to reassign the window.
// The platform is the authority; there is no retry.
func (v WindowView) MoveToWorkspace(index int) {
	v.handle.MoveToWorkspace(index)
}

func (v WindowView) String() string {
	return fmt.Sprintf("title: %q windowType: %s monitorIndex: %d workspaceIndex: %d isNormal: %t",
		v.handle.Title(), v.kind, v.LiveMonitorIndex(), v.LiveWorkspaceIndex(), v.IsNormal())
}

// snapshotWindows builds a fresh view of every window the platform lists
func snapshotWindows(p Platform) []WindowView {
	handles := p.ListWindows()
	views := make([]WindowView, 0, len(handles))
	for _, h := range handles {
		views = append(views, NewWindowView(h))
	}
	return views
}
