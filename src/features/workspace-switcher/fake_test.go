package workspaceswitcher

import (
	"context"
	"io"

	"github.com/ln64-git/monitorspaces/src/utility"
)

type fakeWindow struct {
	id        WindowID
	title     string
	kind      WindowKind
	monitor   int
	workspace int
	moves     []int
}

func (w *fakeWindow) ID() WindowID        { return w.id }
func (w *fakeWindow) Title() string       { return w.title }
func (w *fakeWindow) Kind() WindowKind    { return w.kind }
func (w *fakeWindow) MonitorIndex() int   { return w.monitor }
func (w *fakeWindow) WorkspaceIndex() int { return w.workspace }

func (w *fakeWindow) MoveToWorkspace(index int) {
	w.moves = append(w.moves, index)
	w.workspace = index
}

type fakePlatform struct {
	windows        []*fakeWindow
	workspaceCount int
	active         int
	focusedMonitor int
}

func (p *fakePlatform) ListWindows() []WindowHandle {
	handles := make([]WindowHandle, 0, len(p.windows))
	for _, w := range p.windows {
		handles = append(handles, w)
	}
	return handles
}

func (p *fakePlatform) WorkspaceCount() int       { return p.workspaceCount }
func (p *fakePlatform) ActiveWorkspaceIndex() int { return p.active }
func (p *fakePlatform) FocusedMonitorIndex() int  { return p.focusedMonitor }

type staticGate bool

func (g staticGate) AutomaticSwitchingAllowed() bool { return bool(g) }

type fakeProbe struct {
	extensions []string
	extErr     error
	dynamic    bool
	dynErr     error
	calls      int
}

func (p *fakeProbe) EnabledExtensions(ctx context.Context) ([]string, error) {
	p.calls++
	return p.extensions, p.extErr
}

func (p *fakeProbe) DynamicWorkspaces(ctx context.Context) (bool, error) {
	return p.dynamic, p.dynErr
}

func testLogger() *utility.Logger {
	return utility.NewWriterLogger(io.Discard, utility.DEBUG)
}

func window(id WindowID, monitor, workspace int) *fakeWindow {
	return &fakeWindow{id: id, kind: KindNormal, monitor: monitor, workspace: workspace}
}
