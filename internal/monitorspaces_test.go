package monitorspaces

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ln64-git/monitorspaces/src/config"
	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

type memWindow struct {
	id        workspaceswitcher.WindowID
	monitor   int
	workspace int
}

func (w *memWindow) ID() workspaceswitcher.WindowID     { return w.id }
func (w *memWindow) Title() string                      { return "" }
func (w *memWindow) Kind() workspaceswitcher.WindowKind { return workspaceswitcher.KindNormal }
func (w *memWindow) MonitorIndex() int                  { return w.monitor }
func (w *memWindow) WorkspaceIndex() int                { return w.workspace }
func (w *memWindow) MoveToWorkspace(i int)              { w.workspace = i }

type memPlatform struct {
	windows []*memWindow
	count   int
	active  int
	focused int
}

func (p *memPlatform) ListWindows() []workspaceswitcher.WindowHandle {
	var out []workspaceswitcher.WindowHandle
	for _, w := range p.windows {
		out = append(out, w)
	}
	return out
}

func (p *memPlatform) WorkspaceCount() int       { return p.count }
func (p *memPlatform) ActiveWorkspaceIndex() int { return p.active }
func (p *memPlatform) FocusedMonitorIndex() int  { return p.focused }

func newTestApp(p *memPlatform, buf *bytes.Buffer) *App {
	logger := utility.NewWriterLogger(buf, utility.DEBUG)
	a := New(logger, config.Default(), nil)
	a.gate = workspaceswitcher.NewConfigurationGate(logger, nil, nil)
	a.reconciler = workspaceswitcher.NewWorkspaceReconciler(logger, p, a.gate)
	a.controller = workspaceswitcher.NewController(a.reconciler)
	return a
}

func TestHotkeysDriveDirectedSwitch(t *testing.T) {
	w := &memWindow{id: 1, monitor: 0, workspace: 1}
	p := &memPlatform{windows: []*memWindow{w}, count: 4}
	a := newTestApp(p, &bytes.Buffer{})

	hotkeys := a.hotkeys()
	if len(hotkeys) != 2 {
		t.Fatalf("got %d hotkeys", len(hotkeys))
	}
	if hotkeys[0].Name != config.HotkeyNextName || hotkeys[0].Keys != a.config.HotkeyNext {
		t.Errorf("first hotkey = %+v", hotkeys[0])
	}

	// next moves up
	hotkeys[0].Handler()
	if w.workspace != 0 {
		t.Errorf("after next: workspace %d, want 0", w.workspace)
	}
	hotkeys[1].Handler()
	hotkeys[1].Handler()
	if w.workspace != 2 {
		t.Errorf("after previous twice: workspace %d, want 2", w.workspace)
	}
}

func TestActivationThenWorkspaceChange(t *testing.T) {
	clicked := &memWindow{id: 1, monitor: 1, workspace: 0}
	other := &memWindow{id: 2, monitor: 0, workspace: 0}
	p := &memPlatform{windows: []*memWindow{clicked, other}, count: 4, focused: 0}
	a := newTestApp(p, &bytes.Buffer{})

	a.WindowActivatedWithFocus(clicked)
	p.active = 1
	a.ActiveWorkspaceChanged()

	if clicked.workspace != 0 {
		t.Errorf("activated monitor window moved to %d", clicked.workspace)
	}
	if other.workspace != 1 {
		t.Errorf("other monitor window on %d, want 1", other.workspace)
	}
}

func TestInvalidStateIsLoggedAsSkip(t *testing.T) {
	var buf bytes.Buffer
	p := &memPlatform{count: 0}
	a := newTestApp(p, &buf)

	a.ActiveWorkspaceChanged()
	a.handleDown()

	out := buf.String()
	if !strings.Contains(out, "resync skipped") || !strings.Contains(out, "switch down skipped") {
		t.Errorf("expected skip warnings, got:\n%s", out)
	}
	if strings.Contains(out, "[ERROR]") {
		t.Errorf("invalid state logged as error:\n%s", out)
	}
}

func TestHandlersAfterDisableAreNoops(t *testing.T) {
	a := New(utility.NewWriterLogger(&bytes.Buffer{}, utility.DEBUG), nil, nil)

	a.ActiveWorkspaceChanged()
	a.WindowActivatedWithFocus(&memWindow{})
	a.ExtensionSetChanged()
	a.handleUp()
	a.Disable()
}

func TestApplyConfig(t *testing.T) {
	var buf bytes.Buffer
	p := &memPlatform{count: 2}
	a := newTestApp(p, &buf)
	a.logger.SetLevel(utility.INFO)

	cfg := config.Default()
	cfg.Debug = true
	cfg.AutomaticSwitching = false
	cfg.HotkeyNext = "Mod4-k"
	a.applyConfig(cfg)

	if a.logger.Level() != utility.DEBUG {
		t.Errorf("log level = %v, want DEBUG", a.logger.Level())
	}
	if !strings.Contains(a.gate.String(), "automaticSwitchingSetting: false") {
		t.Errorf("gate = %s", a.gate.String())
	}
	if !strings.Contains(buf.String(), "Hotkey changes take effect after restart") {
		t.Errorf("missing restart warning:\n%s", buf.String())
	}
	if !a.gate.AutomaticSwitchingAllowed() {
		t.Error("gate closed by setting")
	}
}
