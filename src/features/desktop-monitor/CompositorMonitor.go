/**
 * Compositor monitor - EWMH window manager state, implementing the
 * workspace switcher platform
 */

package desktopmonitor

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

// CompositorMonitor reads and changes window manager state over EWMH.
// Read failures are logged and mapped to fallbacks so every call is total.
type CompositorMonitor struct {
	logger   *utility.Logger
	conn     *Connection
	displays *DisplayMonitor

	mu         sync.RWMutex
	lastActive int
}

// NewCompositorMonitor creates the EWMH platform over conn
func NewCompositorMonitor(logger *utility.Logger, conn *Connection, displays *DisplayMonitor) *CompositorMonitor {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &CompositorMonitor{
		logger:   logger,
		conn:     conn,
		displays: displays,
	}
}

// ListWindows lists the client windows in stacking order of _NET_CLIENT_LIST.
// Clients whose _NET_WM_DESKTOP cannot be read are skipped.
func (cm *CompositorMonitor) ListWindows() []workspaceswitcher.WindowHandle {
	clients, err := ewmh.ClientListGet(cm.conn.X)
	if err != nil {
		cm.logger.Error("Failed to read client list: %v", err)
		return nil
	}

	handles := make([]workspaceswitcher.WindowHandle, 0, len(clients))
	for _, id := range clients {
		w := &x11Window{cm: cm, id: id}
		if _, state := w.desktop(); state == desktopUnknown {
			cm.logger.Debug("Skipping window %d: _NET_WM_DESKTOP unreadable", id)
			continue
		}
		handles = append(handles, w)
	}
	return handles
}

// Window returns a handle for id without checking that it still exists
func (cm *CompositorMonitor) Window(id xproto.Window) workspaceswitcher.WindowHandle {
	return &x11Window{cm: cm, id: id}
}

// WorkspaceCount returns _NET_NUMBER_OF_DESKTOPS, 0 when unreadable
func (cm *CompositorMonitor) WorkspaceCount() int {
	count, err := ewmh.NumberOfDesktopsGet(cm.conn.X)
	if err != nil {
		cm.logger.Error("Failed to read desktop count: %v", err)
		return 0
	}
	return int(count)
}

// ActiveWorkspaceIndex returns _NET_CURRENT_DESKTOP, or the last value read
// when the property cannot be read
func (cm *CompositorMonitor) ActiveWorkspaceIndex() int {
	desktop, err := ewmh.CurrentDesktopGet(cm.conn.X)

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if err != nil {
		cm.logger.Error("Failed to read current desktop: %v", err)
		return cm.lastActive
	}
	cm.lastActive = int(desktop)
	return cm.lastActive
}

// FocusedMonitorIndex returns the head under the pointer
func (cm *CompositorMonitor) FocusedMonitorIndex() int {
	reply, err := xproto.QueryPointer(cm.conn.X.Conn(), cm.conn.Root).Reply()
	if err != nil {
		cm.logger.Error("Failed to query pointer: %v", err)
		return 0
	}
	return cm.displays.MonitorIndexAt(int(reply.RootX), int(reply.RootY))
}

// ActiveWindow returns _NET_ACTIVE_WINDOW, 0 when none
func (cm *CompositorMonitor) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(cm.conn.X)
}

// GetWindowManagerInfo describes the running window manager
func (cm *CompositorMonitor) GetWindowManagerInfo() WindowManagerInfo {
	info := WindowManagerInfo{Name: "unknown"}
	if name, err := ewmh.GetEwmhWM(cm.conn.X); err == nil && name != "" {
		info.Name = name
		info.Available = true
	}
	info.WorkspaceCount = cm.WorkspaceCount()
	info.ActiveWorkspace = cm.ActiveWorkspaceIndex()
	if active, err := cm.ActiveWindow(); err == nil {
		info.ActiveWindow = uint32(active)
	}
	return info
}

// GetWindows snapshots every client window for display
func (cm *CompositorMonitor) GetWindows() []WindowInfo {
	active, _ := cm.ActiveWindow()

	var windows []WindowInfo
	for _, h := range cm.ListWindows() {
		w := h.(*x11Window)
		desktop, state := w.desktop()
		windows = append(windows, WindowInfo{
			ID:        uint32(w.id),
			Title:     w.Title(),
			Kind:      w.Kind(),
			Monitor:   w.MonitorIndex(),
			Workspace: desktop,
			Sticky:    state == desktopSticky,
			Active:    w.id == active,
		})
	}
	return windows
}

// moveWindow sends the _NET_WM_DESKTOP client message to the root window.
// The ewmh request helper panics on this library version, so the message is
// built by hand.
func (cm *CompositorMonitor) moveWindow(id xproto.Window, desktop int) error {
	atom, err := xprop.Atm(cm.conn.X, "_NET_WM_DESKTOP")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_WM_DESKTOP: %w", err)
	}

	const sourceIndication = 2 // pager
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: id,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(desktop), sourceIndication, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		cm.conn.X.Conn(),
		false,
		cm.conn.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// x11Window is a live client window
type x11Window struct {
	cm *CompositorMonitor
	id xproto.Window
}

func (w *x11Window) ID() workspaceswitcher.WindowID {
	return workspaceswitcher.WindowID(w.id)
}

func (w *x11Window) Title() string {
	name, err := ewmh.WmNameGet(w.cm.conn.X, w.id)
	if err != nil {
		return ""
	}
	return name
}

func (w *x11Window) Kind() workspaceswitcher.WindowKind {
	types, err := ewmh.WmWindowTypeGet(w.cm.conn.X, w.id)
	if err != nil {
		types = nil
	}
	_, state := w.desktop()
	return classifyWindow(types, state)
}

func (w *x11Window) MonitorIndex() int {
	return w.cm.displays.MonitorIndexOf(w.id)
}

func (w *x11Window) WorkspaceIndex() int {
	desktop, _ := w.desktop()
	return desktop
}

func (w *x11Window) MoveToWorkspace(index int) {
	if err := w.cm.moveWindow(w.id, index); err != nil {
		w.cm.logger.Warn("Failed to move window %d to workspace %d: %v", w.id, index, err)
	}
}

// desktopState says how a window relates to the desktops
type desktopState int

const (
	desktopUnknown desktopState = iota
	desktopAssigned
	desktopSticky
)

// desktop reads _NET_WM_DESKTOP; sticky and unreadable windows report -1
func (w *x11Window) desktop() (int, desktopState) {
	desktop, err := ewmh.WmDesktopGet(w.cm.conn.X, w.id)
	if err != nil {
		return -1, desktopUnknown
	}
	if desktop == stickyDesktop {
		return -1, desktopSticky
	}
	return int(desktop), desktopAssigned
}

// classifyWindow maps _NET_WM_WINDOW_TYPE to a window kind. Windows without a
// type are normal; sticky windows and windows without a readable desktop
// never take part in switching.
func classifyWindow(types []string, state desktopState) workspaceswitcher.WindowKind {
	if state != desktopAssigned {
		return workspaceswitcher.KindOther
	}
	if len(types) == 0 {
		return workspaceswitcher.KindNormal
	}
	if types[0] == "_NET_WM_WINDOW_TYPE_NORMAL" {
		return workspaceswitcher.KindNormal
	}
	return workspaceswitcher.KindOther
}
