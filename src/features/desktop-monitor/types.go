/**
 * Desktop monitor type definitions
 */

package desktopmonitor

import (
	"errors"

	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
)

// ErrNoDisplay is returned when no X display can be reached
var ErrNoDisplay = errors.New("no X display")

// stickyDesktop is the _NET_WM_DESKTOP value of windows shown on every desktop
const stickyDesktop = 0xFFFFFFFF

// SessionInfo represents session information
type SessionInfo struct {
	SessionID string
	User      string
	Seat      string
	Type      string // 'wayland' | 'x11'
	State     string
	Active    bool
	Display   string
}

// WindowManagerInfo describes the EWMH window manager
type WindowManagerInfo struct {
	Name            string
	Available       bool
	WorkspaceCount  int
	ActiveWorkspace int
	ActiveWindow    uint32
}

// WindowInfo represents one top-level client window
type WindowInfo struct {
	ID        uint32
	Title     string
	Kind      workspaceswitcher.WindowKind
	Monitor   int
	Workspace int // -1 when sticky
	Sticky    bool
	Active    bool
}

// MonitorInfo represents one physical head
type MonitorInfo struct {
	Index   int
	X       int
	Y       int
	Width   int
	Height  int
	Focused bool
}

// DesktopStatus represents complete desktop status
type DesktopStatus struct {
	Session       SessionInfo
	WindowManager WindowManagerInfo
	Compositor    CompositorType
	Windows       []WindowInfo
	Monitors      []MonitorInfo
}

// CompositorType represents compositor types
type CompositorType string

const (
	CompositorTypeHyprland CompositorType = "hyprland"
	CompositorTypeSway     CompositorType = "sway"
	CompositorTypeNiri     CompositorType = "niri"
	CompositorTypeI3       CompositorType = "i3"
	CompositorTypeGnome    CompositorType = "gnome"
	CompositorTypeUnknown  CompositorType = "unknown"
)

// HasPerOutputWorkspaces reports whether the compositor already gives every
// output its own workspaces
func (c CompositorType) HasPerOutputWorkspaces() bool {
	switch c {
	case CompositorTypeHyprland, CompositorTypeSway, CompositorTypeNiri, CompositorTypeI3:
		return true
	default:
		return false
	}
}
