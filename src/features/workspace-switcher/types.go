/**
 * Workspace switcher type definitions
 */

package workspaceswitcher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates the platform reported fewer than one workspace.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnknownDirection indicates a direction other than Up or Down.
	ErrUnknownDirection = errors.New("unknown direction")
)

// Direction is the signed workspace-index delta requested by a hotkey
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps "up"/"down" to a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// WindowKind classifies a top-level window. Only normal windows are moved.
type WindowKind int

const (
	KindNormal WindowKind = iota
	KindOther
)

func (k WindowKind) String() string {
	if k == KindNormal {
		return "normal"
	}
	return "other"
}

// WindowID identifies a window for its whole lifetime
type WindowID uint32

// WindowHandle is a live window owned by the windowing system
type WindowHandle interface {
	ID() WindowID
	Title() string
	Kind() WindowKind
	MonitorIndex() int
	WorkspaceIndex() int
	MoveToWorkspace(index int)
}

// Platform is the windowing system as seen by the reconciler. Every call is
// synchronous and expected to return immediately.
type Platform interface {
	ListWindows() []WindowHandle
	WorkspaceCount() int
	ActiveWorkspaceIndex() int
	FocusedMonitorIndex() int
}

// SwitchingGate decides whether automatic resynchronization may run
type SwitchingGate interface {
	AutomaticSwitchingAllowed() bool
}
