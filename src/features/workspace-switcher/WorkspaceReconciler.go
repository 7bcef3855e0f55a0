/**
 * Workspace Reconciler
 * Moves windows between global workspaces so that each monitor appears to
 * keep its own active workspace
 */

package workspaceswitcher

import (
	"fmt"
	"sync"

	"github.com/ln64-git/monitorspaces/src/utility"
)

// WorkspaceReconciler owns the last-known active workspace and the focus hint.
// All methods are serialized; none of them re-enter each other.
type WorkspaceReconciler struct {
	logger   *utility.Logger
	platform Platform
	gate     SwitchingGate
	focus    FocusTracker

	mu                       sync.Mutex
	workspaceCount           int
	lastActiveWorkspaceIndex int
}

// NewWorkspaceReconciler captures the current active workspace as the
// starting point for the first resync
func NewWorkspaceReconciler(logger *utility.Logger, platform Platform, gate SwitchingGate) *WorkspaceReconciler {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &WorkspaceReconciler{
		logger:                   logger,
		platform:                 platform,
		gate:                     gate,
		workspaceCount:           platform.WorkspaceCount(),
		lastActiveWorkspaceIndex: platform.ActiveWorkspaceIndex(),
	}
}

// DirectedSwitch rotates every normal window on the focused monitor by one
// workspace in direction. Windows on other monitors are not touched.
func (r *WorkspaceReconciler) DirectedSwitch(direction Direction) error {
	if direction != Up && direction != Down {
		return fmt.Errorf("%w: %d", ErrUnknownDirection, int(direction))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.refreshWorkspaceCount()
	if err != nil {
		return err
	}

	windows := snapshotWindows(r.platform)
	focusedMonitor := r.platform.FocusedMonitorIndex()

	r.logger.Debug("switching %s on monitor %d (%d workspaces, %d windows)", direction, focusedMonitor, count, len(windows))
	for _, w := range windows {
		r.logger.Debug("%s", w)
	}

	moved := 0
	for _, w := range windows {
		if !w.IsNormal() || w.InitialMonitorIndex() != focusedMonitor {
			continue
		}
		target := wrap(count, w.LiveWorkspaceIndex()+int(direction))
		r.logger.Debug("window %d: workspace %d -> %d", w.ID(), w.LiveWorkspaceIndex(), target)
		w.MoveToWorkspace(target)
		moved++
	}

	r.logger.Info("Switched monitor %d %s (%d windows moved)", focusedMonitor, direction, moved)
	return nil
}

// Resync shifts every normal window off the focused monitor by the change in
// the global active workspace since the previous resync, so that those
// monitors keep showing what they showed before the global switch.
func (r *WorkspaceReconciler) Resync() error {
	if r.gate != nil && !r.gate.AutomaticSwitchingAllowed() {
		r.logger.Debug("automatic switching not allowed, skipping resync")
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.refreshWorkspaceCount()
	if err != nil {
		return err
	}

	newActive := r.platform.ActiveWorkspaceIndex()
	shift := newActive - r.lastActiveWorkspaceIndex

	focusedMonitor, hinted := r.focus.Consume()
	if !hinted {
		focusedMonitor = r.platform.FocusedMonitorIndex()
	}

	r.logger.Debug("resync: workspace %d -> %d (shift %d), focused monitor %d (hint: %t)",
		r.lastActiveWorkspaceIndex, newActive, shift, focusedMonitor, hinted)

	moved := 0
	if shift != 0 {
		for _, w := range snapshotWindows(r.platform) {
			if !w.IsNormal() || w.InitialMonitorIndex() == focusedMonitor {
				continue
			}
			target := wrap(count, w.LiveWorkspaceIndex()+shift)
			r.logger.Debug("window %d: workspace %d -> %d", w.ID(), w.LiveWorkspaceIndex(), target)
			w.MoveToWorkspace(target)
			moved++
		}
	}

	r.lastActiveWorkspaceIndex = newActive
	if moved > 0 {
		r.logger.Info("Resynced %d windows off monitor %d by %+d", moved, focusedMonitor, shift)
	}
	return nil
}

// WindowActivatedWithFocus records the window's monitor as the focus hint for
// the next Resync. It must be delivered before the workspace change it causes.
func (r *WorkspaceReconciler) WindowActivatedWithFocus(window WindowHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.focus.Record(window)
	r.logger.Debug("focus hint: window %d on monitor %d", window.ID(), window.MonitorIndex())
}

// WorkspaceCount returns the count cached by the last operation
func (r *WorkspaceReconciler) WorkspaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workspaceCount
}

// LastActiveWorkspaceIndex returns the active workspace as of the last resync
func (r *WorkspaceReconciler) LastActiveWorkspaceIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActiveWorkspaceIndex
}

// FocusedMonitorHint returns the pending focus hint, if any
func (r *WorkspaceReconciler) FocusedMonitorHint() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focus.Peek()
}

// refreshWorkspaceCount reads the workspace count. A count below one is
// reported without touching any state. Caller must hold r.mu.
func (r *WorkspaceReconciler) refreshWorkspaceCount() (int, error) {
	count := r.platform.WorkspaceCount()
	if count < 1 {
		r.logger.Warn("Platform reported %d workspaces, skipping", count)
		return 0, fmt.Errorf("%w: workspace count %d", ErrInvalidState, count)
	}
	r.workspaceCount = count
	return count, nil
}

// wrap maps any index into [0, count)
func wrap(count, index int) int {
	return ((index % count) + count) % count
}
