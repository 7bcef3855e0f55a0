/**
 * Desktop integration - orchestrates all desktop monitoring components
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

var (
	headingColor = color.New(color.Bold)
	activeColor  = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
)

// DesktopIntegration owns the X connection and the monitors built on it
type DesktopIntegration struct {
	logger            *utility.Logger
	conn              *Connection
	sessionMonitor    *SessionMonitor
	compositorMonitor *CompositorMonitor
	displayMonitor    *DisplayMonitor
}

// Open connects to the X display and builds every monitor
func Open(logger *utility.Logger, runner utility.Runner) (*DesktopIntegration, error) {
	if logger == nil {
		logger = utility.GetLogger()
	}

	conn, err := Connect(logger)
	if err != nil {
		return nil, err
	}

	displays := NewDisplayMonitor(logger.With("display"), conn)
	return &DesktopIntegration{
		logger:            logger,
		conn:              conn,
		sessionMonitor:    NewSessionMonitor(logger.With("session"), runner),
		compositorMonitor: NewCompositorMonitor(logger.With("ewmh"), conn, displays),
		displayMonitor:    displays,
	}, nil
}

// Close closes the X connection
func (di *DesktopIntegration) Close() {
	di.conn.Close()
}

// Connection returns the shared X connection
func (di *DesktopIntegration) Connection() *Connection { return di.conn }

// Platform returns the EWMH platform the reconciler drives
func (di *DesktopIntegration) Platform() *CompositorMonitor { return di.compositorMonitor }

// Displays returns the head tracker
func (di *DesktopIntegration) Displays() *DisplayMonitor { return di.displayMonitor }

// Sessions returns the session monitor
func (di *DesktopIntegration) Sessions() *SessionMonitor { return di.sessionMonitor }

// DetectCompositor detects the compositor type
func DetectCompositor(getenv func(string) string) CompositorType {
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return CompositorTypeHyprland
	}
	if getenv("NIRI_SOCKET") != "" {
		return CompositorTypeNiri
	}
	if getenv("SWAYSOCK") != "" {
		return CompositorTypeSway
	}
	if getenv("I3SOCK") != "" {
		return CompositorTypeI3
	}
	if strings.Contains(strings.ToUpper(getenv("XDG_CURRENT_DESKTOP")), "GNOME") {
		return CompositorTypeGnome
	}
	return CompositorTypeUnknown
}

// GetDesktopStatus gets complete desktop status
func (di *DesktopIntegration) GetDesktopStatus(ctx context.Context) *DesktopStatus {
	focused := di.compositorMonitor.FocusedMonitorIndex()
	return &DesktopStatus{
		Session:       *di.sessionMonitor.GetSessionInfo(ctx),
		WindowManager: di.compositorMonitor.GetWindowManagerInfo(),
		Compositor:    DetectCompositor(nil),
		Windows:       di.compositorMonitor.GetWindows(),
		Monitors:      di.displayMonitor.GetMonitors(focused),
	}
}

// GetFormattedStatus gets formatted desktop status
func (di *DesktopIntegration) GetFormattedStatus(ctx context.Context) string {
	status := di.GetDesktopStatus(ctx)

	lines := []string{
		headingColor.Sprint("Desktop Status"),
		strings.Repeat("=", 50),
		"",
		di.sessionMonitor.FormatSessionInfo(&status.Session),
		"",
		FormatWindowManagerInfo(status.WindowManager, status.Compositor),
		"",
		di.displayMonitor.FormatMonitorInfo(status.Monitors),
		"",
		FormatWindows(status.Windows),
	}
	return strings.Join(lines, "\n")
}

// GetDisplayStatus gets display status
func (di *DesktopIntegration) GetDisplayStatus() string {
	focused := di.compositorMonitor.FocusedMonitorIndex()
	return di.displayMonitor.FormatMonitorInfo(di.displayMonitor.GetMonitors(focused))
}

// GetDesktopSummary gets a one-paragraph summary of desktop status
func (di *DesktopIntegration) GetDesktopSummary(ctx context.Context) string {
	status := di.GetDesktopStatus(ctx)

	lines := []string{
		fmt.Sprintf("Window manager: %s", status.WindowManager.Name),
		fmt.Sprintf("Session: %s (%s)", status.Session.Type, status.Session.Seat),
		fmt.Sprintf("Workspaces: %d (active %d)", status.WindowManager.WorkspaceCount, status.WindowManager.ActiveWorkspace),
		fmt.Sprintf("Windows: %d open", len(status.Windows)),
		fmt.Sprintf("Displays: %s", di.displayMonitor.FormatMonitorSummary(status.Monitors)),
	}
	return strings.Join(lines, "\n  ")
}

// FormatWindowManagerInfo formats window manager info for display
func FormatWindowManagerInfo(info WindowManagerInfo, compositor CompositorType) string {
	lines := []string{
		"Window Manager:",
		fmt.Sprintf("  Name: %s", info.Name),
		fmt.Sprintf("  Desktop: %s", compositor),
		fmt.Sprintf("  Workspaces: %d", info.WorkspaceCount),
		fmt.Sprintf("  Active Workspace: %d", info.ActiveWorkspace),
	}
	if info.ActiveWindow != 0 {
		lines = append(lines, fmt.Sprintf("  Active Window: 0x%x", info.ActiveWindow))
	}
	if !info.Available {
		lines = append(lines, "  (no EWMH window manager detected)")
	}
	return strings.Join(lines, "\n")
}

// FormatWindows lists windows grouped by monitor, then workspace
func FormatWindows(windows []WindowInfo) string {
	if len(windows) == 0 {
		return "Windows:\n  No windows"
	}

	sorted := append([]WindowInfo(nil), windows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Monitor != sorted[j].Monitor {
			return sorted[i].Monitor < sorted[j].Monitor
		}
		return sorted[i].Workspace < sorted[j].Workspace
	})

	lines := []string{"Windows:"}
	monitor, workspace := -1, -2
	for _, w := range sorted {
		if w.Monitor != monitor {
			monitor, workspace = w.Monitor, -2
			lines = append(lines, fmt.Sprintf("  Monitor %d:", monitor))
		}
		if w.Workspace != workspace {
			workspace = w.Workspace
			if w.Sticky {
				lines = append(lines, "    All workspaces:")
			} else {
				lines = append(lines, fmt.Sprintf("    Workspace %d:", workspace))
			}
		}

		title := w.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("      0x%08x %s [%s]", w.ID, title, w.Kind)
		switch {
		case w.Active:
			line = activeColor.Sprint(line + " *")
		case w.Kind != workspaceswitcher.KindNormal:
			line = dimColor.Sprint(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
