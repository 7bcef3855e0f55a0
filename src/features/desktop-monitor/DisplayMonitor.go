/**
 * Display monitor - physical heads and monitor lookup
 */

package desktopmonitor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/ln64-git/monitorspaces/src/utility"
)

// DisplayMonitor tracks the physical heads of the X screen. Monitor indices
// are positions in the head list.
type DisplayMonitor struct {
	logger *utility.Logger
	conn   *Connection
	mu     sync.RWMutex
	heads  []xrect.Rect
}

// NewDisplayMonitor queries the current heads
func NewDisplayMonitor(logger *utility.Logger, conn *Connection) *DisplayMonitor {
	if logger == nil {
		logger = utility.GetLogger()
	}
	dm := &DisplayMonitor{logger: logger, conn: conn}
	dm.Refresh()
	return dm
}

// Refresh re-reads the head layout. Falls back to the root window geometry
// when Xinerama is unavailable or reports nothing. Called before every
// switching operation so hotplugged monitors are picked up.
func (dm *DisplayMonitor) Refresh() {
	heads := dm.queryHeads()

	dm.mu.Lock()
	changed := !sameHeads(dm.heads, heads)
	dm.heads = heads
	dm.mu.Unlock()

	if changed {
		dm.logger.Debug("Displays: %s", dm.FormatMonitorSummary(dm.GetMonitors(-1)))
	}
}

func sameHeads(a, b []xrect.Rect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].X() != b[i].X() || a[i].Y() != b[i].Y() ||
			a[i].Width() != b[i].Width() || a[i].Height() != b[i].Height() {
			return false
		}
	}
	return true
}

func (dm *DisplayMonitor) queryHeads() []xrect.Rect {
	if dm.conn.xinerama {
		heads, err := xinerama.PhysicalHeads(dm.conn.X)
		if err == nil && len(heads) > 0 {
			return heads
		}
		if err != nil {
			dm.logger.Warn("Failed to query heads: %v", err)
		}
	}

	root, err := xwindow.RawGeometry(dm.conn.X, xproto.Drawable(dm.conn.Root))
	if err != nil {
		dm.logger.Error("Failed to read root geometry: %v", err)
		return nil
	}
	return []xrect.Rect{root}
}

// MonitorIndexOf returns the head a window occupies
func (dm *DisplayMonitor) MonitorIndexOf(window xproto.Window) int {
	geom, err := xwindow.New(dm.conn.X, window).DecorGeometry()
	if err != nil {
		dm.logger.Debug("geometry of window %d: %v", window, err)
		return 0
	}

	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return monitorIndexForRect(dm.heads, geom)
}

// MonitorIndexAt returns the head containing the root coordinate x, y
func (dm *DisplayMonitor) MonitorIndexAt(x, y int) int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return monitorIndexForPoint(dm.heads, x, y)
}

// GetMonitors lists the heads, marking focused as the focused one
func (dm *DisplayMonitor) GetMonitors(focused int) []MonitorInfo {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	monitors := make([]MonitorInfo, 0, len(dm.heads))
	for i, h := range dm.heads {
		monitors = append(monitors, MonitorInfo{
			Index:   i,
			X:       h.X(),
			Y:       h.Y(),
			Width:   h.Width(),
			Height:  h.Height(),
			Focused: i == focused,
		})
	}
	return monitors
}

// GetMonitorCount gets the number of monitors
func (dm *DisplayMonitor) GetMonitorCount() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.heads)
}

// monitorIndexForRect picks the head with the largest overlap, 0 when the
// rectangle lies off every head
func monitorIndexForRect(heads []xrect.Rect, r xrect.Rect) int {
	if len(heads) == 0 {
		return 0
	}
	if i := xrect.LargestOverlap(r, heads); i >= 0 {
		return i
	}
	return 0
}

func monitorIndexForPoint(heads []xrect.Rect, x, y int) int {
	for i, h := range heads {
		if x >= h.X() && x < h.X()+h.Width() && y >= h.Y() && y < h.Y()+h.Height() {
			return i
		}
	}
	return 0
}

// FormatMonitorInfo formats monitor info for display
func (dm *DisplayMonitor) FormatMonitorInfo(monitors []MonitorInfo) string {
	if len(monitors) == 0 {
		return "Display Information:\n  No monitors detected"
	}

	lines := []string{"Display Information:"}

	for _, monitor := range monitors {
		lines = append(lines, "")
		focused := ""
		if monitor.Focused {
			focused = " (focused)"
		}
		lines = append(lines, fmt.Sprintf("  Monitor %d%s:", monitor.Index, focused))
		lines = append(lines, fmt.Sprintf("    Resolution: %dx%d", monitor.Width, monitor.Height))
		lines = append(lines, fmt.Sprintf("    Position: %d,%d", monitor.X, monitor.Y))
	}

	return strings.Join(lines, "\n")
}

// FormatMonitorSummary formats a summary of monitors
func (dm *DisplayMonitor) FormatMonitorSummary(monitors []MonitorInfo) string {
	if len(monitors) == 0 {
		return "No monitors"
	}

	var summaries []string
	for _, m := range monitors {
		summaries = append(summaries, fmt.Sprintf("%d (%dx%d+%d+%d)", m.Index, m.Width, m.Height, m.X, m.Y))
	}

	return strings.Join(summaries, ", ")
}
