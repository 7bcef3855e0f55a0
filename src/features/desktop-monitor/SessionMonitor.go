/**
 * Session monitor - systemd-logind session type and display checks
 */

package desktopmonitor

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ln64-git/monitorspaces/src/utility"
)

var loginctlProperty = regexp.MustCompile(`^([^=]+)=(.*)$`)

// SessionMonitor reads the logind session the daemon runs in
type SessionMonitor struct {
	logger *utility.Logger
	runner utility.Runner
	getenv func(string) string
}

// NewSessionMonitor creates a session monitor running loginctl through runner
func NewSessionMonitor(logger *utility.Logger, runner utility.Runner) *SessionMonitor {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &SessionMonitor{logger: logger, runner: runner, getenv: os.Getenv}
}

// GetSessionInfo gets current session information, falling back to the
// environment when loginctl is unavailable
func (sm *SessionMonitor) GetSessionInfo(ctx context.Context) *SessionInfo {
	sessionID := sm.getenv("XDG_SESSION_ID")
	if sessionID == "" {
		sm.logger.Debug("XDG_SESSION_ID not set, using environment only")
		return sm.parseLoginctlOutput("")
	}

	result, err := sm.runner.Run(ctx, &utility.ExecOptions{Timeout: 5 * time.Second},
		"loginctl", "show-session", sessionID)
	if err != nil || result.ExitCode != 0 {
		sm.logger.Debug("loginctl show-session failed: %v", err)
		return sm.parseLoginctlOutput("")
	}

	return sm.parseLoginctlOutput(result.Stdout)
}

// parseLoginctlOutput parses loginctl output into SessionInfo
func (sm *SessionMonitor) parseLoginctlOutput(output string) *SessionInfo {
	props := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		matches := loginctlProperty.FindStringSubmatch(line)
		if len(matches) == 3 {
			props[strings.TrimSpace(matches[1])] = strings.TrimSpace(matches[2])
		}
	}

	return &SessionInfo{
		SessionID: firstNonEmpty(props["Id"], sm.getenv("XDG_SESSION_ID"), "unknown"),
		User:      firstNonEmpty(props["Name"], sm.getenv("USER"), "unknown"),
		Seat:      firstNonEmpty(props["Seat"], "seat0"),
		Type:      strings.ToLower(firstNonEmpty(props["Type"], sm.getenv("XDG_SESSION_TYPE"), "unknown")),
		State:     firstNonEmpty(props["State"], "unknown"),
		Active:    props["Active"] == "yes",
		Display:   firstNonEmpty(props["Display"], sm.getenv("DISPLAY")),
	}
}

// CheckSession logs why workspace switching may not see every window
func (sm *SessionMonitor) CheckSession(ctx context.Context) *SessionInfo {
	info := sm.GetSessionInfo(ctx)
	switch {
	case info.Type == "wayland" && sm.getenv("DISPLAY") == "":
		sm.logger.Warn("Wayland session without an X display, nothing to manage")
	case info.Type == "wayland":
		sm.logger.Warn("Wayland session: only XWayland windows are visible over EWMH")
	case info.Type == "tty":
		sm.logger.Warn("Running on a TTY session")
	}
	return info
}

// FormatSessionInfo formats session info for display
func (sm *SessionMonitor) FormatSessionInfo(info *SessionInfo) string {
	lines := []string{
		"Session Information:",
		"  Session ID: " + info.SessionID,
		"  User: " + info.User,
		"  Seat: " + info.Seat,
		"  Type: " + info.Type,
		"  State: " + info.State,
		"  Active: " + boolToYesNo(info.Active),
	}

	if info.Display != "" {
		lines = append(lines, "  Display: "+info.Display)
	}

	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolToYesNo converts bool to "yes"/"no"
func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
