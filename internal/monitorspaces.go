/**
 * Monitorspaces - per-monitor workspaces on a global-workspace desktop
 *
 * Application context that owns:
 * - The X connection and EWMH platform
 * - The workspace reconciler, configuration gate and hotkey controller
 * - The event source and environment polling
 * - Live configuration reload
 */

package monitorspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/ln64-git/monitorspaces/src/config"
	desktopmonitor "github.com/ln64-git/monitorspaces/src/features/desktop-monitor"
	gnomeenvironment "github.com/ln64-git/monitorspaces/src/features/gnome-environment"
	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

const refreshTimeout = 15 * time.Second

// App is created on enable and torn down on disable. Every long-lived
// instance hangs off it; nothing is kept in package variables.
type App struct {
	logger *utility.Logger
	config *config.Config
	viper  *viper.Viper
	runner utility.Runner

	mu         sync.RWMutex
	desktop    *desktopmonitor.DesktopIntegration
	probe      *gnomeenvironment.Probe
	gate       *workspaceswitcher.ConfigurationGate
	reconciler *workspaceswitcher.WorkspaceReconciler
	controller *workspaceswitcher.Controller
	events     *desktopmonitor.EventSource
	enabled    bool
}

// New creates an App. v may be nil when the configuration is not watched.
func New(logger *utility.Logger, cfg *config.Config, v *viper.Viper) *App {
	if logger == nil {
		logger = utility.GetLogger()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		logger: logger,
		config: cfg,
		viper:  v,
		runner: utility.NewShell(logger.With("shell")),
	}
}

// Enable connects to the display and wires every component
func (a *App) Enable(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled {
		return nil
	}

	a.logger.Info("Enabling monitorspaces...")

	if compositor := desktopmonitor.DetectCompositor(nil); compositor.HasPerOutputWorkspaces() {
		a.logger.Warn("%s already has per-output workspaces, windows may be moved twice", compositor)
	}

	desktop, err := desktopmonitor.Open(a.logger, a.runner)
	if err != nil {
		return fmt.Errorf("failed to open desktop: %w", err)
	}
	desktop.Sessions().CheckSession(ctx)

	a.probe = gnomeenvironment.NewProbe(a.logger.With("gnome"), a.runner)
	a.gate = workspaceswitcher.NewConfigurationGate(a.logger.With("gate"), a.probe, a.config.IncompatibleExtensions)
	a.gate.SetAutomaticSwitchingSetting(a.config.AutomaticSwitching)
	if err := a.gate.Refresh(ctx); err != nil {
		a.logger.Warn("Environment probe failed: %v", err)
	}

	a.desktop = desktop
	a.reconciler = workspaceswitcher.NewWorkspaceReconciler(a.logger.With("reconciler"), desktop.Platform(), a.gate)
	a.controller = workspaceswitcher.NewController(a.reconciler)
	a.events = desktopmonitor.NewEventSource(
		a.logger.With("events"),
		desktop.Connection(),
		desktop.Platform(),
		a,
		gnomeenvironment.NewWatcher(a.probe),
		a.config.ExtensionPollInterval,
	)

	if err := a.events.BindHotkeys(a.hotkeys()...); err != nil {
		a.teardown()
		return err
	}

	a.enabled = true
	a.logger.Info("Enabled: %d workspaces, %d monitors", a.reconciler.WorkspaceCount(), desktop.Displays().GetMonitorCount())
	return nil
}

// Disable releases hotkeys, stops the event source and closes the display.
// Safe to call when not enabled.
func (a *App) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return
	}
	a.teardown()
	a.enabled = false
	a.logger.Info("Disabled")
}

// teardown drops every component. Caller must hold a.mu.
func (a *App) teardown() {
	if a.events != nil {
		a.events.Close()
	}
	if a.desktop != nil {
		a.desktop.Close()
	}
	a.events = nil
	a.controller = nil
	a.reconciler = nil
	a.gate = nil
	a.probe = nil
	a.desktop = nil
}

// Run enables the app and processes events until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	if err := a.Enable(ctx); err != nil {
		return err
	}
	defer a.Disable()

	if a.viper != nil {
		config.Watch(a.viper, a.applyConfig, func(err error) {
			a.logger.Warn("Ignoring config change: %v", err)
		})
	}

	a.mu.RLock()
	events := a.events
	a.mu.RUnlock()

	return events.Run(ctx)
}

// hotkeys binds the two named shortcuts. The "next" shortcut moves up, as
// the shell extension always has.
func (a *App) hotkeys() []desktopmonitor.Hotkey {
	return []desktopmonitor.Hotkey{
		{Name: config.HotkeyNextName, Keys: a.config.HotkeyNext, Handler: a.handleUp},
		{Name: config.HotkeyPreviousName, Keys: a.config.HotkeyPrevious, Handler: a.handleDown},
	}
}

func (a *App) handleUp() {
	a.handleSwitch(workspaceswitcher.Up)
}

func (a *App) handleDown() {
	a.handleSwitch(workspaceswitcher.Down)
}

func (a *App) handleSwitch(direction workspaceswitcher.Direction) {
	a.mu.RLock()
	controller := a.controller
	a.mu.RUnlock()
	if controller == nil {
		return
	}
	if err := controller.Switch(direction); err != nil {
		a.logError("switch "+direction.String(), err)
	}
}

// ActiveWorkspaceChanged resynchronizes the monitors the user is not on
func (a *App) ActiveWorkspaceChanged() {
	a.mu.RLock()
	reconciler := a.reconciler
	a.mu.RUnlock()
	if reconciler == nil {
		return
	}
	if err := reconciler.Resync(); err != nil {
		a.logError("resync", err)
	}
}

// WindowActivatedWithFocus records the focus hint for the next resync
func (a *App) WindowActivatedWithFocus(window workspaceswitcher.WindowHandle) {
	a.mu.RLock()
	reconciler := a.reconciler
	a.mu.RUnlock()
	if reconciler == nil {
		return
	}
	reconciler.WindowActivatedWithFocus(window)
}

// ExtensionSetChanged re-probes the environment for the gate
func (a *App) ExtensionSetChanged() {
	a.mu.RLock()
	gate := a.gate
	a.mu.RUnlock()
	if gate == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := gate.Refresh(ctx); err != nil {
		a.logger.Warn("Environment probe failed: %v", err)
	}
}

// applyConfig takes a reloaded configuration. Hotkeys and the poll interval
// only change on restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	previous := a.config
	a.config = cfg
	gate := a.gate
	events := a.events
	a.mu.Unlock()

	if previous.HotkeyNext != cfg.HotkeyNext || previous.HotkeyPrevious != cfg.HotkeyPrevious {
		a.logger.Warn("Hotkey changes take effect after restart")
	}

	apply := func() {
		a.logger.SetLevel(utility.ParseLogLevel(string(cfg.EffectiveLogLevel())))
		if gate != nil {
			gate.SetAutomaticSwitchingSetting(cfg.AutomaticSwitching)
			gate.SetIncompatibleExtensions(cfg.IncompatibleExtensions)
		}
	}
	// Settings change between events, never during one
	if events == nil || !events.Do(apply) {
		apply()
	}

	if gate != nil {
		a.ExtensionSetChanged()
	}
	a.logger.Info("Configuration reloaded from %s", cfg.File)
}

// logError logs operation failures; an invalid workspace count is a skip,
// not a failure
func (a *App) logError(op string, err error) {
	if errors.Is(err, workspaceswitcher.ErrInvalidState) {
		a.logger.Warn("%s skipped: %v", op, err)
		return
	}
	a.logger.Error("%s failed: %v", op, err)
}

// ==================== One-shot commands ====================

// Switch performs a single directed switch on the focused monitor
func (a *App) Switch(ctx context.Context, direction workspaceswitcher.Direction) error {
	desktop, err := desktopmonitor.Open(a.logger, a.runner)
	if err != nil {
		return err
	}
	defer desktop.Close()

	reconciler := workspaceswitcher.NewWorkspaceReconciler(a.logger.With("reconciler"), desktop.Platform(), nil)
	return workspaceswitcher.NewController(reconciler).Switch(direction)
}

// Status describes the desktop and the switching gate
func (a *App) Status(ctx context.Context) (string, error) {
	desktop, err := desktopmonitor.Open(a.logger, a.runner)
	if err != nil {
		return "", err
	}
	defer desktop.Close()

	gate := workspaceswitcher.NewConfigurationGate(a.logger.With("gate"),
		gnomeenvironment.NewProbe(a.logger.With("gnome"), a.runner), a.config.IncompatibleExtensions)
	gate.SetAutomaticSwitchingSetting(a.config.AutomaticSwitching)
	if err := gate.Refresh(ctx); err != nil {
		a.logger.Debug("environment probe: %v", err)
	}

	lines := []string{
		desktop.GetFormattedStatus(ctx),
		"",
		"Switching:",
		"  " + gate.String(),
		fmt.Sprintf("  Automatic switching allowed: %t", gate.AutomaticSwitchingAllowed()),
		fmt.Sprintf("  %s: %s", config.HotkeyNextName, a.config.HotkeyNext),
		fmt.Sprintf("  %s: %s", config.HotkeyPreviousName, a.config.HotkeyPrevious),
	}
	return strings.Join(lines, "\n"), nil
}

// Monitors describes the physical heads
func (a *App) Monitors(ctx context.Context) (string, error) {
	desktop, err := desktopmonitor.Open(a.logger, a.runner)
	if err != nil {
		return "", err
	}
	defer desktop.Close()

	return desktop.GetDisplayStatus() + "\n\n  " + desktop.GetDesktopSummary(ctx), nil
}
