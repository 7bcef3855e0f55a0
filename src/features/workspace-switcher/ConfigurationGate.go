package workspaceswitcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/ln64-git/monitorspaces/src/utility"
)

// EnvironmentProbe reports the desktop settings that interfere with
// automatic switching
type EnvironmentProbe interface {
	EnabledExtensions(ctx context.Context) ([]string, error)
	DynamicWorkspaces(ctx context.Context) (bool, error)
}

// ConfigurationGate decides whether resync may run after a global
// workspace change
type ConfigurationGate struct {
	logger *utility.Logger
	probe  EnvironmentProbe

	mu                         sync.RWMutex
	incompatibleExtensions     []string
	automaticSwitchingSetting  bool
	conflictingExtensionActive bool
	dynamicWorkspacesEnabled   bool
}

// NewConfigurationGate creates a gate. probe may be nil, in which case
// Refresh leaves both signals false.
func NewConfigurationGate(logger *utility.Logger, probe EnvironmentProbe, incompatible []string) *ConfigurationGate {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &ConfigurationGate{
		logger:                    logger,
		probe:                     probe,
		incompatibleExtensions:    append([]string(nil), incompatible...),
		automaticSwitchingSetting: true,
	}
}

// Refresh recomputes the conflicting-extension and dynamic-workspace signals.
// Probe failures leave the previous value of the affected signal in place.
func (g *ConfigurationGate) Refresh(ctx context.Context) error {
	if g.probe == nil {
		return nil
	}

	var firstErr error

	enabled, err := g.probe.EnabledExtensions(ctx)
	if err != nil {
		firstErr = fmt.Errorf("list enabled extensions: %w", err)
	}
	dynamic, dynErr := g.probe.DynamicWorkspaces(ctx)
	if dynErr != nil && firstErr == nil {
		firstErr = fmt.Errorf("read dynamic workspaces: %w", dynErr)
	}

	g.mu.Lock()
	if err == nil {
		g.conflictingExtensionActive = containsAny(enabled, g.incompatibleExtensions)
	}
	if dynErr == nil {
		g.dynamicWorkspacesEnabled = dynamic
	}
	g.mu.Unlock()

	g.logger.Debug("%s", g.String())
	return firstErr
}

// AutomaticSwitchingAllowed always returns true. The computed signals are
// reported by String but not enforced.
func (g *ConfigurationGate) AutomaticSwitchingAllowed() bool {
	return true
}

// SetAutomaticSwitchingSetting records the persisted AUTOMATIC_SWITCHING value
func (g *ConfigurationGate) SetAutomaticSwitchingSetting(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.automaticSwitchingSetting = enabled
}

// SetIncompatibleExtensions replaces the list of conflicting extension UUIDs.
// Takes effect on the next Refresh.
func (g *ConfigurationGate) SetIncompatibleExtensions(uuids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.incompatibleExtensions = append([]string(nil), uuids...)
}

// ConflictingExtensionActive reports the last computed extension signal
func (g *ConfigurationGate) ConflictingExtensionActive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conflictingExtensionActive
}

// DynamicWorkspacesEnabled reports the last computed dynamic-workspaces signal
func (g *ConfigurationGate) DynamicWorkspacesEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dynamicWorkspacesEnabled
}

func (g *ConfigurationGate) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("incompatibleExtensionsEnabled: %t dynamicWorkspacesEnabled: %t automaticSwitchingSetting: %t",
		g.conflictingExtensionActive, g.dynamicWorkspacesEnabled, g.automaticSwitchingSetting)
}

func containsAny(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}
