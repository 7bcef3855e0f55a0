package workspaceswitcher

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfigurationGateAlwaysAllows(t *testing.T) {
	probe := &fakeProbe{
		extensions: []string{"dash-to-dock@micxgx.gmail.com", "other@example.com"},
		dynamic:    true,
	}
	g := NewConfigurationGate(testLogger(), probe, []string{"dash-to-dock@micxgx.gmail.com"})
	g.SetAutomaticSwitchingSetting(false)

	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !g.ConflictingExtensionActive() {
		t.Error("ConflictingExtensionActive = false, want true")
	}
	if !g.DynamicWorkspacesEnabled() {
		t.Error("DynamicWorkspacesEnabled = false, want true")
	}
	if !g.AutomaticSwitchingAllowed() {
		t.Error("AutomaticSwitchingAllowed = false, want true")
	}
}

func TestConfigurationGateRefreshRecomputes(t *testing.T) {
	probe := &fakeProbe{extensions: []string{"ubuntu-dock@ubuntu.com"}}
	g := NewConfigurationGate(testLogger(), probe, []string{"ubuntu-dock@ubuntu.com"})

	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !g.ConflictingExtensionActive() {
		t.Fatal("expected conflicting extension")
	}

	probe.extensions = nil
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if g.ConflictingExtensionActive() {
		t.Error("conflict still reported after extension was disabled")
	}

	g.SetIncompatibleExtensions([]string{"x@y"})
	probe.extensions = []string{"x@y"}
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !g.ConflictingExtensionActive() {
		t.Error("updated incompatible list not applied")
	}
	if probe.calls != 3 {
		t.Errorf("probe called %d times, want 3", probe.calls)
	}
}

func TestConfigurationGateProbeError(t *testing.T) {
	probe := &fakeProbe{extensions: []string{"ubuntu-dock@ubuntu.com"}}
	g := NewConfigurationGate(testLogger(), probe, []string{"ubuntu-dock@ubuntu.com"})
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	boom := errors.New("boom")
	probe.extErr = boom
	probe.extensions = nil
	probe.dynamic = true

	if err := g.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !g.ConflictingExtensionActive() {
		t.Error("failed probe cleared the previous extension signal")
	}
	if !g.DynamicWorkspacesEnabled() {
		t.Error("dynamic signal not updated when only the extension probe failed")
	}
}

func TestConfigurationGateWithoutProbe(t *testing.T) {
	g := NewConfigurationGate(testLogger(), nil, nil)
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	s := g.String()
	for _, want := range []string{
		"incompatibleExtensionsEnabled: false",
		"dynamicWorkspacesEnabled: false",
		"automaticSwitchingSetting: true",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
