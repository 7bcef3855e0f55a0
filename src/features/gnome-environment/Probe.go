/**
 * GNOME environment probe - enabled shell extensions and the mutter
 * dynamic-workspaces preference
 */

package gnomeenvironment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ln64-git/monitorspaces/src/utility"
)

const probeTimeout = 5 * time.Second

// Probe queries GNOME settings through the command line tools
type Probe struct {
	logger *utility.Logger
	runner utility.Runner
}

// NewProbe creates a probe running commands through runner
func NewProbe(logger *utility.Logger, runner utility.Runner) *Probe {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &Probe{logger: logger, runner: runner}
}

// EnabledExtensions lists the UUIDs of enabled shell extensions. A missing
// gnome-extensions binary means no extensions.
func (p *Probe) EnabledExtensions(ctx context.Context) ([]string, error) {
	result, err := p.run(ctx, "gnome-extensions", "list", "--enabled")
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	var uuids []string
	for _, line := range strings.Split(result.Stdout, "\n") {
		if uuid := strings.TrimSpace(line); uuid != "" {
			uuids = append(uuids, uuid)
		}
	}
	return uuids, nil
}

// DynamicWorkspaces reads org.gnome.mutter dynamic-workspaces. A missing
// gsettings binary means static workspaces.
func (p *Probe) DynamicWorkspaces(ctx context.Context) (bool, error) {
	result, err := p.run(ctx, "gsettings", "get", "org.gnome.mutter", "dynamic-workspaces")
	if err != nil || result == nil {
		return false, err
	}
	return parseGVariantBool(result.Stdout)
}

// run executes a probe command. A nil result with nil error means the tool
// is not installed.
func (p *Probe) run(ctx context.Context, name string, args ...string) (*utility.Result, error) {
	result, err := p.runner.Run(ctx, &utility.ExecOptions{Timeout: probeTimeout}, name, args...)
	if errors.Is(err, utility.ErrCommandNotFound) {
		p.logger.Debug("%s not installed", name)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("%s exited with %d: %s", result.Command, result.ExitCode, result.Stderr)
	}
	return result, nil
}

func parseGVariantBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected boolean %q", s)
	}
}

// Snapshot is the probed environment at one point in time
type Snapshot struct {
	Extensions        []string
	DynamicWorkspaces bool
}

// Equal compares snapshots ignoring extension order
func (s Snapshot) Equal(other Snapshot) bool {
	if s.DynamicWorkspaces != other.DynamicWorkspaces || len(s.Extensions) != len(other.Extensions) {
		return false
	}
	a := sortedCopy(s.Extensions)
	b := sortedCopy(other.Extensions)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// Watcher detects changes between successive probes
type Watcher struct {
	probe interface {
		EnabledExtensions(ctx context.Context) ([]string, error)
		DynamicWorkspaces(ctx context.Context) (bool, error)
	}

	mu   sync.Mutex
	last *Snapshot
}

// NewWatcher creates a watcher. The first Changed call only records a baseline.
func NewWatcher(probe *Probe) *Watcher {
	return &Watcher{probe: probe}
}

// Changed probes the environment and reports whether it differs from the
// previous probe
func (w *Watcher) Changed(ctx context.Context) (bool, error) {
	extensions, err := w.probe.EnabledExtensions(ctx)
	if err != nil {
		return false, err
	}
	dynamic, err := w.probe.DynamicWorkspaces(ctx)
	if err != nil {
		return false, err
	}
	current := Snapshot{Extensions: extensions, DynamicWorkspaces: dynamic}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.last == nil {
		w.last = &current
		return false, nil
	}
	if w.last.Equal(current) {
		return false, nil
	}
	w.last = &current
	return true, nil
}
