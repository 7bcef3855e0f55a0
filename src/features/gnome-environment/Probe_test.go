package gnomeenvironment

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/ln64-git/monitorspaces/src/utility"
)

// mockRunner answers commands from a map keyed by "name arg1 arg2"
type mockRunner struct {
	outputs map[string]*utility.Result
	errs    map[string]error
	calls   []string
}

func (m *mockRunner) Run(ctx context.Context, opts *utility.ExecOptions, name string, args ...string) (*utility.Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	m.calls = append(m.calls, key)
	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	if res, ok := m.outputs[key]; ok {
		res.Command = key
		return res, nil
	}
	return nil, utility.ErrCommandNotFound
}

func newProbe(r *mockRunner) *Probe {
	return NewProbe(utility.NewWriterLogger(io.Discard, utility.DEBUG), r)
}

func TestEnabledExtensions(t *testing.T) {
	r := &mockRunner{outputs: map[string]*utility.Result{
		"gnome-extensions list --enabled": {Stdout: "ubuntu-dock@ubuntu.com\n\n  appindicatorsupport@rgcjonas.gmail.com \n"},
	}}

	got, err := newProbe(r).EnabledExtensions(context.Background())
	if err != nil {
		t.Fatalf("EnabledExtensions: %v", err)
	}
	want := []string{"ubuntu-dock@ubuntu.com", "appindicatorsupport@rgcjonas.gmail.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnabledExtensions = %v, want %v", got, want)
	}
}

func TestMissingToolsMeanDefaults(t *testing.T) {
	p := newProbe(&mockRunner{})

	exts, err := p.EnabledExtensions(context.Background())
	if err != nil || exts != nil {
		t.Errorf("EnabledExtensions = %v, %v; want nil, nil", exts, err)
	}
	dynamic, err := p.DynamicWorkspaces(context.Background())
	if err != nil || dynamic {
		t.Errorf("DynamicWorkspaces = %t, %v; want false, nil", dynamic, err)
	}
}

func TestDynamicWorkspaces(t *testing.T) {
	tests := []struct {
		name    string
		result  *utility.Result
		want    bool
		wantErr bool
	}{
		{"enabled", &utility.Result{Stdout: "true"}, true, false},
		{"disabled", &utility.Result{Stdout: "false\n"}, false, false},
		{"garbage", &utility.Result{Stdout: "maybe"}, false, true},
		{"schema missing", &utility.Result{ExitCode: 1, Stderr: "No such schema"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockRunner{outputs: map[string]*utility.Result{
				"gsettings get org.gnome.mutter dynamic-workspaces": tt.result,
			}}
			got, err := newProbe(r).DynamicWorkspaces(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DynamicWorkspaces = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestWatcherChanged(t *testing.T) {
	r := &mockRunner{outputs: map[string]*utility.Result{
		"gnome-extensions list --enabled":                   {Stdout: "a@x\nb@x"},
		"gsettings get org.gnome.mutter dynamic-workspaces": {Stdout: "false"},
	}}
	w := NewWatcher(newProbe(r))
	ctx := context.Background()

	steps := []struct {
		extensions string
		dynamic    string
		want       bool
	}{
		{"a@x\nb@x", "false", false}, // baseline
		{"b@x\na@x", "false", false}, // reordered
		{"a@x", "false", true},
		{"a@x", "true", true},
		{"a@x", "true", false},
	}
	for i, step := range steps {
		r.outputs["gnome-extensions list --enabled"].Stdout = step.extensions
		r.outputs["gsettings get org.gnome.mutter dynamic-workspaces"].Stdout = step.dynamic

		got, err := w.Changed(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d: Changed = %t, want %t", i, got, step.want)
		}
	}
}

func TestWatcherPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	r := &mockRunner{errs: map[string]error{"gnome-extensions list --enabled": boom}}
	w := NewWatcher(newProbe(r))

	if _, err := w.Changed(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
