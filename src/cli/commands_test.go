package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ln64-git/monitorspaces/src/config"
	"github.com/ln64-git/monitorspaces/src/utility"
)

func TestCommandTree(t *testing.T) {
	c := NewCLI("1.2.3", utility.NewWriterLogger(&bytes.Buffer{}, utility.INFO))
	root := c.CreateCommands()

	want := []string{"config", "down", "monitors", "run", "status", "up"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.Version != "1.2.3" {
		t.Errorf("Version = %q", root.Version)
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	if err := os.WriteFile(path, []byte("AUTOMATIC_SWITCHING=false\nEXTENSION_POLL_INTERVAL=90s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCLI("test", utility.NewWriterLogger(&bytes.Buffer{}, utility.INFO))
	root := c.CreateCommands()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--config", path, "--debug"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"File: " + path,
		"Log Level: debug",
		"Automatic Switching: No",
		"Extension Poll Interval: 1.5m",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if c.Logger().Level() != utility.DEBUG {
		t.Errorf("logger level = %v, want DEBUG", c.Logger().Level())
	}
}

func TestConfigCommandBadFile(t *testing.T) {
	c := NewCLI("test", utility.NewWriterLogger(&bytes.Buffer{}, utility.INFO))
	root := c.CreateCommands()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "--config", filepath.Join(t.TempDir(), "missing.env")})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestFormatConfigWithoutFile(t *testing.T) {
	out := formatConfig(config.Default())
	if !strings.Contains(out, "(none, defaults and environment only)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, config.HotkeyNextName+": Mod4-Mod1-Up") {
		t.Errorf("missing next hotkey:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{10 * time.Second, "10.0s"},
		{90 * time.Second, "1.5m"},
		{2 * time.Hour, "2.0h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
