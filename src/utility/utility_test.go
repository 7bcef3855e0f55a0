package utility

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WARN)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN were written:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("missing messages:\n%s", out)
	}
}

func TestLoggerWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf, INFO)
	child := root.With("reconciler")

	child.Debug("before")
	root.SetLevel(DEBUG)
	child.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("debug written before level change:\n%s", out)
	}
	if !strings.Contains(out, "[DEBUG] [reconciler] after") {
		t.Errorf("child did not follow level change:\n%s", out)
	}
	if child.Level() != DEBUG {
		t.Errorf("child.Level() = %v, want DEBUG", child.Level())
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"debug":   DEBUG,
		" INFO ":  INFO,
		"warning": WARN,
		"error":   ERROR,
		"bogus":   INFO,
	} {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileLoggerRotates(t *testing.T) {
	dir := t.TempDir()

	first := NewLoggerInDir(ModeFile, INFO, dir)
	first.Info("first run")
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := NewLoggerInDir(ModeFile, INFO, dir)
	second.Info("second run")
	defer second.Close()

	archived, err := os.ReadFile(filepath.Join(dir, "archive", "monitorspaces-1.log"))
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if !strings.Contains(string(archived), "first run") {
		t.Errorf("archive = %q", archived)
	}

	files := second.ListLogFiles()
	if len(files) != 2 || filepath.Base(files[0]) != "current.log" {
		t.Errorf("ListLogFiles = %v", files)
	}
}

func TestShellRun(t *testing.T) {
	sh := NewShell(NewWriterLogger(&bytes.Buffer{}, DEBUG))
	ctx := context.Background()

	res, err := sh.Run(ctx, nil, "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "out" || res.Stderr != "err" || res.ExitCode != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	res, err = sh.Run(ctx, nil, "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("non-zero exit returned error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}

	res, err = sh.Run(ctx, &ExecOptions{Env: map[string]string{"MS_TEST": "yes"}}, "sh", "-c", "echo $MS_TEST")
	if err != nil || res.Stdout != "yes" {
		t.Errorf("env not passed: %+v, %v", res, err)
	}
}

func TestShellRunMissingCommand(t *testing.T) {
	sh := NewShell(NewWriterLogger(&bytes.Buffer{}, DEBUG))
	_, err := sh.Run(context.Background(), nil, "monitorspaces-no-such-binary")
	if !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("err = %v, want ErrCommandNotFound", err)
	}
}

func TestShellRunTimeout(t *testing.T) {
	sh := NewShell(NewWriterLogger(&bytes.Buffer{}, DEBUG))
	res, err := sh.Run(context.Background(), &ExecOptions{Timeout: 50 * time.Millisecond}, "sleep", "5")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if res == nil || !res.TimedOut {
		t.Errorf("result = %+v, want TimedOut", res)
	}
}

func TestSetDefaultConcurrentWithGetLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	replacement := NewWriterLogger(&buf, INFO)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if GetLogger() == nil {
					t.Error("GetLogger returned nil")
					return
				}
			}
		}()
	}
	SetDefault(replacement)
	wg.Wait()

	if GetLogger() != replacement {
		t.Fatal("SetDefault did not replace the process-wide logger")
	}
	GetLogger().Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("output = %q", buf.String())
	}
}
