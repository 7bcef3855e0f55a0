package utility

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandNotFound is returned when the requested binary is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// Runner executes external commands. Shell is the real implementation;
// tests substitute a scripted one.
type Runner interface {
	Run(ctx context.Context, opts *ExecOptions, name string, args ...string) (*Result, error)
}

// Shell provides command execution capabilities
type Shell struct {
	logger *Logger
}

// Result contains the output of a command execution
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
	Command  string
}

// ExecOptions configures command execution
type ExecOptions struct {
	Timeout time.Duration
	Env     map[string]string
	WorkDir string
}

const defaultTimeout = 30 * time.Second

// NewShell creates a new Shell executor
func NewShell(logger *Logger) *Shell {
	if logger == nil {
		logger = GetLogger()
	}
	return &Shell{logger: logger}
}

// Run executes name with args directly (no shell interpolation) and
// captures its output. A non-zero exit status is reported through
// Result.ExitCode, not as an error.
func (s *Shell) Run(ctx context.Context, opts *ExecOptions, name string, args ...string) (*Result, error) {
	if opts == nil {
		opts = &ExecOptions{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	command := strings.TrimSpace(name + " " + strings.Join(args, " "))

	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), envMapToSlice(opts.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Command:  command,
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		return result, fmt.Errorf("command %q timed out after %v", command, timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			s.logger.Debug("%s exited with %d: %s", command, result.ExitCode, result.Stderr)
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("command %q failed: %w", command, err)
	}

	return result, nil
}

func envMapToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for key, value := range env {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	return result
}
