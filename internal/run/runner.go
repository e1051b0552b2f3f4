// Package run provides execution of external commands with captured output.
package run

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	biomecierrors "github.com/biome-sh/biomeci/internal/errors"
)

// DefaultCommandTimeout is the default timeout for external commands. Package
// installs can pull large artifacts from the builder, so it is generous.
const DefaultCommandTimeout = 10 * time.Minute

// Runner defines the interface for external command execution used by the
// setup and teardown routines. This allows them to be driven against both
// real processes and a scriptable fake in tests.
type Runner interface {
	// Run executes a command and returns its trimmed stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// Output executes a command for callers that need the value it prints
	// rather than only its exit status. Identical to Run; named for intent.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// Sudo executes a command with elevated privileges. Entries in env
	// ("KEY=VALUE") are forwarded explicitly across the elevation boundary,
	// since sudo may otherwise sanitize the environment.
	Sudo(ctx context.Context, env []string, args ...string) (string, error)

	// StartDetached launches a command in its own session so it survives
	// this process, with stdout and stderr redirected to logPath. The
	// process is not waited on.
	StartDetached(name, logPath string, args ...string) error

	// LookPath searches for an executable on the search path.
	LookPath(name string) (string, error)
}

// CommandRunner handles execution of external commands
type CommandRunner struct{}

// NewRunner creates a Runner backed by real process execution.
func NewRunner() Runner {
	return &CommandRunner{}
}

// Run executes a command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, name, args...)
}

// Output executes a command and returns the trimmed output
func (r *CommandRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, name, args...)
}

// Sudo executes a command elevated via sudo with env explicitly forwarded
func (r *CommandRunner) Sudo(ctx context.Context, env []string, args ...string) (string, error) {
	sudoArgs := make([]string, 0, len(env)+len(args)+1)
	if len(env) > 0 {
		sudoArgs = append(sudoArgs, "env")
		sudoArgs = append(sudoArgs, env...)
	}
	sudoArgs = append(sudoArgs, args...)
	return r.run(ctx, "sudo", sudoArgs...)
}

// LookPath searches for an executable on the search path
func (r *CommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// StartDetached launches a command in its own session with output redirected
// to logPath. The child keeps its log file descriptor, so it can outlive us.
func (r *CommandRunner) StartDetached(name, logPath string, args ...string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return biomecierrors.NewCommandError(name, args, "", "", err)
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return biomecierrors.NewCommandError(name, args, "", "", err)
	}

	// Reap the child if it does exit, without blocking anyone on it.
	go func() { _ = cmd.Wait() }()

	return nil
}

func (r *CommandRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", biomecierrors.NewCommandError(name, args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", biomecierrors.NewCommandError(name, args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
