// Package errors provides sentinel errors and custom error types for biomeci.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrSupervisorTimeout indicates that the supervisor did not become ready in time
	ErrSupervisorTimeout = errors.New("supervisor readiness timeout")
)

// PhaseError wraps a failure with the name of the setup/teardown phase it
// occurred in. Every phase failure surfaced to the job carries one.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// NewPhaseError creates a new PhaseError
func NewPhaseError(phase string, err error) *PhaseError {
	return &PhaseError{Phase: phase, Err: err}
}

// SupervisorTimeoutError represents a supervisor that never signaled readiness
type SupervisorTimeoutError struct {
	Waiting string
}

func (e *SupervisorTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s", e.Waiting)
}

// Is returns true if the target error is ErrSupervisorTimeout
func (e *SupervisorTimeoutError) Is(target error) bool {
	return target == ErrSupervisorTimeout
}

// NewSupervisorTimeoutError creates a new SupervisorTimeoutError
func NewSupervisorTimeoutError(waiting string) *SupervisorTimeoutError {
	return &SupervisorTimeoutError{Waiting: waiting}
}

// CommandError represents an error from an external command execution
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
