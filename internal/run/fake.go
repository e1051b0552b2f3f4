package run

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// Call records a single command execution observed by the FakeRunner.
type Call struct {
	Kind string // "run", "sudo", "detached"
	Name string
	Args []string
	Env  []string
}

// String renders the call the way it would appear on a shell command line.
func (c Call) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// FakeRunner is a scriptable Runner for testing. Responses are keyed by a
// command-line substring; the first registered pattern that matches wins.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses []fakeResponse
	binaries  map[string]string
}

type fakeResponse struct {
	pattern string
	output  string
	err     error
}

// NewFakeRunner creates a new FakeRunner with no binaries on its path.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{binaries: make(map[string]string)}
}

// Respond registers a canned response for command lines containing pattern.
func (f *FakeRunner) Respond(pattern, output string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{pattern: pattern, output: output, err: err})
}

// AddBinary makes LookPath succeed for name at the given path.
func (f *FakeRunner) AddBinary(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binaries[name] = path
}

// Calls returns a copy of all recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CallLines returns all recorded calls rendered as command lines.
func (f *FakeRunner) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

func (f *FakeRunner) dispatch(call Call) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	line := call.String()
	for _, r := range f.responses {
		if strings.Contains(line, r.pattern) {
			return r.output, r.err
		}
	}
	return "", nil
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	return f.dispatch(Call{Kind: "run", Name: name, Args: args})
}

// Output implements Runner.
func (f *FakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	return f.dispatch(Call{Kind: "run", Name: name, Args: args})
}

// Sudo implements Runner.
func (f *FakeRunner) Sudo(_ context.Context, env []string, args ...string) (string, error) {
	sudoArgs := make([]string, 0, len(env)+len(args)+1)
	if len(env) > 0 {
		sudoArgs = append(sudoArgs, "env")
		sudoArgs = append(sudoArgs, env...)
	}
	sudoArgs = append(sudoArgs, args...)
	return f.dispatch(Call{Kind: "sudo", Name: "sudo", Args: sudoArgs, Env: env})
}

// StartDetached implements Runner.
func (f *FakeRunner) StartDetached(name, logPath string, args ...string) error {
	_, err := f.dispatch(Call{Kind: "detached", Name: name, Args: args})
	return err
}

// LookPath implements Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path, ok := f.binaries[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}
