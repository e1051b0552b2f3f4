package biome

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	biomecierrors "github.com/biome-sh/biomeci/internal/errors"
	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

// DefaultReadyTimeout bounds how long supervisor startup may take before the
// wait gives up. The source this replaces polled forever.
const DefaultReadyTimeout = 60 * time.Second

// Supervisor manages startup of the detached bio supervisor and loading of
// services into it.
type Supervisor struct {
	runner       run.Runner
	splog        *output.Splog
	paths        Paths
	readyTimeout time.Duration
}

// NewSupervisor creates a Supervisor with the default readiness timeout.
func NewSupervisor(r run.Runner, splog *output.Splog, paths Paths) *Supervisor {
	return &Supervisor{
		runner:       r,
		splog:        splog,
		paths:        paths,
		readyTimeout: DefaultReadyTimeout,
	}
}

// SetReadyTimeout overrides the readiness timeout, for tests.
func (s *Supervisor) SetReadyTimeout(d time.Duration) {
	s.readyTimeout = d
}

// Start launches the supervisor detached from this process and waits until it
// is ready to accept control commands. The supervisor deliberately survives
// the parent: later job steps talk to it.
func (s *Supervisor) Start(ctx context.Context, env []string) error {
	if _, err := s.runner.Sudo(ctx, nil, "mkdir", "-p", s.paths.SupDir()); err != nil {
		return fmt.Errorf("create supervisor dir: %w", err)
	}

	s.splog.Info("Starting supervisor, logging to %s", s.paths.SupLogFile())
	args := append([]string{"env"}, env...)
	args = append(args, "bio", "sup", "run")
	if err := s.runner.StartDetached("sudo", s.paths.SupLogFile(), args...); err != nil {
		return fmt.Errorf("launch supervisor: %w", err)
	}

	if err := s.waitForCtlSecret(ctx); err != nil {
		return err
	}

	// Unprivileged processes need the control secret to talk to the supervisor.
	if _, err := s.runner.Sudo(ctx, nil, "chmod", "a+r", s.paths.CtlSecretFile()); err != nil {
		return fmt.Errorf("relax control secret permissions: %w", err)
	}

	if err := s.waitForStatus(ctx); err != nil {
		return err
	}

	s.splog.Info("Supervisor is ready")
	return nil
}

// LoadServices loads each service into the supervisor sequentially, one
// invocation per service line, failing fast on the first load that fails.
// A service line may embed its own options after the package identifier.
func (s *Supervisor) LoadServices(ctx context.Context, env, services []string) error {
	for _, svc := range services {
		s.splog.Info("Loading service %s", svc)
		args := append([]string{"bio", "svc", "load"}, strings.Fields(svc)...)
		if _, err := s.runner.Sudo(ctx, env, args...); err != nil {
			return fmt.Errorf("load service %q: %w", svc, err)
		}
	}
	return nil
}

// waitForCtlSecret waits for the control-secret file to appear, signaling the
// supervisor has initialized.
func (s *Supervisor) waitForCtlSecret(ctx context.Context) error {
	op := func() error {
		if _, err := os.Stat(s.paths.CtlSecretFile()); err != nil {
			return fmt.Errorf("control secret not present: %w", err)
		}
		return nil
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return biomecierrors.NewSupervisorTimeoutError("supervisor control secret")
	}
	return nil
}

// waitForStatus waits until a status query against the supervisor succeeds.
func (s *Supervisor) waitForStatus(ctx context.Context) error {
	op := func() error {
		_, err := s.runner.Run(ctx, "bio", "sup", "status")
		return err
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return biomecierrors.NewSupervisorTimeoutError("supervisor status")
	}
	return nil
}

func (s *Supervisor) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = s.readyTimeout
	return backoff.WithContext(b, ctx)
}
