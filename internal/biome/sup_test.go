package biome

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	biomecierrors "github.com/biome-sh/biomeci/internal/errors"
	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	return Paths{
		Root:   filepath.Join(t.TempDir(), "hab"),
		BinDir: t.TempDir(),
		Home:   t.TempDir(),
	}
}

func newTestSupervisor(t *testing.T) (*Supervisor, *run.FakeRunner, Paths) {
	t.Helper()
	runner := run.NewFakeRunner()
	paths := testPaths(t)
	sup := NewSupervisor(runner, output.NewSplogWriter(&bytes.Buffer{}, false), paths)
	return sup, runner, paths
}

func TestSupervisorStart(t *testing.T) {
	t.Parallel()

	t.Run("becomes ready when the control secret appears", func(t *testing.T) {
		t.Parallel()
		sup, runner, paths := newTestSupervisor(t)
		sup.SetReadyTimeout(2 * time.Second)

		require.NoError(t, os.MkdirAll(paths.SupDir(), 0755))
		require.NoError(t, os.WriteFile(paths.CtlSecretFile(), []byte("secret"), 0600))

		require.NoError(t, sup.Start(context.Background(), []string{"HAB_NONINTERACTIVE=true"}))

		var sawLaunch, sawChmod bool
		for _, call := range runner.Calls() {
			line := call.String()
			if call.Kind == "detached" && line == "sudo env HAB_NONINTERACTIVE=true bio sup run" {
				sawLaunch = true
			}
			if line == "sudo chmod a+r "+paths.CtlSecretFile() {
				sawChmod = true
			}
		}
		require.True(t, sawLaunch)
		require.True(t, sawChmod)
	})

	t.Run("times out when the control secret never appears", func(t *testing.T) {
		t.Parallel()
		sup, _, _ := newTestSupervisor(t)
		sup.SetReadyTimeout(100 * time.Millisecond)

		err := sup.Start(context.Background(), nil)
		require.ErrorIs(t, err, biomecierrors.ErrSupervisorTimeout)
	})

	t.Run("cancellation is reported as cancellation, not a timeout", func(t *testing.T) {
		t.Parallel()
		sup, _, _ := newTestSupervisor(t)
		sup.SetReadyTimeout(10 * time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := sup.Start(ctx, nil)
		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, biomecierrors.ErrSupervisorTimeout)
	})

	t.Run("times out when status never succeeds", func(t *testing.T) {
		t.Parallel()
		sup, runner, paths := newTestSupervisor(t)
		sup.SetReadyTimeout(100 * time.Millisecond)

		require.NoError(t, os.MkdirAll(paths.SupDir(), 0755))
		require.NoError(t, os.WriteFile(paths.CtlSecretFile(), []byte("secret"), 0600))
		runner.Respond("bio sup status", "", errors.New("connection refused"))

		err := sup.Start(context.Background(), nil)
		require.ErrorIs(t, err, biomecierrors.ErrSupervisorTimeout)
	})
}

func TestLoadServices(t *testing.T) {
	t.Parallel()

	t.Run("service options are passed through as arguments", func(t *testing.T) {
		t.Parallel()
		sup, runner, _ := newTestSupervisor(t)

		err := sup.LoadServices(context.Background(), []string{"HAB_NONINTERACTIVE=true"},
			[]string{"core/nginx --strategy at-once --group prod"})
		require.NoError(t, err)

		lines := runner.CallLines()
		require.Len(t, lines, 1)
		require.Equal(t,
			"sudo env HAB_NONINTERACTIVE=true bio svc load core/nginx --strategy at-once --group prod",
			lines[0])
	})

	t.Run("no services means no invocations", func(t *testing.T) {
		t.Parallel()
		sup, runner, _ := newTestSupervisor(t)

		require.NoError(t, sup.LoadServices(context.Background(), nil, nil))
		require.Empty(t, runner.Calls())
	})
}
