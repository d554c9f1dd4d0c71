package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
)

const testRef = model.TrackReference("https://open.spotify.com/track/aaa111")

// testSettings returns settings tuned for synchronous tests: no delays and
// a 1 KiB corruption threshold so fixtures stay small.
func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.OutputDir = t.TempDir()
	s.RetryDelaySec = 0
	s.SettleDelaySec = 0
	s.MinFileSizeKB = 1
	return s
}

func writeArtifact(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("a"), size), 0644))
	return path
}

func TestPrimaryDownloadSuccess(t *testing.T) {
	settings := testSettings(t)

	var gotArgs []string
	calls := 0
	run := runner.Func(func(_ context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error) {
		calls++
		gotArgs = args
		assert.Equal(t, settings.SpotdlBin, name)
		assert.Equal(t, settings.DownloadTimeout(), timeout)
		writeArtifact(t, settings.OutputDir, "Artist - Title.mp3", 4096)
		return runner.Result{}, nil
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "Artist - Title.mp3")

	require.True(t, outcome.OK(), "outcome: %+v", outcome)
	assert.Equal(t, filepath.Join(settings.OutputDir, "Artist - Title.mp3"), outcome.File)
	assert.Equal(t, 1, calls, "success must not be retried")

	require.GreaterOrEqual(t, len(gotArgs), 2)
	assert.Equal(t, "download", gotArgs[0])
	assert.Equal(t, testRef.String(), gotArgs[1])
	assert.Contains(t, gotArgs, "--format")
	assert.Contains(t, gotArgs, "mp3")
}

func TestPrimaryDownloadRetryBudget(t *testing.T) {
	settings := testSettings(t)

	calls := 0
	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		calls++
		return runner.Result{Stderr: []byte("Error: rate limit hit\n")}, fmt.Errorf("spotdl: exit status 1")
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "Artist - Title.mp3")

	assert.Equal(t, model.OutcomeFailure, outcome.Kind)
	assert.Equal(t, settings.MaxAttempts, calls, "every attempt in the budget must be spent")
	assert.Contains(t, outcome.Reason, "exhausted retries")
	assert.Contains(t, outcome.Reason, "rate limit")
}

func TestPrimaryDownloadAmbiguousZeroExitNoFile(t *testing.T) {
	settings := testSettings(t)

	calls := 0
	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		calls++
		return runner.Result{}, nil // claims success, writes nothing
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "Artist - Title.mp3")

	assert.Equal(t, model.OutcomeFailure, outcome.Kind)
	assert.Equal(t, settings.MaxAttempts, calls, "ambiguous results must be retried like failures")
}

func TestPrimaryDownloadDeletesUndersizedArtifact(t *testing.T) {
	settings := testSettings(t)

	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		writeArtifact(t, settings.OutputDir, "Artist - Title.mp3", 512) // below threshold
		return runner.Result{}, nil
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "Artist - Title.mp3")

	assert.Equal(t, model.OutcomeFailure, outcome.Kind)
	_, err := os.Stat(filepath.Join(settings.OutputDir, "Artist - Title.mp3"))
	assert.True(t, os.IsNotExist(err), "corrupt stub must be deleted")
}

func TestPrimaryDownloadNoExpectedName(t *testing.T) {
	t.Run("exactly one new file succeeds", func(t *testing.T) {
		settings := testSettings(t)
		run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
			writeArtifact(t, settings.OutputDir, "whatever.mp3", 4096)
			return runner.Result{}, nil
		})

		outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "")
		require.True(t, outcome.OK())
		assert.Equal(t, filepath.Join(settings.OutputDir, "whatever.mp3"), outcome.File)
	})

	t.Run("two new files is ambiguous", func(t *testing.T) {
		settings := testSettings(t)
		calls := 0
		run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
			calls++
			writeArtifact(t, settings.OutputDir, fmt.Sprintf("one-%d.mp3", calls), 4096)
			writeArtifact(t, settings.OutputDir, fmt.Sprintf("two-%d.mp3", calls), 4096)
			return runner.Result{}, nil
		})

		outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "")
		assert.Equal(t, model.OutcomeFailure, outcome.Kind)
		assert.Equal(t, settings.MaxAttempts, calls)
	})
}

func TestPrimaryDownloadPreexistingFileNotCounted(t *testing.T) {
	settings := testSettings(t)
	writeArtifact(t, settings.OutputDir, "Artist - Title.mp3", 4096)

	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		return runner.Result{}, nil // writes nothing new
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "Artist - Title.mp3")
	assert.Equal(t, model.OutcomeFailure, outcome.Kind, "a file that predates the attempt is not evidence")
}

func TestPrimaryDownloadTimeout(t *testing.T) {
	settings := testSettings(t)

	run := runner.Func(func(_ context.Context, _ time.Duration, name string, _ ...string) (runner.Result, error) {
		return runner.Result{}, fmt.Errorf("%s: %w", name, runner.ErrTimeout)
	})

	outcome := NewPrimary(settings, run, nil).Download(context.Background(), testRef, settings.OutputDir, "")
	assert.Equal(t, model.OutcomeFailure, outcome.Kind)
	assert.Contains(t, outcome.Reason, "timed out")
}

func TestPrimaryDownloadCancelled(t *testing.T) {
	settings := testSettings(t)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		calls++
		cancel()
		return runner.Result{}, errors.New("killed")
	})

	outcome := NewPrimary(settings, run, nil).Download(ctx, testRef, settings.OutputDir, "")
	assert.Equal(t, model.OutcomeFailure, outcome.Kind)
	assert.Equal(t, 1, calls, "cancellation must stop the retry loop")
}
