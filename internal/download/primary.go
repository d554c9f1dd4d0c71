package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
	"github.com/bruhMomentFixer/spotfetch/internal/snapshot"
	"github.com/bruhMomentFixer/spotfetch/internal/verify"
)

// ErrExhaustedRetries is the failure reason when every primary attempt was
// spent without a verified artifact.
var ErrExhaustedRetries = errors.New("exhausted retries")

// outputTemplate is the spotdl output template; spotdl substitutes the
// placeholders itself.
const outputTemplate = "{artist} - {title}.{output-ext}"

// Primary runs the spotdl download path.
//
// Each attempt brackets the tool invocation with output-directory
// snapshots; the diff, not the exit code, decides success. A claimed
// success with no verifiable new artifact counts as ambiguous and is
// retried just like a failure, up to the attempt budget.
type Primary struct {
	emitter
	settings *config.Settings
	run      runner.Runner
	gate     verify.Gate
}

// NewPrimary creates the primary executor.
func NewPrimary(settings *config.Settings, run runner.Runner, onProgress func(ProgressEvent)) *Primary {
	return &Primary{
		emitter:  emitter{onProgress: onProgress},
		settings: settings,
		run:      run,
		gate:     verify.NewGate(settings.MinFileSize()),
	}
}

// Download fetches one track into outputDir.
//
// expectedName is the predicted output filename; empty when prediction
// failed, in which case verification falls back to strict new-file-count
// inspection.
func (p *Primary) Download(ctx context.Context, ref model.TrackReference, outputDir, expectedName string) model.Outcome {
	lastReason := ErrExhaustedRetries.Error()

	for attempt := 1; attempt <= p.settings.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := waitRetry(ctx, p.settings.RetryDelay()); err != nil {
				return model.Failure("cancelled")
			}
		}

		p.verbosef("spotdl attempt %d/%d for %s", attempt, p.settings.MaxAttempts, ref)

		outcome := p.attempt(ctx, ref, outputDir, expectedName)
		if outcome.OK() {
			return outcome
		}
		if ctx.Err() != nil {
			return model.Failure("cancelled")
		}

		switch outcome.Kind {
		case model.OutcomeFailure:
			lastReason = outcome.Reason
			p.warnf("attempt %d/%d failed: %s", attempt, p.settings.MaxAttempts, outcome.Reason)
		case model.OutcomeAmbiguous:
			lastReason = "no verifiable file produced"
			p.warnf("attempt %d/%d: tool reported success but produced no verifiable file (%d candidates), retrying",
				attempt, p.settings.MaxAttempts, len(outcome.Candidates))
		}
	}

	return model.Failure(ErrExhaustedRetries.Error() + ": " + lastReason)
}

// attempt performs one snapshot-execute-diff cycle.
func (p *Primary) attempt(ctx context.Context, ref model.TrackReference, outputDir, expectedName string) model.Outcome {
	before, err := snapshot.Take(outputDir)
	if err != nil {
		return model.Failure("snapshotting output directory: " + err.Error())
	}

	args := []string{
		"download", ref.String(),
		"--output", filepath.Join(outputDir, outputTemplate),
		"--format", "mp3",
		"--lyrics", "genius",
	}
	args = append(args, p.settings.Credentials.Args()...)

	result, err := p.run.Run(ctx, p.settings.DownloadTimeout(), p.settings.SpotdlBin, args...)
	if err != nil {
		if runner.IsTimeout(err) {
			return model.Failure("timed out after " + p.settings.DownloadTimeout().String())
		}
		return model.Failure(runner.SummarizeStderr(string(result.Stderr)))
	}

	// The tool claims success. Give the filesystem a moment to settle, then
	// let the evidence speak.
	if err := waitRetry(ctx, p.settings.SettleDelay()); err != nil {
		return model.Failure("cancelled")
	}

	after, err := snapshot.Take(outputDir)
	if err != nil {
		return model.Failure("snapshotting output directory: " + err.Error())
	}

	if expectedName != "" {
		if entry, ok := p.gate.Verify(before, after, expectedName); ok {
			return model.Success(entry.Path)
		}
		return p.ambiguous(before, after)
	}

	// No predicted name: accept only the unambiguous case of exactly one
	// valid new file.
	delta := snapshot.Diff(before, after)
	if len(delta) == 1 && delta[0].Size > p.settings.MinFileSize() {
		return model.Success(delta[0].Path)
	}
	return p.ambiguous(before, after)
}

// ambiguous classifies an unconfirmed success claim, deleting any corrupt
// stubs among the new files so the next attempt starts clean.
func (p *Primary) ambiguous(before, after snapshot.Snapshot) model.Outcome {
	delta := snapshot.Diff(before, after)

	var candidates []string
	for _, entry := range delta {
		candidates = append(candidates, entry.Name())
	}
	for _, entry := range p.gate.Undersized(delta) {
		if err := os.Remove(entry.Path); err == nil {
			p.warnf("deleted corrupt artifact: %s (%d bytes)", entry.Name(), entry.Size)
		}
	}

	return model.Ambiguous(candidates)
}

// waitRetry sleeps for d, honoring cancellation.
func waitRetry(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
