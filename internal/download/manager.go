package download

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
	"github.com/bruhMomentFixer/spotfetch/internal/snapshot"
)

// probeConcurrency caps concurrent metadata probes in ProbeAll. Probes are
// read-only, so unlike downloads they are safe to overlap.
const probeConcurrency = 4

// Manager orchestrates downloads: probe, primary with retries, fallback.
type Manager struct {
	emitter
	settings *config.Settings
	prober   prober
	primary  *Primary
	fallback *Fallback
}

// prober is the metadata lookup the manager needs; satisfied by
// spotify.Prober.
type prober interface {
	Probe(ctx context.Context, ref model.TrackReference) *model.SongInfo
}

// NewManager creates a Manager wiring all executors to the same process
// runner and progress callback.
func NewManager(settings *config.Settings, run runner.Runner, pr prober, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		emitter:  emitter{onProgress: onProgress},
		settings: settings,
		prober:   pr,
		primary:  NewPrimary(settings, run, onProgress),
		fallback: NewFallback(settings, run, onProgress),
	}
}

// downloadTrack runs the executors for one track and reports whether the
// fallback path produced the file. song may be nil when the probe failed.
func (m *Manager) downloadTrack(ctx context.Context, ref model.TrackReference, song *model.SongInfo) (outcome model.Outcome, viaFallback bool, label string) {
	label = ref.String()
	expectedName := ""
	if song != nil {
		label = song.Label()
		expectedName = song.ExpectedFilename()
	}

	m.infof("downloading %s", label)

	outcome = m.primary.Download(ctx, ref, m.settings.OutputDir, expectedName)
	if outcome.OK() {
		m.successf("downloaded %s", label)
		return outcome, false, label
	}
	if ctx.Err() != nil {
		return outcome, false, label
	}

	m.warnf("primary tool gave up on %s (%s), trying fallback", label, outcome.Reason)

	outcome = m.fallback.Download(ctx, ref, m.settings.OutputDir, song)
	if outcome.OK() {
		m.successf("downloaded %s via fallback", label)
		return outcome, true, label
	}

	m.errorf("failed %s: %s", label, outcome.Reason)
	return outcome, false, label
}

// DownloadOne runs the pipeline for a single track and reports success.
func (m *Manager) DownloadOne(ctx context.Context, ref model.TrackReference) bool {
	outcome, _, _ := m.downloadTrack(ctx, ref, m.prober.Probe(ctx, ref))
	return outcome.OK()
}

// RunBatch downloads refs one at a time.
//
// Downloads are deliberately sequential: verification diffs the output
// directory around each invocation, and overlapping downloads would
// attribute each other's files.
func (m *Manager) RunBatch(ctx context.Context, refs []model.TrackReference) *model.BatchStats {
	stats := &model.BatchStats{Total: len(refs)}

	// Metadata for the whole batch is resolved up front, concurrently.
	// Each track is probed exactly once no matter how many download
	// attempts it ends up needing.
	m.verbosef("resolving metadata for %d track(s)", len(refs))
	songs := m.ProbeAll(ctx, refs)

	for i, ref := range refs {
		if ctx.Err() != nil {
			stats.RecordFailure(ref)
			continue
		}

		m.infof("track %d/%d", i+1, len(refs))

		outcome, viaFallback, label := m.downloadTrack(ctx, ref, songs[ref])
		if outcome.OK() {
			stats.RecordSuccess()
			if viaFallback {
				stats.RecordFallback(label)
			}
		} else {
			stats.RecordFailure(ref)
		}
	}

	// A batch that claims success against an empty output directory is a
	// lie; surface it rather than report a clean run.
	if snap, err := snapshot.Take(m.settings.OutputDir); err == nil && len(snap) == 0 {
		stats.OutputDirEmpty = true
	}

	return stats
}

// ProbeAll resolves metadata for all refs concurrently. RunBatch uses it to
// resolve the whole batch before the first download starts. Results are
// keyed by reference; failed probes are absent.
func (m *Manager) ProbeAll(ctx context.Context, refs []model.TrackReference) map[model.TrackReference]*model.SongInfo {
	var mu sync.Mutex
	found := make(map[model.TrackReference]*model.SongInfo, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if song := m.prober.Probe(ctx, ref); song != nil {
				mu.Lock()
				found[ref] = song
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return found
}
