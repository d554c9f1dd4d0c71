package download

import (
	"context"
	"path/filepath"

	"github.com/bruhMomentFixer/spotfetch/internal/audio"
	"github.com/bruhMomentFixer/spotfetch/internal/config"
	ioutils "github.com/bruhMomentFixer/spotfetch/internal/io"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
	"github.com/bruhMomentFixer/spotfetch/internal/snapshot"
	"github.com/bruhMomentFixer/spotfetch/internal/spotify"
	"github.com/bruhMomentFixer/spotfetch/internal/verify"
)

// Fallback runs the yt-dlp search path, used once per track after the
// primary executor exhausts its attempts.
//
// It searches by artist and title rather than resolving the track URL, so
// it can succeed even when the primary tool's Spotify session is the thing
// that is broken. The cost is looser matching: the verification gate only
// requires some valid new file, and the result is renamed and retagged to
// the resolved metadata when we have it.
type Fallback struct {
	emitter
	settings *config.Settings
	run      runner.Runner
	gate     verify.Gate
	tagger   *audio.Tagger
}

// NewFallback creates the fallback executor.
func NewFallback(settings *config.Settings, run runner.Runner, onProgress func(ProgressEvent)) *Fallback {
	return &Fallback{
		emitter:  emitter{onProgress: onProgress},
		settings: settings,
		run:      run,
		gate:     verify.NewGate(settings.MinFileSize()),
		tagger:   audio.NewTagger(),
	}
}

// Download performs a single yt-dlp search-and-fetch into outputDir.
//
// song may be nil when the metadata probe failed; the search then falls
// back to the raw track ID and no rename or retag happens.
func (f *Fallback) Download(ctx context.Context, ref model.TrackReference, outputDir string, song *model.SongInfo) model.Outcome {
	query := "spotify track " + spotify.TrackID(ref.String())
	if song != nil {
		query = song.SearchQuery()
	}

	if err := ioutils.EnsureDir(outputDir); err != nil {
		return model.Failure("creating output directory: " + err.Error())
	}

	before, err := snapshot.Take(outputDir)
	if err != nil {
		return model.Failure("snapshotting output directory: " + err.Error())
	}

	f.verbosef("yt-dlp search: %q", query)

	args := []string{
		"ytsearch1:" + query,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", filepath.Join(outputDir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--no-simulate",
		"--newline",
	}

	result, err := f.run.Run(ctx, f.settings.DownloadTimeout(), f.settings.YtdlpBin, args...)
	if err != nil {
		if runner.IsTimeout(err) {
			return model.Failure("timed out after " + f.settings.DownloadTimeout().String())
		}
		return model.Failure(runner.SummarizeStderr(string(result.Stderr)))
	}

	if err := waitRetry(ctx, f.settings.SettleDelay()); err != nil {
		return model.Failure("cancelled")
	}

	after, err := snapshot.Take(outputDir)
	if err != nil {
		return model.Failure("snapshotting output directory: " + err.Error())
	}

	entry, ok := f.gate.Verify(before, after, "")
	if !ok {
		return model.Failure("no verifiable file produced")
	}

	// yt-dlp names the file after the video title; align it with the rest
	// of the library when we know who the track actually is.
	if song != nil {
		target := filepath.Join(outputDir, song.ExpectedFilename())
		if target != entry.Path {
			if err := ioutils.MoveFile(entry.Path, target); err != nil {
				f.warnf("keeping fallback filename, rename failed: %v", err)
			} else {
				entry.Path = target
			}
		}
		if err := f.tagger.Retag(entry.Path, song); err != nil {
			f.warnf("retagging %s: %v", filepath.Base(entry.Path), err)
		}
	}

	return model.Success(entry.Path)
}
