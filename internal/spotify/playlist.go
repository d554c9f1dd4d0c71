package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
)

// PlaylistFetcher resolves a playlist URL to its track references using
// spotdl's save subcommand, which dumps playlist metadata to a JSON file.
type PlaylistFetcher struct {
	settings *config.Settings
	run      runner.Runner

	// MaxAttempts and BackoffBase control the retry loop. The wait before
	// attempt n is BackoffBase * 2^n.
	MaxAttempts int
	BackoffBase time.Duration
}

// NewPlaylistFetcher creates a fetcher with the default retry policy.
func NewPlaylistFetcher(settings *config.Settings, run runner.Runner) *PlaylistFetcher {
	return &PlaylistFetcher{
		settings:    settings,
		run:         run,
		MaxAttempts: 3,
		BackoffBase: time.Second,
	}
}

// playlistEntry is one element of the saved metadata array.
type playlistEntry struct {
	URL string `json:"url"`
}

// Fetch returns the track references of a playlist, in playlist order.
// Entries whose URL is not a canonical track URL are ignored.
func (f *PlaylistFetcher) Fetch(ctx context.Context, playlistURL string) ([]model.TrackReference, error) {
	tmp, err := os.CreateTemp("", "spotfetch-playlist-*.spotdl")
	if err != nil {
		return nil, fmt.Errorf("creating metadata file: %w", err)
	}
	savePath := tmp.Name()
	tmp.Close()
	defer os.Remove(savePath)

	var lastErr error
	for attempt := 0; attempt < f.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.waitBackoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		// Leftovers from a failed attempt would make an empty run look
		// successful.
		os.Remove(savePath)

		refs, err := f.fetchOnce(ctx, playlistURL, savePath)
		if err == nil {
			return refs, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetching playlist after %d attempts: %w", f.MaxAttempts, lastErr)
}

func (f *PlaylistFetcher) fetchOnce(ctx context.Context, playlistURL, savePath string) ([]model.TrackReference, error) {
	args := []string{
		"save", playlistURL,
		"--save-file", savePath,
		"--audio", "youtube",
		"--lyrics", "genius",
	}
	args = append(args, f.settings.Credentials.AssignmentArgs()...)

	result, err := f.run.Run(ctx, f.settings.PlaylistTimeout(), f.settings.SpotdlBin, args...)
	if err != nil {
		return nil, fmt.Errorf("spotdl save: %s: %w", runner.SummarizeStderr(string(result.Stderr)), err)
	}

	data, err := os.ReadFile(savePath)
	if err != nil {
		return nil, fmt.Errorf("metadata file was not created: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("metadata file is empty")
	}

	var entries []playlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding playlist metadata: %w", err)
	}

	var refs []model.TrackReference
	for _, entry := range entries {
		if IsValidTrackURL(entry.URL) {
			refs = append(refs, Normalize(entry.URL))
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no track URLs in playlist metadata")
	}
	return refs, nil
}

func (f *PlaylistFetcher) waitBackoff(ctx context.Context, tries int) error {
	cooldown := f.BackoffBase * (1 << tries)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cooldown):
		return nil
	}
}
