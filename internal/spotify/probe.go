package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
)

// Prober resolves track metadata through spotdl's read-only search mode.
//
// Probing fails soft by contract: every failure path (non-zero exit, empty
// output, malformed JSON, timeout) yields nil, and callers fall back to the
// raw reference as a display label. A probe never writes to the output
// directory.
type Prober struct {
	settings *config.Settings
	run      runner.Runner
}

// NewProber creates a Prober using the given process runner.
func NewProber(settings *config.Settings, run runner.Runner) *Prober {
	return &Prober{settings: settings, run: run}
}

// songJSON is the slice of spotdl's search output this tool cares about.
type songJSON struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

// Probe resolves a track reference to artist/title. Returns nil on any
// failure.
func (p *Prober) Probe(ctx context.Context, ref model.TrackReference) *model.SongInfo {
	args := []string{"search", ref.String(), "--print", "json"}
	args = append(args, p.settings.Credentials.Args()...)

	result, err := p.run.Run(ctx, p.settings.ProbeTimeout(), p.settings.SpotdlBin, args...)
	if err != nil {
		slog.Debug("metadata probe failed", "ref", ref, "error", err)
		return nil
	}

	out := bytes.TrimSpace(result.Stdout)
	if len(out) == 0 {
		slog.Debug("metadata probe returned no output", "ref", ref)
		return nil
	}

	var song songJSON
	if err := json.Unmarshal(out, &song); err != nil {
		slog.Debug("metadata probe output not decodable", "ref", ref, "error", err)
		return nil
	}

	info := &model.SongInfo{Artist: "Unknown", Title: "Unknown Track"}
	if len(song.Artists) > 0 && song.Artists[0].Name != "" {
		info.Artist = song.Artists[0].Name
	}
	if song.Name != "" {
		info.Title = song.Name
	}
	return info
}

// PredictFilename predicts the filename spotdl should produce for ref.
// Returns "" when the underlying probe fails; callers must not assume a
// predicted name is ever available.
func (p *Prober) PredictFilename(ctx context.Context, ref model.TrackReference) string {
	song := p.Probe(ctx, ref)
	if song == nil {
		return ""
	}
	return song.ExpectedFilename()
}
