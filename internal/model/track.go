package model

import (
	"fmt"

	ioutils "github.com/bruhMomentFixer/spotfetch/internal/io"
)

// TrackReference is a canonical Spotify track URL.
//
// A reference is considered canonical when it has the form
//
//	https://open.spotify.com/track/<id>
//
// with no locale segment and no query string. References are produced by
// spotify.Normalize and are immutable once constructed; components treat
// them as opaque identifiers and never re-parse them except to extract the
// trailing ID.
type TrackReference string

// String returns the reference as a plain URL string.
func (r TrackReference) String() string {
	return string(r)
}

// SongInfo holds the artist/title pair resolved for a track.
//
// SongInfo is resolved lazily via the metadata prober and may be absent:
// prober failures are non-fatal, and callers fall back to the raw track
// reference as a display label. A zero-value SongInfo is never used; absence
// is always expressed as a nil pointer.
type SongInfo struct {
	// Artist is the primary artist name. "Unknown" when the metadata
	// source did not include one.
	Artist string

	// Title is the track title. "Unknown Track" when the metadata source
	// did not include one.
	Title string
}

// Label returns the human-readable "<artist> - <title>" form used in
// progress output and batch summaries.
func (s *SongInfo) Label() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Title)
}

// SearchQuery returns the free-text query handed to the fallback tool's
// search directive.
func (s *SongInfo) SearchQuery() string {
	return fmt.Sprintf("%s %s audio", s.Artist, s.Title)
}

// ExpectedFilename returns the filename spotdl is predicted to write for
// this track, with path-unsafe characters stripped.
//
// The predicted name is only a verification hint, never a hard requirement:
// the external tool may legitimately choose a different real name, and
// verification degrades to snapshot-delta inspection when it does.
func (s *SongInfo) ExpectedFilename() string {
	return ioutils.SanitizeFileName(fmt.Sprintf("%s - %s.mp3", s.Artist, s.Title))
}
