package spotify

import (
	"regexp"
	"strings"

	"github.com/bruhMomentFixer/spotfetch/internal/model"
)

// CanonicalTrackPrefix is the prefix every normalized track reference has.
const CanonicalTrackPrefix = "https://open.spotify.com/track/"

// PlaylistPrefix identifies Spotify playlist URLs.
const PlaylistPrefix = "https://open.spotify.com/playlist/"

// Track URLs may carry a locale segment (intl-xx) and a query string; the
// opaque ID between "track/" and the next delimiter is all that matters.
var trackURLPattern = regexp.MustCompile(`https://open\.spotify\.com/(?:intl-[a-z]{2}/)?track/([a-zA-Z0-9]+)`)

// Normalize canonicalizes a Spotify track URL: the locale segment and any
// query string are stripped and the reference is rebuilt as
// CanonicalTrackPrefix + id. Input that does not look like a track URL is
// returned unchanged (and will be rejected by IsValidTrackURL downstream).
func Normalize(url string) model.TrackReference {
	url = strings.TrimSpace(url)
	m := trackURLPattern.FindStringSubmatch(url)
	if m == nil {
		return model.TrackReference(url)
	}
	return model.TrackReference(CanonicalTrackPrefix + m[1])
}

// IsValidTrackURL reports whether url normalizes to a canonical track
// reference.
func IsValidTrackURL(url string) bool {
	return strings.HasPrefix(Normalize(url).String(), CanonicalTrackPrefix)
}

// IsPlaylistURL reports whether url is a Spotify playlist URL.
func IsPlaylistURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), PlaylistPrefix)
}

// TrackID extracts the opaque track ID from a track URL.
// Returns "" for anything that is not a valid track URL.
func TrackID(url string) string {
	ref := Normalize(url)
	if !strings.HasPrefix(ref.String(), CanonicalTrackPrefix) {
		return ""
	}
	return strings.TrimPrefix(ref.String(), CanonicalTrackPrefix)
}
