// Package model defines the core data structures used throughout spotfetch.
//
// # TrackReference
//
// TrackReference is a canonical Spotify track URL produced by the URL
// normalizer:
//
//	ref := spotify.Normalize("https://open.spotify.com/intl-es/track/abc123")
//	// ref == "https://open.spotify.com/track/abc123"
//
// # SongInfo
//
// SongInfo is the artist/title pair resolved for a reference. It may be
// absent (nil) because metadata probing fails soft:
//
//	song := prober.Probe(ctx, ref)
//	if song != nil {
//	    fmt.Println(song.Label())            // "Artist - Title"
//	    fmt.Println(song.ExpectedFilename()) // "Artist - Title.mp3"
//	}
//
// # Outcome
//
// Outcome is the tagged result of a single executor invocation: Success with
// a verified file, Ambiguous with candidate files, or Failure with a reason.
//
// # BatchStats
//
// BatchStats aggregates a whole batch run, including the ordered list of
// failed references and of tracks that needed the fallback tool.
//
// All types in this package are value types owned by the call that created
// them; no shared mutable state crosses component boundaries.
package model
