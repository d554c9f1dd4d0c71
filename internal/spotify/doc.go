// Package spotify handles Spotify-side concerns: URL canonicalization and
// the read-only metadata interactions with the spotdl CLI.
//
// # URL normalization
//
// Track URLs copied from the Spotify client come in several shapes:
//
//	https://open.spotify.com/track/4vIQ62JoGRy7tDy24hiqrF
//	https://open.spotify.com/intl-es/track/4vIQ62JoGRy7tDy24hiqrF
//	https://open.spotify.com/track/4vIQ62JoGRy7tDy24hiqrF?si=...
//
// Normalize maps them all to the first, canonical form. Normalization is
// idempotent and never fails: input it cannot parse passes through unchanged
// so that validation can reject it with the original text intact.
//
// # Metadata probing
//
// Prober shells out to "spotdl search <ref> --print json" to resolve an
// artist/title pair and to predict the output filename. Probes fail soft:
// they return nil rather than an error, because metadata is a nicety, not a
// requirement, for downloading.
//
// # Playlist fetching
//
// PlaylistFetcher shells out to "spotdl save" to dump playlist metadata to a
// temporary JSON file and extracts the track URLs from it, retrying with
// exponential backoff since the endpoint is flaky in practice.
package spotify
