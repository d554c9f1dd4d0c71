// Package download contains the track download pipeline.
//
// A Manager drives each track through three stages: a read-only metadata
// probe, the primary spotdl executor with its retry budget, and a one-shot
// yt-dlp fallback. Executors never trust tool exit codes alone; success is
// established by diffing output-directory snapshots and size-checking the
// new files.
package download
