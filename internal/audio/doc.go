// Package audio handles ID3 metadata for downloaded MP3 files.
//
// The primary download tool writes correct tags on its own; this package
// only exists for the fallback path, where a generic media fetcher produces
// files tagged with the upload title of whatever search result it picked.
//
// Example:
//
//	tagger := audio.NewTagger()
//	err := tagger.Retag("/music/Artist - Title.mp3", song)
package audio
