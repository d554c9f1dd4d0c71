package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
)

// Tagger writes ID3 tags to MP3 files.
//
// Files fetched through the fallback tool carry whatever metadata the
// search result had, usually a YouTube upload title in the TIT2 frame and
// no artist. After the fallback renames such a file, Tagger rewrites the
// artist and title frames from the resolved track metadata so players sort
// it correctly.
type Tagger struct{}

// NewTagger creates a Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Retag rewrites the artist and title frames of the MP3 at path.
//
// Parameters:
//   - path: MP3 file to modify (must exist)
//   - song: resolved metadata; must be non-nil
//
// Other frames are left untouched: the fallback tool may have embedded a
// thumbnail or chapters worth keeping.
func (t *Tagger) Retag(path string, song *model.SongInfo) error {
	if song == nil {
		return fmt.Errorf("no song metadata to tag with")
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening tags of %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetArtist(song.Artist)
	tag.SetTitle(song.Title)

	return tag.Save()
}
