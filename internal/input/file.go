// Package input reads and writes the songs file: a UTF-8 text file with one
// Spotify track URL per line. Blank lines and lines starting with # are
// ignored. URLs are normalized on read, and duplicates of an already-seen
// normalized URL are skipped with a warning rather than treated as errors.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/spotify"
)

// InvalidLine records a line that did not validate as a track URL.
type InvalidLine struct {
	Number int
	Text   string
}

// SongList is the parsed content of a songs file.
type SongList struct {
	// Refs holds the normalized, deduplicated references in file order.
	Refs []model.TrackReference

	// Invalid lists lines that were neither blank, comments, nor valid
	// track URLs.
	Invalid []InvalidLine

	// Warnings holds human-readable notes, currently only duplicate skips.
	Warnings []string
}

// ReadSongsFile parses the songs file at path.
func ReadSongsFile(path string) (*SongList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening songs file: %w", err)
	}
	defer f.Close()

	list := &SongList{}
	seen := make(map[model.TrackReference]bool)

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !spotify.IsValidTrackURL(line) {
			list.Invalid = append(list.Invalid, InvalidLine{Number: lineNum, Text: line})
			continue
		}

		ref := spotify.Normalize(line)
		if seen[ref] {
			list.Warnings = append(list.Warnings,
				fmt.Sprintf("line %d: duplicate of %s, skipped", lineNum, ref))
			continue
		}
		seen[ref] = true
		list.Refs = append(list.Refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading songs file: %w", err)
	}

	return list, nil
}

// WriteURLs writes track references to the songs file, one per line.
// With appendMode, existing content is kept and a separating blank line
// added; otherwise the file is truncated.
func WriteURLs(path string, refs []model.TrackReference, appendMode bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening songs file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if appendMode {
		if info, err := f.Stat(); err == nil && info.Size() > 0 {
			fmt.Fprintln(w)
		}
	}
	for _, ref := range refs {
		fmt.Fprintln(w, ref.String())
	}
	return w.Flush()
}

// HasContent reports whether the songs file exists and contains any
// non-whitespace text.
func HasContent(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) != ""
}

// Template is the example songs file written by --init.
const Template = `# spotfetch songs file
# One Spotify track URL per line.
# Lines starting with # are comments.

https://open.spotify.com/track/4vIQ62JoGRy7tDy24hiqrF
https://open.spotify.com/track/6T7FX1XaXoh1oGpt4QrP8l

# More songs...
`
