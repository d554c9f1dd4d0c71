// Package snapshot captures before/after listings of the output directory.
//
// The external download tools' exit codes are not a trustworthy success
// signal: both have been observed to exit zero with no output, or to
// silently skip a track. The filesystem is the ground truth instead. A
// snapshot is taken immediately before an executor invocation and again
// right after; their diff is the only evidence that the invocation actually
// produced something. Snapshots are never cached across attempts.
package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AudioExt is the file extension snapshots care about.
const AudioExt = ".mp3"

// Entry describes one audio file at snapshot time.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Name returns the base filename of the entry.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Snapshot is the set of audio files in a directory at a point in time,
// keyed by path.
type Snapshot map[string]Entry

// Take lists the audio files in dir. A missing directory yields an empty
// snapshot, not an error: before the first download the output directory
// may not exist yet.
func Take(dir string) (Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return nil, err
	}

	snap := make(Snapshot, len(entries))
	for _, de := range entries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), AudioExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Deleted between ReadDir and Info; it is not part of
			// the directory state anymore.
			continue
		}
		path := filepath.Join(dir, de.Name())
		snap[path] = Entry{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	}
	return snap, nil
}

// Diff returns the entries present in after but not in before, compared by
// path identity. A file rewritten in place under the same path is not
// reported. Results are sorted by path for determinism.
func Diff(before, after Snapshot) []Entry {
	var fresh []Entry
	for path, entry := range after {
		if _, existed := before[path]; !existed {
			fresh = append(fresh, entry)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Path < fresh[j].Path })
	return fresh
}

// Newest returns the most recently modified of the given entries.
func Newest(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	newest := entries[0]
	for _, e := range entries[1:] {
		if e.ModTime.After(newest.ModTime) {
			newest = e
		}
	}
	return newest, true
}
