// Package verify decides whether a download actually happened.
//
// The decision is made purely from filesystem evidence: a before/after
// snapshot pair of the output directory and, when available, the filename
// the primary tool was predicted to write. The external tool's own success
// claim never enters the decision.
package verify

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bruhMomentFixer/spotfetch/internal/snapshot"
)

// Gate is the verification decision function.
//
// A file counts as a valid artifact only when it is strictly larger than
// MinSize; artifacts at or below the threshold are considered corrupt
// (typically a stub the tool wrote before failing).
type Gate struct {
	MinSize int64
}

// NewGate returns a Gate with the given corruption threshold in bytes.
func NewGate(minSize int64) Gate {
	return Gate{MinSize: minSize}
}

// Verify inspects the snapshot delta and decides whether the operation
// produced a valid artifact. Pure: no side effects beyond logging.
//
// With an expected filename, success requires that exact name to appear in
// the delta (not merely pre-exist) above the size threshold. Without one,
// success requires at least one new file above the threshold; the most
// recently modified new file is chosen as the result.
func (g Gate) Verify(before, after snapshot.Snapshot, expectedName string) (snapshot.Entry, bool) {
	delta := snapshot.Diff(before, after)

	if expectedName != "" {
		for _, entry := range delta {
			if entry.Name() == expectedName && entry.Size > g.MinSize {
				slog.Debug("verified expected artifact", "file", entry.Name(), "size", entry.Size)
				return entry, true
			}
		}
		slog.Debug("expected artifact not found in delta", "expected", expectedName, "new_files", len(delta))
		return snapshot.Entry{}, false
	}

	var valid []snapshot.Entry
	for _, entry := range delta {
		if entry.Size > g.MinSize {
			valid = append(valid, entry)
		}
	}

	newest, ok := snapshot.Newest(valid)
	if !ok {
		slog.Debug("no valid new artifacts", "new_files", len(delta))
		return snapshot.Entry{}, false
	}
	slog.Debug("verified newest artifact", "file", newest.Name(), "size", newest.Size)
	return newest, true
}

// Undersized returns the entries of the delta at or below the threshold.
func (g Gate) Undersized(delta []snapshot.Entry) []snapshot.Entry {
	var small []snapshot.Entry
	for _, entry := range delta {
		if entry.Size <= g.MinSize {
			small = append(small, entry)
		}
	}
	return small
}

// CleanupUndersized deletes audio files in dir at or below the threshold.
// Corrupt stubs are removed as part of recovery rather than left behind,
// where a later attempt's verification would have to disambiguate them.
// Returns the names of the removed files.
func (g Gate) CleanupUndersized(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var removed []string
	for _, de := range entries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), snapshot.AudioExt) {
			continue
		}
		info, err := de.Info()
		if err != nil || info.Size() > g.MinSize {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("could not remove corrupt artifact", "file", path, "error", err)
			continue
		}
		slog.Debug("removed corrupt artifact", "file", path, "size", info.Size())
		removed = append(removed, de.Name())
	}
	return removed, nil
}
