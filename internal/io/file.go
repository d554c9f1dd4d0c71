// Package ioutils provides file system utilities for spotfetch.
//
// This package contains functions for:
//   - Filename sanitization
//   - Directory creation
//   - Moving files within the output directory
//   - Text file writing
//
// The sanitization rules intentionally mirror what spotdl's output
// templating does to metadata, so that a filename predicted from track
// metadata matches the file the external tool actually writes.
package ioutils

import (
	"os"
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes characters that are invalid in file names.
//
// Unlike sanitizers that substitute an underscore, invalid characters are
// stripped entirely. spotdl drops them when rendering its output template,
// and a predicted filename is only useful for verification if it is
// byte-identical to the name the tool produces.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → removed
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading/trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName(`AC/DC - Back In Black.mp3`) // "ACDC - Back In Black.mp3"
//	SanitizeFileName("Track...")                  // "Track"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// MoveFile renames a file, falling back to copy+remove when the rename
// crosses filesystem boundaries.
//
// Parameters:
//   - src: Source file path (must exist)
//   - dst: Destination file path (overwritten if present)
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	return os.Remove(src)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
