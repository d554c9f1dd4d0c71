package runner

import "strings"

var errorKeywords = []string{"error", "exception", "failed", "keyerror", "timeout"}

// SummarizeStderr condenses a tool's stderr into a short one-line summary
// suitable for progress output.
//
// Lines containing an error keyword are preferred, with Python traceback
// noise (frame lines, indented continuations, box-drawing rules) filtered
// out. When no keyword line exists the last few non-empty lines are used
// instead. At most two lines are joined with " | ".
func SummarizeStderr(stderr string) string {
	if strings.TrimSpace(stderr) == "" {
		return "unknown error (no stderr output)"
	}

	lines := strings.Split(stderr, "\n")

	var picked []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !containsAny(lower, errorKeywords) {
			continue
		}
		if strings.Contains(lower, "traceback") || strings.Contains(lower, `file "`) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "+--") {
			continue
		}
		picked = append(picked, trimmed)
	}

	if len(picked) == 0 {
		for _, line := range lines {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "unable to find") || strings.Contains(lower, "keyerror") {
				picked = append(picked, strings.TrimSpace(line))
			}
		}
	}

	if len(picked) == 0 {
		tail := lines
		if len(tail) > 3 {
			tail = tail[len(tail)-3:]
		}
		for _, line := range tail {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				picked = append(picked, trimmed)
			}
		}
	}

	if len(picked) > 2 {
		picked = picked[:2]
	}
	return strings.Join(picked, " | ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
