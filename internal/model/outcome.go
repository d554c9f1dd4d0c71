package model

// OutcomeKind classifies the result of one executor invocation.
type OutcomeKind int

const (
	// OutcomeSuccess means exactly one verified artifact was produced.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeAmbiguous means the external tool claimed success but the
	// filesystem evidence did not confirm exactly one valid new artifact.
	OutcomeAmbiguous

	// OutcomeFailure means the invocation failed outright (non-zero exit,
	// timeout, or exhausted retries).
	OutcomeFailure
)

// Outcome is the tagged result of one download attempt.
//
// An Outcome is produced once per executor invocation, consumed immediately
// by the caller, and never persisted.
type Outcome struct {
	Kind OutcomeKind

	// File is the verified artifact path. Set only for OutcomeSuccess.
	File string

	// Candidates lists the new files seen when the result was ambiguous.
	Candidates []string

	// Reason is a short human-readable failure summary.
	Reason string
}

// Success builds a successful Outcome for the given artifact.
func Success(file string) Outcome {
	return Outcome{Kind: OutcomeSuccess, File: file}
}

// Ambiguous builds an Outcome for an unconfirmed success claim.
func Ambiguous(candidates []string) Outcome {
	return Outcome{Kind: OutcomeAmbiguous, Candidates: candidates}
}

// Failure builds a failed Outcome with a reason.
func Failure(reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

// OK reports whether the outcome is a verified success.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// BatchStats accumulates the result of one batch run.
//
// The Manager mutates it incrementally while iterating; callers treat it as
// read-only once the batch completes. The FailedRefs and FallbackUsed slices
// preserve input order.
type BatchStats struct {
	Total     int
	Succeeded int
	Failed    int

	// FailedRefs lists the references that failed both executors.
	FailedRefs []TrackReference

	// FallbackUsed lists the display labels of tracks that were fetched via
	// the fallback tool. These are surfaced for manual spot-checking: the
	// fallback's search-based matching is trusted but not guaranteed.
	FallbackUsed []string

	// OutputDirEmpty is set when the output directory held zero audio
	// files after the whole batch. Per-item counters can mask a systemic
	// environment problem (broken tool install, unwritable directory);
	// this flag fails the batch regardless of them.
	OutputDirEmpty bool
}

// RecordSuccess counts one successfully downloaded track.
func (s *BatchStats) RecordSuccess() {
	s.Succeeded++
}

// RecordFailure counts one failed track and remembers its reference.
func (s *BatchStats) RecordFailure(ref TrackReference) {
	s.Failed++
	s.FailedRefs = append(s.FailedRefs, ref)
}

// RecordFallback remembers that a track was obtained via the fallback tool.
func (s *BatchStats) RecordFallback(label string) {
	s.FallbackUsed = append(s.FallbackUsed, label)
}

// AllSucceeded reports whether every track in the batch was downloaded and
// the output directory ended up non-empty.
func (s *BatchStats) AllSucceeded() bool {
	return s.Total > 0 && s.Failed == 0 && !s.OutputDirEmpty
}
