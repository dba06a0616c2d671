package conflict

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Options controls one conflict check. Use DefaultOptions as the
// starting point; the zero value disables both passes.
type Options struct {
	// CheckDuplicates enables the similarity pass.
	CheckDuplicates bool

	// CheckConflicts enables the overlap pass.
	CheckConflicts bool

	// CalendarsToCheck lists the calendars to scan. Empty means the
	// primary calendar passed to CheckConflicts.
	CalendarsToCheck []string

	// DuplicateThreshold is the minimum similarity score reported as a
	// duplicate.
	DuplicateThreshold float64

	// IncludeDeclinedEvents keeps events the requester has declined in
	// the overlap pass. Declined filtering needs the requester's
	// identity threaded through; until then the filter is a no-op and
	// this flag changes nothing.
	IncludeDeclinedEvents bool
}

// DefaultOptions returns the options used when a caller supplies none:
// both passes enabled, primary calendar only, warning threshold.
func DefaultOptions() Options {
	return Options{
		CheckDuplicates:    true,
		CheckConflicts:     true,
		DuplicateThreshold: DefaultWarningThreshold,
	}
}

// Result aggregates everything one check found.
type Result struct {
	HasConflicts bool
	Duplicates   []DuplicateMatch
	Conflicts    []OverlapMatch
}

// DuplicateMatch is one existing event the scorer rated at or above the
// duplicate threshold.
type DuplicateMatch struct {
	Event          *calendar.Event
	Score          float64
	Suggestion     string
	SourceCalendar string
}

// OverlapMatch is one existing event whose time window intersects the
// candidate's.
type OverlapMatch struct {
	Event          *calendar.Event
	Duration       time.Duration
	Percentage     int
	WindowStart    time.Time
	WindowEnd      time.Time
	SourceCalendar string
}
