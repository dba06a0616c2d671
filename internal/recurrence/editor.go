package recurrence

import (
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/timeutil"
)

// Kind classifies an event as a recurring series or a single occurrence.
type Kind string

const (
	KindRecurring Kind = "recurring"
	KindSingle    Kind = "single"
)

const rulePrefix = "RRULE"

// Classify returns KindRecurring iff the event carries a non-empty
// recurrence rule set.
func Classify(event *calendar.Event) Kind {
	if event != nil && len(event.Recurrence) > 0 {
		return KindRecurring
	}
	return KindSingle
}

// InstanceID builds the identifier of a single instance within a
// recurring series: the series id joined with the instance's original
// start rendered as a compact UTC timestamp.
func InstanceID(seriesID string, originalStart time.Time) string {
	return seriesID + "_" + timeutil.BasicUTC(originalStart)
}

// UntilBoundary renders the UNTIL value that ends a series before the
// given future occurrence: a fixed 24-hour subtraction, independent of
// local calendar day boundaries.
func UntilBoundary(futureStart time.Time) string {
	return timeutil.BasicUTC(futureStart.Add(-24 * time.Hour))
}

// RewriteWithUntil returns a copy of ruleLines where the single RRULE
// line has any existing UNTIL or COUNT limiter removed and the new
// UNTIL value appended. Every other line passes through byte-identical
// and in its original position. Exactly one RRULE line must be present.
func RewriteWithUntil(ruleLines []string, untilValue string) ([]string, error) {
	if len(ruleLines) == 0 {
		return nil, fmt.Errorf("recurrence rule set is empty")
	}

	ruleIdx := -1
	for i, line := range ruleLines {
		if strings.HasPrefix(line, rulePrefix) {
			if ruleIdx >= 0 {
				return nil, fmt.Errorf("recurrence rule set has multiple RRULE lines")
			}
			ruleIdx = i
		}
	}
	if ruleIdx < 0 {
		return nil, fmt.Errorf("recurrence rule set has no RRULE line")
	}

	out := make([]string, len(ruleLines))
	copy(out, ruleLines)
	out[ruleIdx] = rewriteRuleLine(ruleLines[ruleIdx], untilValue)
	return out, nil
}

// rewriteRuleLine drops UNTIL/COUNT parameters from one RRULE line and
// appends the new UNTIL, preserving the order of the remaining
// parameters.
func rewriteRuleLine(line, untilValue string) string {
	prefix, params, _ := strings.Cut(line, ":")

	kept := make([]string, 0, 4)
	for _, p := range strings.Split(params, ";") {
		if p == "" || strings.HasPrefix(p, "UNTIL=") || strings.HasPrefix(p, "COUNT=") {
			continue
		}
		kept = append(kept, p)
	}
	kept = append(kept, "UNTIL="+untilValue)

	return prefix + ":" + strings.Join(kept, ";")
}

// PreservedDurationEnd computes the end instant that keeps the event's
// original duration when its start moves to newStart. The duration is
// an absolute-instant delta, so the result is timezone-independent.
func PreservedDurationEnd(newStart time.Time, event *calendar.Event) (time.Time, error) {
	origStart, err := eventInstant(event.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("event has no parseable start: %w", err)
	}
	origEnd, err := eventInstant(event.End)
	if err != nil {
		return time.Time{}, fmt.Errorf("event has no parseable end: %w", err)
	}
	return newStart.Add(origEnd.Sub(origStart)), nil
}

// StripIdentityFields returns a shallow copy of the event with every
// server-assigned field cleared, so the copy can be inserted as a new
// detached event. User-authored fields are preserved as-is.
func StripIdentityFields(event *calendar.Event) *calendar.Event {
	copied := *event
	copied.Id = ""
	copied.Etag = ""
	copied.ICalUID = ""
	copied.Created = ""
	copied.Updated = ""
	copied.HtmlLink = ""
	copied.HangoutLink = ""
	return &copied
}

// eventInstant resolves an EventDateTime to an absolute instant,
// accepting both timed and all-day shapes.
func eventInstant(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing time field")
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		return time.Parse(timeutil.DateLayout, edt.Date)
	}
	return time.Time{}, fmt.Errorf("missing time field")
}
