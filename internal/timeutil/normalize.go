package timeutil

import (
	"regexp"
	"time"
)

// Layouts used for the datetime text accepted by tools.
const (
	// NaiveLayout is a wall-clock datetime with no zone information.
	NaiveLayout = "2006-01-02T15:04:05"

	// DateLayout is a bare calendar date, used for all-day events.
	DateLayout = "2006-01-02"

	// BasicUTCLayout is the compact UTC timestamp format used in
	// recurrence rule parameters and instance identifiers.
	BasicUTCLayout = "20060102T150405Z"
)

// TimeSpec is the start/end time shape the calendar provider expects.
// Exactly one of DateTime or Date is set: DateTime for timed events,
// Date for all-day events. TimeZone is meaningful only alongside a
// DateTime that carries no explicit offset.
type TimeSpec struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// IsAllDay reports whether the spec describes an all-day event.
func (ts TimeSpec) IsAllDay() bool {
	return ts.Date != ""
}

var explicitZoneRe = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})$`)

// HasExplicitZone reports whether s is a datetime that carries its own
// zone information: YYYY-MM-DDTHH:MM:SS followed by Z or a ±HH:MM offset.
func HasExplicitZone(s string) bool {
	return explicitZoneRe.MatchString(s)
}

// ToAbsoluteInstant converts a possibly timezone-naive datetime string to
// an unambiguous RFC3339 instant. Zone-qualified input is returned
// unchanged. Naive input is interpreted as wall-clock time in
// fallbackZone, which self-corrects for daylight saving shifts because
// the zone's rules are consulted for the specific date.
//
// Unparseable input degrades to treating the string as UTC by appending
// a zone marker rather than returning an error; callers pass the result
// to the provider, which reports its own validation failure.
func ToAbsoluteInstant(value, fallbackZone string) string {
	if HasExplicitZone(value) {
		return value
	}

	loc, err := time.LoadLocation(fallbackZone)
	if err != nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(NaiveLayout, value, loc)
	if err != nil {
		return value + "Z"
	}

	return t.Format(time.RFC3339)
}

// BuildTimeSpec converts datetime text into the TimeSpec the provider
// expects:
//
//   - a bare date (no time component) becomes an all-day Date spec
//   - a zone-qualified datetime becomes a DateTime spec with no zone
//   - a naive datetime becomes a DateTime spec carrying fallbackZone,
//     leaving interpretation of the wall-clock time to the provider
func BuildTimeSpec(value, fallbackZone string) TimeSpec {
	if _, err := time.Parse(DateLayout, value); err == nil {
		return TimeSpec{Date: value}
	}
	if HasExplicitZone(value) {
		return TimeSpec{DateTime: value}
	}
	return TimeSpec{DateTime: value, TimeZone: fallbackZone}
}

// BasicUTC renders t in the compact UTC timestamp format
// (YYYYMMDDTHHMMSSZ), truncating sub-second precision.
func BasicUTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(BasicUTCLayout)
}

// InclusiveEndDate converts the provider's exclusive all-day end date to
// the last day the event actually covers, handling month and year
// rollover. Returns endDate unchanged if it does not parse as a date.
func InclusiveEndDate(endDate string) string {
	t, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return endDate
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// ParseInstant parses a zone-qualified RFC3339 instant.
func ParseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
