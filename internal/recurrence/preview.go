package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const defaultPreviewLimit = 25

// PreviewOccurrences expands a recurrence rule set into its concrete
// occurrence starts within [rangeStart, rangeEnd], honoring EXDATE
// lines. The result is capped at limit entries (or a default cap when
// limit is zero) so unbounded rules cannot explode the output.
func PreviewOccurrences(ruleLines []string, dtstart, rangeStart, rangeEnd time.Time, limit int) ([]time.Time, error) {
	if rangeEnd.Before(rangeStart) {
		return nil, fmt.Errorf("preview range end is before its start")
	}
	if limit <= 0 {
		limit = defaultPreviewLimit
	}

	ruleLine := ""
	var exDates []time.Time
	for _, line := range ruleLines {
		switch {
		case strings.HasPrefix(line, rulePrefix):
			if ruleLine != "" {
				return nil, fmt.Errorf("recurrence rule set has multiple RRULE lines")
			}
			ruleLine = line
		case strings.HasPrefix(line, "EXDATE"):
			exDates = append(exDates, parseExDates(line, dtstart.Location())...)
		}
	}
	if ruleLine == "" {
		return nil, fmt.Errorf("recurrence rule set has no RRULE line")
	}

	r, err := rrule.StrToRRule(strings.TrimPrefix(ruleLine, rulePrefix+":"))
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE: %w", err)
	}
	r.DTStart(dtstart)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates {
		set.ExDate(ex.In(dtstart.Location()))
	}

	occurrences := set.Between(rangeStart.In(dtstart.Location()), rangeEnd.In(dtstart.Location()), true)
	if len(occurrences) > limit {
		occurrences = occurrences[:limit]
	}
	return occurrences, nil
}

// parseExDates extracts the date values from an EXDATE line. Values in
// compact UTC form parse directly; naive compact values resolve in loc.
// Unparseable values are skipped.
func parseExDates(line string, loc *time.Location) []time.Time {
	_, values, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}

	var out []time.Time
	for _, v := range strings.Split(values, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if t, err := time.Parse("20060102T150405Z", v); err == nil {
			out = append(out, t)
			continue
		}
		if t, err := time.ParseInLocation("20060102T150405", v, loc); err == nil {
			out = append(out, t)
			continue
		}
		if t, err := time.ParseInLocation("20060102", v, loc); err == nil {
			out = append(out, t)
		}
	}
	return out
}
