package conflict

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Events that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapDuration returns the length of the intersection of the two
// intervals, or zero when they do not overlap.
func OverlapDuration(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if d := end.Sub(start); d > 0 {
		return d
	}
	return 0
}

// OverlapPercentage returns how much of the FIRST interval the overlap
// consumes, rounded to whole percent. The asymmetry is intentional: the
// caller asks "how much of this event is blocked", not a symmetric
// similarity measure.
func OverlapPercentage(aStart, aEnd, bStart, bEnd time.Time) int {
	total := aEnd.Sub(aStart)
	if total <= 0 {
		return 0
	}
	overlap := OverlapDuration(aStart, aEnd, bStart, bEnd)
	return int(math.Round(float64(overlap) / float64(total) * 100))
}

// FormatDuration renders a duration for humans, largest unit first
// among days, hours and minutes, with no fractional units.
// Sub-minute durations render as "0 minutes".
func FormatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, pluralize(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
