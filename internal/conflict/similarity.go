package conflict

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/timeutil"
)

// Similarity scores produced by the decision table.
const (
	ScoreKindMismatch   = 0.2
	ScoreExactOverlap   = 0.95
	ScoreSimilarOverlap = 0.7
	ScoreExactSameDay   = 0.6
	ScoreExactOtherDay  = 0.4
	ScoreSimilarOnly    = 0.3
	ScoreUnrelated      = 0.1
)

// Score rates how likely two events describe the same real-world
// appointment. It is a deterministic decision table evaluated top-down,
// first match wins:
//
//  1. all-day/timed kind mismatch
//  2. exact title and time overlap
//  3. similar title and time overlap
//  4. exact title, same calendar day, no overlap
//  5. exact title, different day
//  6. similar title only
//  7. otherwise
func Score(a, b *calendar.Event) float64 {
	if isAllDay(a) != isAllDay(b) {
		// Different kinds are never duplicates regardless of title.
		return ScoreKindMismatch
	}

	exact := titlesEqual(a.Summary, b.Summary)
	similar := titlesSimilar(a.Summary, b.Summary)

	aStart, aEnd, aOK := eventWindow(a)
	bStart, bEnd, bOK := eventWindow(b)
	overlap := aOK && bOK && Overlaps(aStart, aEnd, bStart, bEnd)

	switch {
	case exact && overlap:
		return ScoreExactOverlap
	case similar && overlap:
		return ScoreSimilarOverlap
	case exact && aOK && bOK && sameCalendarDay(aStart, bStart):
		return ScoreExactSameDay
	case exact:
		return ScoreExactOtherDay
	case similar:
		return ScoreSimilarOnly
	default:
		return ScoreUnrelated
	}
}

// IsDuplicate reports whether the score reaches the given threshold.
func IsDuplicate(a, b *calendar.Event, threshold float64) bool {
	return Score(a, b) >= threshold
}

// normalizeTitle lowercases and collapses interior whitespace so that
// comparisons are case and spacing insensitive.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func titlesEqual(a, b string) bool {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	return na != "" && na == nb
}

// titlesSimilar reports whether one normalized title contains the
// other, or at least half of the significant words (longer than three
// characters) are shared.
func titlesSimilar(a, b string) bool {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	aWords := significantWords(na)
	bWords := significantWords(nb)
	if len(aWords) == 0 || len(bWords) == 0 {
		return false
	}

	shared := 0
	for w := range aWords {
		if bWords[w] {
			shared++
		}
	}
	longest := len(aWords)
	if len(bWords) > longest {
		longest = len(bWords)
	}
	return float64(shared)/float64(longest) >= 0.5
}

func significantWords(normalized string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}

func isAllDay(e *calendar.Event) bool {
	return e.Start != nil && e.Start.Date != ""
}

// eventWindow resolves an event's start and end to absolute instants.
// All-day dates resolve to UTC midnights, preserving the provider's
// exclusive end-date semantics.
func eventWindow(e *calendar.Event) (start, end time.Time, ok bool) {
	start, sOK := instantOf(e.Start)
	end, eOK := instantOf(e.End)
	return start, end, sOK && eOK
}

func instantOf(edt *calendar.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		return t, err == nil
	}
	if edt.Date != "" {
		t, err := time.Parse(timeutil.DateLayout, edt.Date)
		return t, err == nil
	}
	return time.Time{}, false
}

// sameCalendarDay compares the UTC calendar date of two instants.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
