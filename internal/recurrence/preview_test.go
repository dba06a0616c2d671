package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewOccurrences_Weekly(t *testing.T) {
	dtstart := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) // a Monday

	occurrences, err := PreviewOccurrences(
		[]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		dtstart,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		0,
	)
	require.NoError(t, err)
	require.Len(t, occurrences, 4)

	assert.Equal(t, dtstart, occurrences[0])
	assert.Equal(t, dtstart.AddDate(0, 0, 7), occurrences[1])
	assert.Equal(t, dtstart.AddDate(0, 0, 21), occurrences[3])
}

func TestPreviewOccurrences_HonorsExDate(t *testing.T) {
	dtstart := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	occurrences, err := PreviewOccurrences(
		[]string{
			"RRULE:FREQ=WEEKLY;BYDAY=MO",
			"EXDATE:20240610T100000Z",
		},
		dtstart,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		0,
	)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)

	for _, occ := range occurrences {
		assert.NotEqual(t, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), occ)
	}
}

func TestPreviewOccurrences_CapsUnboundedRules(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	occurrences, err := PreviewOccurrences(
		[]string{"RRULE:FREQ=DAILY"},
		dtstart,
		dtstart,
		dtstart.AddDate(1, 0, 0),
		10,
	)
	require.NoError(t, err)
	assert.Len(t, occurrences, 10)
}

func TestPreviewOccurrences_Errors(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	_, err := PreviewOccurrences([]string{"EXDATE:20240610T100000Z"}, dtstart, dtstart, dtstart.AddDate(0, 1, 0), 0)
	assert.ErrorContains(t, err, "no RRULE")

	_, err = PreviewOccurrences([]string{"RRULE:FREQ=DAILY"}, dtstart, dtstart.AddDate(0, 1, 0), dtstart, 0)
	assert.ErrorContains(t, err, "range")

	_, err = PreviewOccurrences([]string{"RRULE:FREQ=SOMETIMES"}, dtstart, dtstart, dtstart.AddDate(0, 1, 0), 0)
	assert.ErrorContains(t, err, "invalid RRULE")
}
