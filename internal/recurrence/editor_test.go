package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		event *calendar.Event
		want  Kind
	}{
		{"recurring", &calendar.Event{Recurrence: []string{"RRULE:FREQ=DAILY"}}, KindRecurring},
		{"single", &calendar.Event{}, KindSingle},
		{"nil event", nil, KindSingle},
		{"empty rule set", &calendar.Event{Recurrence: []string{}}, KindSingle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.event))
		})
	}
}

func TestInstanceID(t *testing.T) {
	start, err := time.Parse(time.RFC3339, "2024-06-15T10:00:00-07:00")
	require.NoError(t, err)

	assert.Equal(t, "event123_20240615T170000Z", InstanceID("event123", start))
}

func TestUntilBoundary(t *testing.T) {
	start, err := time.Parse(time.RFC3339, "2024-07-01T17:00:00Z")
	require.NoError(t, err)

	// Fixed 24h subtraction, not a calendar-day snap.
	assert.Equal(t, "20240630T170000Z", UntilBoundary(start))
}

func TestRewriteWithUntil(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		until string
		want  []string
	}{
		{
			name:  "count replaced by until",
			lines: []string{"RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=10"},
			until: "20240630T170000Z",
			want:  []string{"RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20240630T170000Z"},
		},
		{
			name:  "existing until replaced",
			lines: []string{"RRULE:FREQ=DAILY;UNTIL=20250101T000000Z;INTERVAL=2"},
			until: "20240630T170000Z",
			want:  []string{"RRULE:FREQ=DAILY;INTERVAL=2;UNTIL=20240630T170000Z"},
		},
		{
			name: "exdate lines pass through byte-identical in position",
			lines: []string{
				"EXDATE;TZID=America/Los_Angeles:20240610T100000",
				"RRULE:FREQ=WEEKLY;BYDAY=MO",
				"EXDATE:20240617T170000Z",
			},
			until: "20240630T170000Z",
			want: []string{
				"EXDATE;TZID=America/Los_Angeles:20240610T100000",
				"RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20240630T170000Z",
				"EXDATE:20240617T170000Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteWithUntil(tt.lines, tt.until)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteWithUntil_Errors(t *testing.T) {
	_, err := RewriteWithUntil(nil, "20240630T170000Z")
	assert.ErrorContains(t, err, "empty")

	_, err = RewriteWithUntil([]string{"EXDATE:20240617T170000Z"}, "20240630T170000Z")
	assert.ErrorContains(t, err, "no RRULE")

	_, err = RewriteWithUntil([]string{"RRULE:FREQ=DAILY", "RRULE:FREQ=WEEKLY"}, "20240630T170000Z")
	assert.ErrorContains(t, err, "multiple RRULE")
}

func TestRewriteWithUntil_DoesNotMutateInput(t *testing.T) {
	lines := []string{"RRULE:FREQ=DAILY;COUNT=5"}
	_, err := RewriteWithUntil(lines, "20240630T170000Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"RRULE:FREQ=DAILY;COUNT=5"}, lines)
}

func TestPreservedDurationEnd(t *testing.T) {
	event := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00-07:00"},
		End:   &calendar.EventDateTime{DateTime: "2024-06-15T11:30:00-07:00"},
	}

	newStart, err := time.Parse(time.RFC3339, "2024-08-01T09:00:00+02:00")
	require.NoError(t, err)

	end, err := PreservedDurationEnd(newStart, event)
	require.NoError(t, err)

	// Duration preserved across zones: result - newStart == 90m.
	assert.Equal(t, 90*time.Minute, end.Sub(newStart))
}

func TestPreservedDurationEnd_AllDay(t *testing.T) {
	event := &calendar.Event{
		Start: &calendar.EventDateTime{Date: "2024-06-15"},
		End:   &calendar.EventDateTime{Date: "2024-06-17"},
	}

	newStart := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	end, err := PreservedDurationEnd(newStart, event)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, end.Sub(newStart))
}

func TestPreservedDurationEnd_MissingTimes(t *testing.T) {
	_, err := PreservedDurationEnd(time.Now(), &calendar.Event{
		End: &calendar.EventDateTime{DateTime: "2024-06-15T11:00:00Z"},
	})
	assert.ErrorContains(t, err, "start")

	_, err = PreservedDurationEnd(time.Now(), &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00Z"},
	})
	assert.ErrorContains(t, err, "end")
}

func TestStripIdentityFields(t *testing.T) {
	original := &calendar.Event{
		Id:          "abc123",
		Etag:        `"etag-value"`,
		ICalUID:     "abc123@google.com",
		Created:     "2024-01-01T00:00:00Z",
		Updated:     "2024-02-01T00:00:00Z",
		HtmlLink:    "https://calendar.google.com/event?eid=abc",
		HangoutLink: "https://meet.google.com/xyz",
		Summary:     "Team sync",
		Description: "Weekly sync",
		Location:    "Room 4",
		Start:       &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2024-06-15T11:00:00Z"},
		Attendees:   []*calendar.EventAttendee{{Email: "a@example.com"}},
		Recurrence:  []string{"RRULE:FREQ=WEEKLY"},
	}

	stripped := StripIdentityFields(original)

	assert.Empty(t, stripped.Id)
	assert.Empty(t, stripped.Etag)
	assert.Empty(t, stripped.ICalUID)
	assert.Empty(t, stripped.Created)
	assert.Empty(t, stripped.Updated)
	assert.Empty(t, stripped.HtmlLink)
	assert.Empty(t, stripped.HangoutLink)

	assert.Equal(t, "Team sync", stripped.Summary)
	assert.Equal(t, "Weekly sync", stripped.Description)
	assert.Equal(t, "Room 4", stripped.Location)
	assert.Equal(t, original.Start, stripped.Start)
	assert.Equal(t, original.Attendees, stripped.Attendees)
	assert.Equal(t, original.Recurrence, stripped.Recurrence)

	// Shallow copy: the original keeps its identity.
	assert.Equal(t, "abc123", original.Id)
}
