package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestToEventSummary_TimedEvent(t *testing.T) {
	event := &calendar.Event{
		Id:          "ev1",
		Summary:     "Weekly Sync",
		Description: "Agenda in doc",
		Location:    "Room 4",
		Status:      "confirmed",
		Start:       &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00-07:00"},
		End:         &calendar.EventDateTime{DateTime: "2024-06-15T11:00:00-07:00"},
		Creator:     &calendar.EventCreator{Email: "creator@example.com"},
		Organizer:   &calendar.EventOrganizer{Email: "organizer@example.com"},
		Attendees: []*calendar.EventAttendee{
			{Email: "a@example.com", ResponseStatus: "accepted"},
			{Email: "b@example.com", ResponseStatus: "declined", Optional: true},
		},
		ConferenceData: &calendar.ConferenceData{
			EntryPoints: []*calendar.EntryPoint{
				{EntryPointType: "phone", Uri: "tel:+1234"},
				{EntryPointType: "video", Uri: "https://meet.google.com/xyz"},
			},
		},
	}

	summary := toEventSummary(event)

	assert.Equal(t, "ev1", summary.ID)
	assert.Equal(t, "Weekly Sync", summary.Summary)
	assert.False(t, summary.AllDay)
	assert.Equal(t, time.Hour, summary.End.Sub(summary.Start))
	assert.Equal(t, "creator@example.com", summary.Creator)
	assert.Equal(t, "organizer@example.com", summary.Organizer)
	require.Len(t, summary.Attendees, 2)
	assert.Equal(t, "declined", summary.Attendees[1].ResponseStatus)
	assert.Equal(t, "https://meet.google.com/xyz", summary.MeetLink)
}

func TestToEventSummary_AllDayEvent(t *testing.T) {
	event := &calendar.Event{
		Id:      "ev2",
		Summary: "Offsite",
		Start:   &calendar.EventDateTime{Date: "2024-06-15"},
		End:     &calendar.EventDateTime{Date: "2024-06-17"},
	}

	summary := toEventSummary(event)

	assert.True(t, summary.AllDay)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), summary.Start)
	// The provider's end date stays exclusive on the summary.
	assert.Equal(t, time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC), summary.End)
}

func TestToEventSummary_RecurrenceFields(t *testing.T) {
	event := &calendar.Event{
		Id:               "ev3_20240615T170000Z",
		Summary:          "Standup",
		RecurringEventId: "ev3",
		Recurrence:       []string{"RRULE:FREQ=DAILY"},
		Start:            &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00-07:00"},
		End:              &calendar.EventDateTime{DateTime: "2024-06-15T10:15:00-07:00"},
	}

	summary := toEventSummary(event)

	assert.Equal(t, "ev3", summary.RecurringEventID)
	assert.Equal(t, []string{"RRULE:FREQ=DAILY"}, summary.Recurrence)
}

func TestEventDateTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		zone  string
		want  *calendar.EventDateTime
	}{
		{
			name:  "bare date becomes all-day",
			value: "2024-06-15",
			zone:  "America/Los_Angeles",
			want:  &calendar.EventDateTime{Date: "2024-06-15"},
		},
		{
			name:  "zone-qualified datetime used as-is",
			value: "2024-06-15T10:00:00-07:00",
			zone:  "Europe/Berlin",
			want:  &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00-07:00"},
		},
		{
			name:  "naive datetime carries fallback zone",
			value: "2024-06-15T10:00:00",
			zone:  "America/Los_Angeles",
			want:  &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00", TimeZone: "America/Los_Angeles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventDateTime(tt.value, tt.zone))
		})
	}
}

func TestToCalendarInfo(t *testing.T) {
	entry := &calendar.CalendarListEntry{
		Id:         "team@example.com",
		Summary:    "Team Calendar",
		TimeZone:   "Europe/Berlin",
		Primary:    false,
		AccessRole: "writer",
	}

	info := toCalendarInfo(entry)

	assert.Equal(t, "team@example.com", info.ID)
	assert.Equal(t, "Team Calendar", info.Summary)
	assert.Equal(t, "Europe/Berlin", info.TimeZone)
	assert.False(t, info.Primary)
	assert.Equal(t, "writer", info.AccessRole)
}

func TestHasTokenForAccountWithProvider_NilProvider(t *testing.T) {
	assert.False(t, HasTokenForAccountWithProvider("default", nil))
}

func TestListEventsRaw_RequestsBatchPageSize(t *testing.T) {
	var query url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer ts.Close()

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication())
	require.NoError(t, err)

	c := &Client{svc: svc}
	_, err = c.ListEventsRaw(context.Background(), "primary",
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The direct path must use the same filters the batch path encodes.
	assert.Equal(t, "250", query.Get("maxResults"))
	assert.Equal(t, "true", query.Get("singleEvents"))
	assert.Equal(t, "startTime", query.Get("orderBy"))
}
