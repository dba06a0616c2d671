package calendar_tools

import (
	"strings"
	"testing"
	"time"

	calendar_v3 "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/calendar"
)

func eventSummaryFixture(allDay bool) calendar.EventSummary {
	return calendar.EventSummary{
		ID:      "evt1",
		Summary: "Team sync",
		Start:   time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC),
		AllDay:  allDay,
	}
}

func TestEventStartInstant_Timed(t *testing.T) {
	event := &calendar_v3.Event{
		Start: &calendar_v3.EventDateTime{DateTime: "2024-06-15T10:00:00-07:00"},
	}

	got, err := eventStartInstant(event)
	if err != nil {
		t.Fatalf("eventStartInstant() error = %v", err)
	}

	want := time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("eventStartInstant() = %v, want %v", got, want)
	}
}

func TestEventStartInstant_AllDay(t *testing.T) {
	event := &calendar_v3.Event{
		Start: &calendar_v3.EventDateTime{Date: "2024-06-15"},
	}

	got, err := eventStartInstant(event)
	if err != nil {
		t.Fatalf("eventStartInstant() error = %v", err)
	}

	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 15 {
		t.Errorf("eventStartInstant() = %v, want 2024-06-15", got)
	}
}

func TestEventStartInstant_Missing(t *testing.T) {
	for _, event := range []*calendar_v3.Event{
		{},
		{Start: &calendar_v3.EventDateTime{}},
	} {
		if _, err := eventStartInstant(event); err == nil {
			t.Errorf("eventStartInstant(%+v) expected error", event)
		}
	}
}

func TestRequireInstantArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr bool
	}{
		{
			name:    "valid RFC3339",
			args:    map[string]interface{}{"rangeStart": "2024-06-01T00:00:00Z"},
			wantErr: false,
		},
		{
			name:    "missing",
			args:    map[string]interface{}{},
			wantErr: true,
		},
		{
			name:    "empty string",
			args:    map[string]interface{}{"rangeStart": ""},
			wantErr: true,
		},
		{
			name:    "naive datetime rejected",
			args:    map[string]interface{}{"rangeStart": "2024-06-01T00:00:00"},
			wantErr: true,
		},
		{
			name:    "non-string",
			args:    map[string]interface{}{"rangeStart": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := requireInstantArg(tt.args, "rangeStart")
			if (err != nil) != tt.wantErr {
				t.Errorf("requireInstantArg() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConflictEventTime(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		zone         string
		wantDateTime string
		wantDate     string
		wantZone     string
	}{
		{
			name:         "zone-qualified datetime",
			value:        "2024-06-15T10:00:00-07:00",
			zone:         "America/New_York",
			wantDateTime: "2024-06-15T10:00:00-07:00",
		},
		{
			name:         "naive datetime carries fallback zone",
			value:        "2024-06-15T10:00:00",
			zone:         "America/New_York",
			wantDateTime: "2024-06-15T10:00:00",
			wantZone:     "America/New_York",
		},
		{
			name:     "bare date becomes all-day",
			value:    "2024-06-15",
			zone:     "UTC",
			wantDate: "2024-06-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conflictEventTime(tt.value, tt.zone)
			if got.DateTime != tt.wantDateTime {
				t.Errorf("DateTime = %q, want %q", got.DateTime, tt.wantDateTime)
			}
			if got.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", got.Date, tt.wantDate)
			}
			if got.TimeZone != tt.wantZone {
				t.Errorf("TimeZone = %q, want %q", got.TimeZone, tt.wantZone)
			}
		})
	}
}

func TestFormatEventTimesIndentation(t *testing.T) {
	timed := eventSummaryFixture(false)
	got := formatEventTimes(timed, "   ")
	if !strings.Contains(got, "   Start: 2024-06-15T10:00:00Z") {
		t.Errorf("timed formatting missing indented start line:\n%s", got)
	}

	allDay := eventSummaryFixture(true)
	got = formatEventTimes(allDay, "")
	if !strings.Contains(got, "Start: 2024-06-15 (all day)") {
		t.Errorf("all-day formatting missing date-only start line:\n%s", got)
	}
}
