package conflict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/batch"
)

type fakeLister struct {
	events map[string][]*calendar.Event
	err    error
}

func (f *fakeLister) ListEventsRaw(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[calendarID], nil
}

type fakeBatch struct {
	responses []batch.SubResponse
	err       error
	gotReqs   []batch.SubRequest
}

func (f *fakeBatch) Do(ctx context.Context, reqs []batch.SubRequest) ([]batch.SubResponse, error) {
	f.gotReqs = reqs
	if f.err != nil {
		return nil, f.err
	}
	return f.responses, nil
}

func eventsPage(t *testing.T, events ...*calendar.Event) json.RawMessage {
	t.Helper()
	page := calendar.Events{Items: events}
	raw, err := json.Marshal(&page)
	require.NoError(t, err)
	return raw
}

func newTestService(lister EventLister, runner BatchRunner) *Service {
	return NewService(ServiceConfig{Lister: lister, Batch: runner})
}

func TestCheckConflicts_BlockingDuplicate(t *testing.T) {
	existing := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	existing.Id = "existing1"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {existing},
	}}, nil)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.HasConflicts)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "existing1", result.Duplicates[0].Event.Id)
	assert.InDelta(t, ScoreExactOverlap, result.Duplicates[0].Score, 0.0001)
	assert.Contains(t, result.Duplicates[0].Suggestion, "Update the existing event")
	assert.Equal(t, "primary", result.Duplicates[0].SourceCalendar)
}

func TestCheckConflicts_WarningDuplicateSuggestion(t *testing.T) {
	existing := timedEvent("Weekly Sync with Platform Team", "2024-06-15T10:30:00Z", "2024-06-15T11:30:00Z")
	existing.Id = "existing1"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {existing},
	}}, nil)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	assert.Contains(t, result.Duplicates[0].Suggestion, "Confirm it is intentional")
}

func TestCheckConflicts_OverlapPass(t *testing.T) {
	existing := timedEvent("Dentist", "2024-06-15T10:30:00Z", "2024-06-15T11:30:00Z")
	existing.Id = "existing1"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {existing},
	}}, nil)

	// One hour candidate, thirty minutes consumed.
	candidate := timedEvent("Quarterly Budget Review", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.HasConflicts)
	assert.Empty(t, result.Duplicates)
	require.Len(t, result.Conflicts, 1)

	match := result.Conflicts[0]
	assert.Equal(t, 30*time.Minute, match.Duration)
	assert.Equal(t, 50, match.Percentage)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), match.WindowStart)
	assert.Equal(t, time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC), match.WindowEnd)
}

func TestCheckConflicts_ExcludesSelfAndCancelled(t *testing.T) {
	self := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	self.Id = "candidate"
	cancelled := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	cancelled.Id = "dead"
	cancelled.Status = "cancelled"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {self, cancelled},
	}}, nil)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	candidate.Id = "candidate"

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)

	assert.False(t, result.HasConflicts)
	assert.Empty(t, result.Duplicates)
	assert.Empty(t, result.Conflicts)
}

func TestCheckConflicts_InaccessibleSingleCalendarIsSkipped(t *testing.T) {
	svc := newTestService(&fakeLister{err: errors.New("googleapi: Error 403: forbidden")}, nil)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.HasConflicts)
}

func TestCheckConflicts_MultiCalendarPartialFailure(t *testing.T) {
	first := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	first.Id = "from-cal1"
	third := timedEvent("Dentist", "2024-06-15T10:30:00Z", "2024-06-15T11:30:00Z")
	third.Id = "from-cal3"

	runner := &fakeBatch{responses: []batch.SubResponse{
		{StatusCode: 200, Body: eventsPage(t, first)},
		{StatusCode: 404, RawText: `{"error":{"code":404}}`},
		{StatusCode: 200, Body: eventsPage(t, third)},
	}}

	svc := newTestService(nil, runner)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	opts := DefaultOptions()
	opts.CalendarsToCheck = []string{"cal1", "missing", "cal3"}

	result, err := svc.CheckConflicts(context.Background(), candidate, "cal1", opts)
	require.NoError(t, err)

	// The inaccessible middle calendar never blocks its siblings.
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "cal1", result.Duplicates[0].SourceCalendar)
	require.Len(t, result.Conflicts, 2)

	sources := []string{result.Conflicts[0].SourceCalendar, result.Conflicts[1].SourceCalendar}
	assert.Contains(t, sources, "cal1")
	assert.Contains(t, sources, "cal3")

	// One sub-request per calendar, identical filters.
	require.Len(t, runner.gotReqs, 3)
	for i, id := range []string{"cal1", "missing", "cal3"} {
		assert.Equal(t, "GET", runner.gotReqs[i].Method)
		assert.Contains(t, runner.gotReqs[i].Path, fmt.Sprintf("/calendar/v3/calendars/%s/events?", id))
		assert.Contains(t, runner.gotReqs[i].Path, "singleEvents=true")
		assert.Contains(t, runner.gotReqs[i].Path, "orderBy=startTime")
	}
}

func TestCheckConflicts_BatchTransportFailure(t *testing.T) {
	runner := &fakeBatch{err: &batch.TransportError{Attempts: 4, Err: errors.New("connection reset")}}
	svc := newTestService(nil, runner)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	opts := DefaultOptions()
	opts.CalendarsToCheck = []string{"cal1", "cal2"}

	_, err := svc.CheckConflicts(context.Background(), candidate, "cal1", opts)
	require.Error(t, err)

	var transportErr *batch.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestCheckConflicts_NaiveCandidateTimesResolve(t *testing.T) {
	existing := timedEvent("Dentist", "2024-06-15T17:30:00Z", "2024-06-15T18:30:00Z")
	existing.Id = "existing1"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {existing},
	}}, nil)

	// 10:00 wall clock in Los Angeles during DST is 17:00 UTC.
	candidate := &calendar.Event{
		Summary: "Quarterly Budget Review",
		Start:   &calendar.EventDateTime{DateTime: "2024-06-15T10:00:00", TimeZone: "America/Los_Angeles"},
		End:     &calendar.EventDateTime{DateTime: "2024-06-15T11:00:00", TimeZone: "America/Los_Angeles"},
	}

	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, 30*time.Minute, result.Conflicts[0].Duration)
}

func TestCheckConflicts_MissingTimesRejected(t *testing.T) {
	svc := newTestService(&fakeLister{}, nil)

	_, err := svc.CheckConflicts(context.Background(), &calendar.Event{Summary: "No times"}, "primary", DefaultOptions())
	assert.ErrorContains(t, err, "start")
}

func TestCheckConflicts_PassesCanBeDisabled(t *testing.T) {
	existing := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")
	existing.Id = "existing1"

	svc := newTestService(&fakeLister{events: map[string][]*calendar.Event{
		"primary": {existing},
	}}, nil)

	candidate := timedEvent("Weekly Sync", "2024-06-15T10:00:00Z", "2024-06-15T11:00:00Z")

	opts := Options{CheckDuplicates: false, CheckConflicts: false, DuplicateThreshold: DefaultWarningThreshold}
	result, err := svc.CheckConflicts(context.Background(), candidate, "primary", opts)
	require.NoError(t, err)
	assert.False(t, result.HasConflicts)
}
