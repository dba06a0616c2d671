package conflict

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/batch"
	"github.com/calendops/calendops/internal/logging"
	"github.com/calendops/calendops/internal/timeutil"
)

// Default threshold constants. They are configuration inputs, not
// package-wide singletons: callers pass them into NewService.
const (
	DefaultWarningThreshold  = 0.7
	DefaultBlockingThreshold = 0.95
)

const listPageSize = 250

// EventLister fetches raw provider events for one calendar in a time
// window. Implemented by the calendar client.
type EventLister interface {
	ListEventsRaw(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
}

// BatchRunner submits several sub-requests as one exchange. Implemented
// by the batch codec.
type BatchRunner interface {
	Do(ctx context.Context, reqs []batch.SubRequest) ([]batch.SubResponse, error)
}

// Thresholds are the similarity levels at which a duplicate match
// changes its suggestion from "confirm intent" to "treat as replace".
type Thresholds struct {
	Warning  float64
	Blocking float64
}

// ServiceConfig wires the collaborators of a Service.
type ServiceConfig struct {
	Lister     EventLister
	Batch      BatchRunner
	Thresholds Thresholds
	Logger     *slog.Logger
}

// Service checks a candidate event for duplicates and overlaps across
// calendars.
type Service struct {
	lister     EventLister
	batch      BatchRunner
	thresholds Thresholds
	logger     *slog.Logger
}

// NewService creates a conflict detection service. Zero thresholds
// select the defaults.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Thresholds.Warning == 0 {
		cfg.Thresholds.Warning = DefaultWarningThreshold
	}
	if cfg.Thresholds.Blocking == 0 {
		cfg.Thresholds.Blocking = DefaultBlockingThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		lister:     cfg.Lister,
		batch:      cfg.Batch,
		thresholds: cfg.Thresholds,
		logger:     cfg.Logger,
	}
}

type sourcedEvent struct {
	event    *calendar.Event
	calendar string
}

// CheckConflicts scans the configured calendars for events that
// duplicate or overlap the candidate. The candidate must carry start
// and end times. A calendar that cannot be read is skipped; one
// inaccessible calendar never fails the overall check.
func (s *Service) CheckConflicts(ctx context.Context, candidate *calendar.Event, primaryCalendarID string, opts Options) (*Result, error) {
	windowStart, windowEnd, err := candidateWindow(candidate)
	if err != nil {
		return nil, err
	}

	calendars := opts.CalendarsToCheck
	if len(calendars) == 0 {
		calendars = []string{primaryCalendarID}
	}
	if opts.DuplicateThreshold == 0 {
		opts.DuplicateThreshold = s.thresholds.Warning
	}

	existing, err := s.fetchEvents(ctx, calendars, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	if opts.CheckDuplicates {
		for _, se := range existing {
			if se.event.Id == candidate.Id || se.event.Status == "cancelled" {
				continue
			}
			score := Score(candidate, se.event)
			if score < opts.DuplicateThreshold {
				continue
			}
			result.Duplicates = append(result.Duplicates, DuplicateMatch{
				Event:          se.event,
				Score:          score,
				Suggestion:     s.suggestion(score),
				SourceCalendar: se.calendar,
			})
		}
	}

	if opts.CheckConflicts {
		for _, se := range existing {
			if se.event.Id == candidate.Id || se.event.Status == "cancelled" {
				continue
			}
			if !opts.IncludeDeclinedEvents && requesterDeclined(se.event) {
				continue
			}
			evStart, evEnd, ok := eventWindow(se.event)
			if !ok || !Overlaps(windowStart, windowEnd, evStart, evEnd) {
				continue
			}
			overlapStart := laterOf(windowStart, evStart)
			overlapEnd := earlierOf(windowEnd, evEnd)
			result.Conflicts = append(result.Conflicts, OverlapMatch{
				Event:          se.event,
				Duration:       OverlapDuration(windowStart, windowEnd, evStart, evEnd),
				Percentage:     OverlapPercentage(windowStart, windowEnd, evStart, evEnd),
				WindowStart:    overlapStart,
				WindowEnd:      overlapEnd,
				SourceCalendar: se.calendar,
			})
		}
	}

	result.HasConflicts = len(result.Duplicates) > 0 || len(result.Conflicts) > 0
	return result, nil
}

func (s *Service) suggestion(score float64) string {
	if score >= s.thresholds.Blocking {
		return "This looks like the same event. Update the existing event instead of creating a duplicate."
	}
	return "This event closely resembles an existing one. Confirm it is intentional before creating it."
}

// fetchEvents retrieves events per calendar in the window: a direct
// list call for one calendar, a single batch exchange for several.
// Calendars that error are logged and skipped.
func (s *Service) fetchEvents(ctx context.Context, calendars []string, start, end time.Time) ([]sourcedEvent, error) {
	if len(calendars) == 1 {
		events, err := s.lister.ListEventsRaw(ctx, calendars[0], start, end)
		if err != nil {
			s.logger.Warn("skipping inaccessible calendar",
				slog.String("calendar", calendars[0]),
				logging.Err(err))
			return nil, nil
		}
		out := make([]sourcedEvent, 0, len(events))
		for _, ev := range events {
			out = append(out, sourcedEvent{event: ev, calendar: calendars[0]})
		}
		return out, nil
	}

	reqs := make([]batch.SubRequest, 0, len(calendars))
	for _, id := range calendars {
		reqs = append(reqs, batch.SubRequest{
			Method: "GET",
			Path:   eventsPath(id, start, end),
		})
	}

	parts, err := s.batch.Do(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for conflict check: %w", err)
	}

	// Responses correlate to calendars strictly by position.
	var out []sourcedEvent
	for i, part := range parts {
		if i >= len(calendars) {
			break
		}
		id := calendars[i]
		if !part.OK() {
			s.logger.Warn("skipping inaccessible calendar",
				slog.String("calendar", id),
				slog.Int("status", part.StatusCode))
			continue
		}
		var page calendar.Events
		if err := part.Decode(&page); err != nil {
			s.logger.Warn("skipping calendar with unparseable response",
				slog.String("calendar", id),
				logging.Err(err))
			continue
		}
		for _, ev := range page.Items {
			out = append(out, sourcedEvent{event: ev, calendar: id})
		}
	}
	return out, nil
}

// eventsPath builds the events list path for one calendar with the same
// filters a direct list call would use.
func eventsPath(calendarID string, start, end time.Time) string {
	q := url.Values{}
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("timeMin", start.Format(time.RFC3339))
	q.Set("timeMax", end.Format(time.RFC3339))
	q.Set("maxResults", strconv.Itoa(listPageSize))
	return "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events?" + q.Encode()
}

// candidateWindow resolves the candidate's start and end to absolute
// instants. Naive datetimes resolve against the TimeSpec's own zone;
// the window is never widened.
func candidateWindow(candidate *calendar.Event) (time.Time, time.Time, error) {
	start, err := resolveInstant(candidate.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("candidate event has no usable start: %w", err)
	}
	end, err := resolveInstant(candidate.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("candidate event has no usable end: %w", err)
	}
	return start, end, nil
}

func resolveInstant(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing time field")
	}
	if edt.DateTime != "" {
		value := edt.DateTime
		if !timeutil.HasExplicitZone(value) {
			value = timeutil.ToAbsoluteInstant(value, edt.TimeZone)
		}
		return timeutil.ParseInstant(value)
	}
	if edt.Date != "" {
		return time.Parse(timeutil.DateLayout, edt.Date)
	}
	return time.Time{}, fmt.Errorf("missing time field")
}

// requesterDeclined is the hook for filtering events the requester has
// declined. Deciding "declined by whom" needs the requester's identity,
// which is not threaded through yet, so the hook currently keeps every
// event.
func requesterDeclined(_ *calendar.Event) bool {
	return false
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func earlierOf(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
