package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calendops/calendops/internal/google"
)

// Client wraps the Google Calendar service
type Client struct {
	svc           *calendar.Service
	account       string // The account this client is associated with
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	provider := google.NewFileTokenProvider()
	return HasTokenForAccountWithProvider(account, provider)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account
// The OAuth token is retrieved from the provided token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	// Get token from the provided provider
	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	// Create OAuth2 config and token source
	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)

	// Create HTTP client with the token
	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Calendar client with OAuth2 authentication for a specific account
// Uses the default file-based token provider for backward compatibility
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	provider := google.NewFileTokenProvider()
	return NewClientForAccountWithProvider(ctx, account, provider)
}

// NewClient creates a new Calendar client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// NewClientWithProvider creates a new Calendar client with OAuth2 authentication for the default account
// using the provided token provider
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, "default", provider)
}

// ListEvents lists events in a calendar within a time range
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// rawListPageSize caps ListEventsRaw responses at the same page size
// the batch exchange path requests, so the direct and batched conflict
// scans see identical result windows.
const rawListPageSize = 250

// ListEventsRaw lists events in a time window and returns the full
// provider records, with status, recurrence and attendee response data
// intact. The conflict engine consumes these.
func (c *Client) ListEventsRaw(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	events, err := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(rawListPageSize).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events.Items, nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// GetEventRaw retrieves the full provider record of an event. Series
// editing needs the raw recurrence lines and identity fields.
func (c *Client) GetEventRaw(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		EventType:   input.EventType,
		Start:       eventDateTime(input.Start, input.TimeZone),
		End:         eventDateTime(input.End, input.TimeZone),
	}

	// Set attendees
	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	// Set recurrence rules
	if len(input.Recurrence) > 0 {
		event.Recurrence = input.Recurrence
	}

	// Set guest permissions
	event.GuestsCanModify = input.GuestsCanModify
	if input.GuestsCanInviteOthers {
		guestsCanInvite := true
		event.GuestsCanInviteOthers = &guestsCanInvite
	}
	if input.GuestsCanSeeOtherGuests {
		guestsCanSee := true
		event.GuestsCanSeeOtherGuests = &guestsCanSee
	}

	// Add conference data (Google Meet)
	call := c.svc.Events.Insert(calendarID, event).Context(ctx)
	if input.UseDefaultConferenceData {
		call = call.ConferenceDataVersion(1)
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("meet-%d", time.Now().Unix()),
			},
		}
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// InsertEventRaw inserts a pre-built provider record as a new event.
// Used to re-insert a detached copy after identity stripping.
func (c *Client) InsertEventRaw(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return created, nil
}

// UpdateEvent updates an existing calendar event
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*EventSummary, error) {
	// Get the existing event first
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	// Update fields
	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if input.EventType != "" {
		existing.EventType = input.EventType
	}

	zone := input.TimeZone
	if zone == "" {
		zone = "UTC"
	}

	// Update times if provided
	if input.Start != "" {
		existing.Start = eventDateTime(input.Start, zone)
	}
	if input.End != "" {
		existing.End = eventDateTime(input.End, zone)
	}

	// Update attendees if provided
	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		existing.Attendees = attendees
	}

	// Update recurrence if provided
	if len(input.Recurrence) > 0 {
		existing.Recurrence = input.Recurrence
	}

	// Update guest permissions
	existing.GuestsCanModify = input.GuestsCanModify
	if input.GuestsCanInviteOthers {
		guestsCanInvite := true
		existing.GuestsCanInviteOthers = &guestsCanInvite
	}
	if input.GuestsCanSeeOtherGuests {
		guestsCanSee := true
		existing.GuestsCanSeeOtherGuests = &guestsCanSee
	}

	// Update the event
	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// PatchEventRaw sends a sparse patch for an event. Only the fields set
// on the patch record change; everything else stays as stored.
func (c *Client) PatchEventRaw(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	updated, err := c.svc.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch event: %w", err)
	}
	return updated, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}

	return calendars, nil
}

// GetCalendar retrieves information about a specific calendar
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	entry, err := c.svc.CalendarList.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(entry)
	return &info, nil
}

// GetPrimaryCalendar retrieves information about the primary calendar
func (c *Client) GetPrimaryCalendar(ctx context.Context) (*CalendarInfo, error) {
	return c.GetCalendar(ctx, "primary")
}

// QueryFreeBusy checks availability for calendars in a time range
func (c *Client) QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	var infos []FreeBusyInfo
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{
			Calendar: calID,
		}

		// Add busy time ranges
		for _, busy := range cal.Busy {
			start, _ := time.Parse(time.RFC3339, busy.Start)
			end, _ := time.Parse(time.RFC3339, busy.End)
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}

		// Add errors if any
		for _, err := range cal.Errors {
			info.Errors = append(info.Errors, err.Reason)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// FindAvailableSlots finds available time slots for scheduling a meeting
// It checks the availability of all specified attendees and returns slots where everyone is free
func (c *Client) FindAvailableSlots(ctx context.Context, attendees []string, duration time.Duration, timeMin, timeMax time.Time) ([]AvailableSlot, error) {
	// Query freebusy for all attendees
	freeBusyInfos, err := c.QueryFreeBusy(ctx, timeMin, timeMax, attendees)
	if err != nil {
		return nil, err
	}

	// Merge all busy times into a single list
	var allBusyTimes []TimeRange
	for _, info := range freeBusyInfos {
		allBusyTimes = append(allBusyTimes, info.Busy...)
	}

	// Find gaps in busy times
	var availableSlots []AvailableSlot

	currentTime := timeMin
	for currentTime.Add(duration).Before(timeMax) || currentTime.Add(duration).Equal(timeMax) {
		slotEnd := currentTime.Add(duration)

		// Check if this slot overlaps with any busy time
		isFree := true
		for _, busy := range allBusyTimes {
			if (currentTime.Before(busy.End) || currentTime.Equal(busy.End)) &&
				(slotEnd.After(busy.Start) || slotEnd.Equal(busy.Start)) {
				isFree = false
				// Skip to the end of this busy period
				if busy.End.After(currentTime) {
					currentTime = busy.End
				}
				break
			}
		}

		if isFree {
			availableSlots = append(availableSlots, AvailableSlot{
				Start:    currentTime,
				End:      slotEnd,
				Duration: duration,
			})
			// Move to next potential slot (15-minute increments)
			currentTime = currentTime.Add(15 * time.Minute)
		}
	}

	return availableSlots, nil
}

// GetGoogleMeetLink retrieves the Google Meet link from an event
func (c *Client) GetGoogleMeetLink(ctx context.Context, calendarID, eventID string) (string, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get event: %w", err)
	}

	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri, nil
			}
		}
	}

	return "", nil
}
