package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendar_v3 "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/recurrence"
	"github.com/calendops/calendops/internal/server"
	"github.com/calendops/calendops/internal/timeutil"
	"github.com/calendops/calendops/internal/tools/common"
)

// RegisterRecurrenceTools registers recurring-event tools with the MCP server
func RegisterRecurrenceTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Preview recurrence tool (read-only, always available)
	previewTool := mcp.NewTool("calendar_preview_recurrence",
		mcp.WithDescription("Expand a recurring event's rule set to its concrete occurrence times within a range, honoring EXDATE exclusions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the recurring series to expand"),
		),
		mcp.WithString("rangeStart",
			mcp.Required(),
			mcp.Description("Start of the preview range (RFC3339 format)"),
		),
		mcp.WithString("rangeEnd",
			mcp.Required(),
			mcp.Description("End of the preview range (RFC3339 format)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of occurrences to return (default: 25)"),
		),
	)

	s.AddTool(previewTool, common.InstrumentedToolHandlerWithService(
		"calendar_preview_recurrence", "calendar", "query", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePreviewRecurrence(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// End series before date tool
	endSeriesTool := mcp.NewTool("calendar_end_series_before",
		mcp.WithDescription("Stop a recurring series before a given occurrence by rewriting its rule with an UNTIL boundary. Earlier occurrences and their exceptions are preserved."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the recurring series"),
		),
		mcp.WithString("before",
			mcp.Required(),
			mcp.Description("Start time of the first occurrence to remove (RFC3339, or naive datetime resolved against timeZone)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone for a naive 'before' value (e.g., 'America/New_York'). Defaults to UTC."),
		),
	)

	s.AddTool(endSeriesTool, common.InstrumentedToolHandlerWithService(
		"calendar_end_series_before", "calendar", "patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEndSeriesBefore(ctx, request, sc)
		}))

	// Edit single instance tool
	editInstanceTool := mcp.NewTool("calendar_edit_event_instance",
		mcp.WithDescription("Edit a single occurrence of a recurring series without touching the rest of the series"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the recurring series the instance belongs to"),
		),
		mcp.WithString("originalStart",
			mcp.Required(),
			mcp.Description("The instance's original (unmodified) start time (RFC3339, or naive datetime resolved against timeZone)"),
		),
		mcp.WithString("summary",
			mcp.Description("New title for this occurrence"),
		),
		mcp.WithString("description",
			mcp.Description("New description for this occurrence"),
		),
		mcp.WithString("location",
			mcp.Description("New location for this occurrence"),
		),
		mcp.WithString("start",
			mcp.Description("New start time for this occurrence: RFC3339, naive datetime, or bare date"),
		),
		mcp.WithString("end",
			mcp.Description("New end time for this occurrence, same formats as start"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone for naive datetimes. Defaults to the series' own zone. Supplying only timeZone changes the display zone without moving the occurrence."),
		),
		mcp.WithString("attendees",
			mcp.Description("New comma-separated list of attendee email addresses for this occurrence"),
		),
	)

	s.AddTool(editInstanceTool, common.InstrumentedToolHandlerWithService(
		"calendar_edit_event_instance", "calendar", "patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEditEventInstance(ctx, request, sc)
		}))

	// Duplicate event tool
	duplicateTool := mcp.NewTool("calendar_duplicate_event",
		mcp.WithDescription("Create a detached copy of an existing event, optionally on another calendar or at a new start time with the original duration preserved"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID the source event lives on (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to duplicate"),
		),
		mcp.WithString("targetCalendarId",
			mcp.Description("Calendar to create the copy on (default: same as calendarId)"),
		),
		mcp.WithString("summary",
			mcp.Description("Title for the copy (default: the original title)"),
		),
		mcp.WithString("start",
			mcp.Description("New start time for the copy (RFC3339). The end moves with it so the original duration is preserved."),
		),
	)

	s.AddTool(duplicateTool, common.InstrumentedToolHandlerWithService(
		"calendar_duplicate_event", "calendar", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDuplicateEvent(ctx, request, sc)
		}))

	return nil
}

func handlePreviewRecurrence(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	rangeStart, err := requireInstantArg(args, "rangeStart")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rangeEnd, err := requireInstantArg(args, "rangeEnd")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := 0
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEventRaw(ctx, calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	if recurrence.Classify(event) != recurrence.KindRecurring {
		return mcp.NewToolResultError(fmt.Sprintf("Event %s is not a recurring series", eventID)), nil
	}

	dtstart, err := eventStartInstant(event)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Event has no usable start time: %v", err)), nil
	}

	occurrences, err := recurrence.PreviewOccurrences(event.Recurrence, dtstart, rangeStart, rangeEnd, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to expand recurrence: %v", err)), nil
	}

	if len(occurrences) == 0 {
		return mcp.NewToolResultText("No occurrences fall within the requested range"), nil
	}

	result := fmt.Sprintf("Series %q has %d occurrence(s) between %s and %s:\n\n",
		event.Summary, len(occurrences),
		rangeStart.Format(time.RFC3339), rangeEnd.Format(time.RFC3339))
	for i, occ := range occurrences {
		result += fmt.Sprintf("%d. %s (%s)\n", i+1, occ.Format(time.RFC3339), occ.Weekday())
	}

	return mcp.NewToolResultText(result), nil
}

func handleEndSeriesBefore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	zone := "UTC"
	if tz, ok := args["timeZone"].(string); ok && tz != "" {
		zone = tz
	}

	beforeStr, ok := args["before"].(string)
	if !ok || beforeStr == "" {
		return mcp.NewToolResultError("before is required"), nil
	}
	before, err := timeutil.ParseInstant(timeutil.ToAbsoluteInstant(beforeStr, zone))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid before format: %v", err)), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEventRaw(ctx, calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	if recurrence.Classify(event) != recurrence.KindRecurring {
		return mcp.NewToolResultError(fmt.Sprintf("Event %s is not a recurring series; only series can be ended early", eventID)), nil
	}

	until := recurrence.UntilBoundary(before)
	rewritten, err := recurrence.RewriteWithUntil(event.Recurrence, until)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot rewrite recurrence rule: %v", err)), nil
	}

	patched, err := client.PatchEventRaw(ctx, calendarID, eventID, &calendar_v3.Event{Recurrence: rewritten})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update series: %v", err)), nil
	}

	result := fmt.Sprintf("Successfully ended series %q before %s\n", patched.Summary, before.Format(time.RFC3339))
	result += fmt.Sprintf("ID: %s\n", patched.Id)
	result += "New rule set:\n"
	for _, line := range patched.Recurrence {
		result += fmt.Sprintf("  %s\n", line)
	}

	return mcp.NewToolResultText(result), nil
}

func handleEditEventInstance(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	series, err := client.GetEventRaw(ctx, calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	if recurrence.Classify(series) != recurrence.KindRecurring {
		return mcp.NewToolResultError(fmt.Sprintf("Event %s is not a recurring series; use calendar_update_event for single events", eventID)), nil
	}

	// The series' own zone resolves naive datetimes unless overridden
	seriesZone := "UTC"
	if series.Start != nil && series.Start.TimeZone != "" {
		seriesZone = series.Start.TimeZone
	}

	originalStartStr, ok := args["originalStart"].(string)
	if !ok || originalStartStr == "" {
		return mcp.NewToolResultError("originalStart is required"), nil
	}
	originalStart, err := timeutil.ParseInstant(timeutil.ToAbsoluteInstant(originalStartStr, seriesZone))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid originalStart format: %v", err)), nil
	}

	input := recurrence.PatchInput{}
	if summary, ok := args["summary"].(string); ok && summary != "" {
		input.Summary = &summary
	}
	if desc, ok := args["description"].(string); ok && desc != "" {
		input.Description = &desc
	}
	if loc, ok := args["location"].(string); ok && loc != "" {
		input.Location = &loc
	}
	if startStr, ok := args["start"].(string); ok && startStr != "" {
		input.Start = &startStr
	}
	if endStr, ok := args["end"].(string); ok && endStr != "" {
		input.End = &endStr
	}
	if tz, ok := args["timeZone"].(string); ok && tz != "" {
		input.TimeZone = &tz
	}
	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		for _, email := range strings.Split(attendeesStr, ",") {
			input.Attendees = append(input.Attendees, strings.TrimSpace(email))
		}
	}

	patch := recurrence.BuildPatch(input, seriesZone)
	instanceID := recurrence.InstanceID(eventID, originalStart)

	patched, err := client.PatchEventRaw(ctx, calendarID, instanceID, patch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to patch instance %s: %v", instanceID, err)), nil
	}

	result := fmt.Sprintf("Successfully updated single occurrence of %q\n", patched.Summary)
	result += fmt.Sprintf("Instance ID: %s\n", instanceID)
	if patched.Start != nil && patched.Start.DateTime != "" {
		result += fmt.Sprintf("Start: %s\n", patched.Start.DateTime)
	}
	if patched.End != nil && patched.End.DateTime != "" {
		result += fmt.Sprintf("End: %s\n", patched.End.DateTime)
	}
	result += "The rest of the series is unchanged.\n"

	return mcp.NewToolResultText(result), nil
}

func handleDuplicateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	targetCalendarID := calendarID
	if targetVal, ok := args["targetCalendarId"].(string); ok && targetVal != "" {
		targetCalendarID = targetVal
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	original, err := client.GetEventRaw(ctx, calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	copied := recurrence.StripIdentityFields(original)

	// A copy of a series instance becomes a standalone event
	copied.RecurringEventId = ""
	copied.OriginalStartTime = nil

	if summary, ok := args["summary"].(string); ok && summary != "" {
		copied.Summary = summary
	}

	if startStr, ok := args["start"].(string); ok && startStr != "" {
		newStart, err := timeutil.ParseInstant(startStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
		}
		newEnd, err := recurrence.PreservedDurationEnd(newStart, original)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Cannot preserve event duration: %v", err)), nil
		}
		copied.Start = &calendar_v3.EventDateTime{DateTime: newStart.Format(time.RFC3339)}
		copied.End = &calendar_v3.EventDateTime{DateTime: newEnd.Format(time.RFC3339)}
	}

	created, err := client.InsertEventRaw(ctx, targetCalendarID, copied)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create copy: %v", err)), nil
	}

	result := fmt.Sprintf("Successfully duplicated event as %q\n", created.Summary)
	result += fmt.Sprintf("New ID: %s\n", created.Id)
	result += fmt.Sprintf("Calendar: %s\n", targetCalendarID)
	if created.Start != nil && created.Start.DateTime != "" {
		result += fmt.Sprintf("Start: %s\n", created.Start.DateTime)
	}

	return mcp.NewToolResultText(result), nil
}

// requireInstantArg parses a required RFC3339 argument.
func requireInstantArg(args map[string]interface{}, name string) (time.Time, error) {
	s, ok := args[name].(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := timeutil.ParseInstant(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %v", name, err)
	}
	return t, nil
}

// eventStartInstant resolves an event's start to an absolute instant,
// accepting both timed and all-day shapes.
func eventStartInstant(event *calendar_v3.Event) (time.Time, error) {
	if event.Start == nil {
		return time.Time{}, fmt.Errorf("missing start")
	}
	if event.Start.DateTime != "" {
		return time.Parse(time.RFC3339, event.Start.DateTime)
	}
	if event.Start.Date != "" {
		return time.Parse(timeutil.DateLayout, event.Start.Date)
	}
	return time.Time{}, fmt.Errorf("missing start")
}
