package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendar_v3 "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/conflict"
	"github.com/calendops/calendops/internal/server"
	"github.com/calendops/calendops/internal/timeutil"
	"github.com/calendops/calendops/internal/tools/common"
)

// RegisterConflictTools registers conflict detection tools with the MCP server
func RegisterConflictTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkConflictsTool := mcp.NewTool("calendar_check_conflicts",
		mcp.WithDescription("Check a proposed event for duplicates and scheduling conflicts across one or more calendars before creating it"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Primary calendar ID for the check (default: 'primary')"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Title of the proposed event"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Proposed start: RFC3339, a naive datetime resolved against timeZone, or a bare date for all-day"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Proposed end, same formats as start"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone for naive datetimes (e.g., 'America/New_York'). Defaults to UTC."),
		),
		mcp.WithString("calendars",
			mcp.Description("Comma-separated list of additional calendar IDs to scan. Defaults to the primary calendar only. Inaccessible calendars are skipped."),
		),
		mcp.WithBoolean("checkDuplicates",
			mcp.Description("Run the duplicate similarity pass (default: true)"),
		),
		mcp.WithBoolean("checkConflicts",
			mcp.Description("Run the time overlap pass (default: true)"),
		),
		mcp.WithNumber("duplicateThreshold",
			mcp.Description("Minimum similarity score reported as a duplicate (default: 0.7; 0.95 and above is treated as the same event)"),
		),
	)

	s.AddTool(checkConflictsTool, common.InstrumentedToolHandlerWithService(
		"calendar_check_conflicts", "calendar", "query", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckConflicts(ctx, request, sc)
		}))

	return nil
}

func handleCheckConflicts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendarID := "primary"
	if calIDVal, ok := args["calendarId"].(string); ok && calIDVal != "" {
		calendarID = calIDVal
	}

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}

	zone := "UTC"
	if tz, ok := args["timeZone"].(string); ok && tz != "" {
		zone = tz
	}

	candidate := &calendar_v3.Event{
		Summary: summary,
		Start:   conflictEventTime(startStr, zone),
		End:     conflictEventTime(endStr, zone),
	}

	opts := conflict.DefaultOptions()
	if check, ok := args["checkDuplicates"].(bool); ok {
		opts.CheckDuplicates = check
	}
	if check, ok := args["checkConflicts"].(bool); ok {
		opts.CheckConflicts = check
	}
	if threshold, ok := args["duplicateThreshold"].(float64); ok && threshold > 0 {
		opts.DuplicateThreshold = threshold
	}
	if calendarsStr, ok := args["calendars"].(string); ok && calendarsStr != "" {
		opts.CalendarsToCheck = conflictCalendarsToCheck(calendarID, calendarsStr)
	}

	// Ensure a client exists so the conflict service can be built
	if _, err := getCalendarClient(ctx, account, sc); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc := sc.ConflictServiceForAccount(account)
	if svc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("No conflict detection service available for account %q", account)), nil
	}

	checkResult, err := svc.CheckConflicts(ctx, candidate, calendarID, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check conflicts: %v", err)), nil
	}

	return mcp.NewToolResultText(formatConflictResult(summary, checkResult)), nil
}

// conflictCalendarsToCheck builds the scan list for a multi-calendar
// check. The primary calendar always stays in the scan; extras are
// appended in order with duplicates removed.
func conflictCalendarsToCheck(calendarID, extras string) []string {
	seen := map[string]struct{}{calendarID: {}}
	list := []string{calendarID}
	for _, id := range strings.Split(extras, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, id)
	}
	return list
}

// conflictEventTime converts datetime text into the EventDateTime shape
// the conflict service resolves.
func conflictEventTime(value, fallbackZone string) *calendar_v3.EventDateTime {
	spec := timeutil.BuildTimeSpec(value, fallbackZone)
	return &calendar_v3.EventDateTime{
		DateTime: spec.DateTime,
		Date:     spec.Date,
		TimeZone: spec.TimeZone,
	}
}

func formatConflictResult(summary string, res *conflict.Result) string {
	if !res.HasConflicts {
		return fmt.Sprintf("No duplicates or conflicts found for %q. Safe to create.", summary)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d potential duplicate(s) and %d scheduling conflict(s) for %q:\n\n",
		len(res.Duplicates), len(res.Conflicts), summary)

	if len(res.Duplicates) > 0 {
		b.WriteString("Potential duplicates:\n")
		for i, dup := range res.Duplicates {
			fmt.Fprintf(&b, "%d. %s (similarity %.2f)\n", i+1, dup.Event.Summary, dup.Score)
			fmt.Fprintf(&b, "   ID: %s\n", dup.Event.Id)
			if dup.SourceCalendar != "" {
				fmt.Fprintf(&b, "   Calendar: %s\n", dup.SourceCalendar)
			}
			fmt.Fprintf(&b, "   %s\n", dup.Suggestion)
		}
		b.WriteString("\n")
	}

	if len(res.Conflicts) > 0 {
		b.WriteString("Scheduling conflicts:\n")
		for i, overlap := range res.Conflicts {
			fmt.Fprintf(&b, "%d. %s\n", i+1, overlap.Event.Summary)
			fmt.Fprintf(&b, "   ID: %s\n", overlap.Event.Id)
			if overlap.SourceCalendar != "" {
				fmt.Fprintf(&b, "   Calendar: %s\n", overlap.SourceCalendar)
			}
			fmt.Fprintf(&b, "   Overlap: %s (%d%% of the proposed event), %s to %s\n",
				conflict.FormatDuration(overlap.Duration),
				overlap.Percentage,
				overlap.WindowStart.Format(time.RFC3339),
				overlap.WindowEnd.Format(time.RFC3339))
		}
	}

	return b.String()
}
