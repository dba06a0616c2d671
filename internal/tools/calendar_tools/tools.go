package calendar_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calendops/calendops/internal/calendar"
	"github.com/calendops/calendops/internal/server"
)

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(ctx context.Context, account string, sc *server.ServerContext) (*calendar.Client, error) {
	client := sc.CalendarClientForAccount(account)
	if client == nil {
		// Check if token exists before trying to create client
		if !calendar.HasTokenForAccount(account) {
			return nil, fmt.Errorf(`Google OAuth token not found for account %q.

Call the google_get_auth_url tool to start the OAuth flow for this account,
then complete it with google_save_auth_code. You only need to authorize once;
tokens are refreshed automatically.`, account)
		}

		var err error
		client, err = calendar.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
		}
		sc.SetCalendarClientForAccount(account, client)
	}
	return client, nil
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Register event tools
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	// Register calendar list tools
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	// Register scheduling tools
	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	// Register conflict detection tools
	if err := RegisterConflictTools(s, sc); err != nil {
		return fmt.Errorf("failed to register conflict tools: %w", err)
	}

	// Register recurring event tools
	if err := RegisterRecurrenceTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register recurrence tools: %w", err)
	}

	return nil
}
