// Package cmd implements the command-line interface for calendops.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Calendar tools for AI assistants
//   - auth: Run the Google OAuth flow for an account from the terminal
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
