package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calendops application
var rootCmd = &cobra.Command{
	Use:   "calendops",
	Short: "Google Calendar operations server for AI assistants",
	Long: `calendops is an MCP (Model Context Protocol) server that gives AI
assistants safe access to Google Calendar: listing and editing events,
free/busy scheduling, duplicate and conflict detection before event
creation, and recurring series editing.

It can run as:
  - An MCP server over stdio (default for desktop AI clients)
  - An MCP server over streamable HTTP for deployed instances`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calendops version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("calendops version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
