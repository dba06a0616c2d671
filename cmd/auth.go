package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calendops/calendops/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account from the terminal",
		Long: `Run the Google OAuth flow for an account without going through an
MCP client. Prints the authorization URL, then reads the authorization
code from stdin and stores the token for later use by the server.

Requires CALENDOPS_GOOGLE_CLIENT_ID and CALENDOPS_GOOGLE_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasTokenForAccount(account) {
				fmt.Printf("Account %q is already authorized. Continuing will replace the stored token.\n\n", account)
			}

			fmt.Printf("Open the following URL in your browser and approve access:\n\n%s\n\n", google.GetAuthURL())
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			ctx := context.Background()
			if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}

			fmt.Printf("Token saved for account %q. The serve command can now use it.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize (default: 'default')")
	return cmd
}
