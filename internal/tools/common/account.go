package common

import (
	"context"

	"github.com/calendops/calendops/internal/server"
)

// GetAccountFromArgs extracts the account name from request arguments.
// An explicit "account" argument wins; otherwise the account bound to
// the transport session (set by the HTTP session middleware) is used.
// Falls back to "default" when neither is present.
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	return "default"
}
