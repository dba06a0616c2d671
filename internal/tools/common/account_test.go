package common

import (
	"context"
	"testing"

	"github.com/calendops/calendops/internal/server"
)

func TestGetAccountFromArgs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no account specified returns default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "account specified returns account",
			args: map[string]interface{}{
				"account": "work",
			},
			expected: "work",
		},
		{
			name: "empty account returns default",
			args: map[string]interface{}{
				"account": "",
			},
			expected: "default",
		},
		{
			name: "account with other params",
			args: map[string]interface{}{
				"account": "personal",
				"other":   "value",
			},
			expected: "personal",
		},
		{
			name:     "nil args returns default",
			args:     nil,
			expected: "default",
		},
		{
			name: "non-string account type returns default",
			args: map[string]interface{}{
				"account": 123,
			},
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetAccountFromArgs(ctx, tt.args)
			if result != tt.expected {
				t.Errorf("GetAccountFromArgs() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestGetAccountFromArgs_SessionFallback(t *testing.T) {
	ctx := server.WithAccount(context.Background(), "work")

	if got := GetAccountFromArgs(ctx, map[string]interface{}{}); got != "work" {
		t.Errorf("GetAccountFromArgs() = %v, expected session account %q", got, "work")
	}

	// An explicit argument still wins over the session account.
	args := map[string]interface{}{"account": "personal"}
	if got := GetAccountFromArgs(ctx, args); got != "personal" {
		t.Errorf("GetAccountFromArgs() = %v, expected explicit account %q", got, "personal")
	}
}
