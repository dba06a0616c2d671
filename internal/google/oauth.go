package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cacheDirName = "calendops"

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName rejects account names that cannot safely become
// part of a token file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNameRe.MatchString(account) {
		return fmt.Errorf("account name %q may only contain letters, digits, hyphens and underscores", account)
	}
	return nil
}

// getTokenFilePath returns the token file location for an account.
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), cacheDirName, fmt.Sprintf("google-%s.token", account))
}

// HasTokenForAccount checks if a token file exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// MigrateDefaultToken moves a legacy single-account token file to the
// default account's location. It is idempotent.
func MigrateDefaultToken() error {
	cacheDir := filepath.Join(userCacheDir(), cacheDirName)
	oldFile := filepath.Join(cacheDir, "google.token")
	newFile := getTokenFilePath("default")

	data, err := os.ReadFile(oldFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read legacy token file: %w", err)
	}

	if err := os.WriteFile(newFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write migrated token file: %w", err)
	}
	if err := os.Remove(oldFile); err != nil {
		return fmt.Errorf("failed to remove legacy token file: %w", err)
	}
	return nil
}

// GetAuthURL returns the OAuth URL for user authorization
func GetAuthURL() string {
	return GetOAuthConfig().AuthCodeURL("state")
}

// SaveTokenForAccount exchanges an authorization code for tokens and
// saves them under the given account.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	conf := GetOAuthConfig()
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// SaveToken exchanges an authorization code for tokens and saves them
// for the default account.
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// GetOAuthConfig returns the OAuth2 configuration used for all Google
// API access. Client credentials come from the environment so no secret
// is baked into the binary.
func GetOAuthConfig() *oauth2.Config {
	const OOB = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv("CALENDOPS_GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("CALENDOPS_GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  OOB,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the
// account's stored token. Returns an error if no valid token exists.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	conf := GetOAuthConfig()

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token for account %s is invalid: %w", account, err)
	}

	return ts, nil
}

// GetTokenSource returns an OAuth2 token source for the default account.
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, "default")
}

// GetHTTPClient returns an HTTP client configured with OAuth2 authentication
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func GetHTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := GetTokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	return client, nil
}

// GetAuthenticationErrorMessage builds the user-facing message shown
// when a tool is invoked for an account that has no stored token.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(
		"No Google OAuth token found for account %q. Run 'calendops auth' to complete the OAuth flow for this account, then retry.",
		account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
