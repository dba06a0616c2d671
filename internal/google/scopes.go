package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. The server only talks to the Calendar API, so the list
// stays calendar-only plus the OpenID Connect scopes needed for user info.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",
}
