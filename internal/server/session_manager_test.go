package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolveSessionID(t *testing.T) {
	m := NewSessionIDManagerWithTimeout(time.Hour)
	defer m.Stop()

	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	if _, err := m.ResolveSessionID(r); err != ErrNoAuthorizationHeader {
		t.Errorf("ResolveSessionID() without auth header: err = %v, want ErrNoAuthorizationHeader", err)
	}

	r.Header.Set("Authorization", "Bearer token-a")
	first, err := m.ResolveSessionID(r)
	if err != nil {
		t.Fatalf("ResolveSessionID() error = %v", err)
	}

	// Same token resolves to the same session ID.
	second, err := m.ResolveSessionID(r)
	if err != nil {
		t.Fatalf("ResolveSessionID() error = %v", err)
	}
	if first != second {
		t.Errorf("session IDs differ for the same token: %q vs %q", first, second)
	}

	r.Header.Set("Authorization", "Bearer token-b")
	other, err := m.ResolveSessionID(r)
	if err != nil {
		t.Fatalf("ResolveSessionID() error = %v", err)
	}
	if other == first {
		t.Error("different tokens resolved to the same session ID")
	}
}

func TestGetAccountForSession_Default(t *testing.T) {
	m := NewSessionIDManagerWithTimeout(time.Hour)
	defer m.Stop()

	if got := m.GetAccountForSession("unknown"); got != "default" {
		t.Errorf("GetAccountForSession() = %q, want %q", got, "default")
	}

	m.SetAccountForSession("session1", "work")
	if got := m.GetAccountForSession("session1"); got != "work" {
		t.Errorf("GetAccountForSession() = %q, want %q", got, "work")
	}

	m.RemoveSession("session1")
	if got := m.GetAccountForSession("session1"); got != "default" {
		t.Errorf("GetAccountForSession() after removal = %q, want %q", got, "default")
	}
}

func TestMiddleware_BindsSessionAccount(t *testing.T) {
	m := NewSessionIDManagerWithTimeout(time.Hour)
	defer m.Stop()

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AccountFromContext(r.Context())
	}))

	// First request binds the account for the session.
	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	r.Header.Set("Authorization", "Bearer token-a")
	r.Header.Set(AccountHeader, "work")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "work" {
		t.Errorf("account in context = %q, want %q", seen, "work")
	}

	// Later requests on the same session inherit the binding.
	r = httptest.NewRequest(http.MethodPost, "/mcp", nil)
	r.Header.Set("Authorization", "Bearer token-a")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "work" {
		t.Errorf("account in context = %q, want sticky %q", seen, "work")
	}

	// Requests without an Authorization header pass through unbound.
	r = httptest.NewRequest(http.MethodPost, "/mcp", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "" {
		t.Errorf("account in context = %q, want empty", seen)
	}
}

func TestWithAccount_RoundTrip(t *testing.T) {
	ctx := WithAccount(context.Background(), "personal")
	if got, ok := AccountFromContext(ctx); !ok || got != "personal" {
		t.Errorf("AccountFromContext() = %q, %v; want %q, true", got, ok, "personal")
	}
	if _, ok := AccountFromContext(context.Background()); ok {
		t.Error("AccountFromContext() on bare context reported a value")
	}
}
