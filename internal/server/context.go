package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/calendops/calendops/internal/batch"
	"github.com/calendops/calendops/internal/calendar"
	"github.com/calendops/calendops/internal/conflict"
	"github.com/calendops/calendops/internal/google"
	"github.com/calendops/calendops/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx              context.Context
	cancel           context.CancelFunc
	tokenProvider    google.TokenProvider
	calendarClients  map[string]*calendar.Client  // Maps account name to Calendar client
	conflictServices map[string]*conflict.Service // Maps account name to conflict service
	metrics          *instrumentation.Metrics
	auditLogger      *instrumentation.AuditLogger
	mu               sync.RWMutex
	shutdown         bool
}

// NewServerContext creates a new server context using the file-based
// token provider.
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	return NewServerContextWithProvider(ctx, google.NewFileTokenProvider())
}

// NewServerContextWithProvider creates a new server context with an
// explicit token provider.
func NewServerContextWithProvider(ctx context.Context, provider google.TokenProvider) (*ServerContext, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:              shutdownCtx,
		cancel:           cancel,
		tokenProvider:    provider,
		calendarClients:  make(map[string]*calendar.Client),
		conflictServices: make(map[string]*conflict.Service),
	}

	// Try to create the default client eagerly, but don't fail if the
	// token is missing. Clients are lazily created on first use.
	if provider.HasTokenForAccount("default") {
		client, err := calendar.NewClientForAccountWithProvider(shutdownCtx, "default", provider)
		if err != nil {
			fmt.Printf("Warning: failed to create Calendar client for default account: %v\n", err)
		} else {
			sc.calendarClients["default"] = client
		}
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenProvider returns the token provider the context was built with.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// CalendarClientForAccount returns the Calendar client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calendarClientLocked(account)
}

func (sc *ServerContext) calendarClientLocked(account string) *calendar.Client {
	// Check if client already exists
	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !sc.tokenProvider.HasTokenForAccount(account) {
		return nil
	}

	client, err := calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		fmt.Printf("Warning: failed to create Calendar client for account %s: %v\n", account, err)
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
	delete(sc.conflictServices, account)
}

// SetCalendarClient sets the Calendar client for the default account
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

// ConflictServiceForAccount returns the conflict detection service for
// a specific account, wiring it to the account's calendar client and a
// batch codec authorized with the account's token. Returns nil if the
// account has no token.
func (sc *ServerContext) ConflictServiceForAccount(account string) *conflict.Service {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if svc, ok := sc.conflictServices[account]; ok {
		return svc
	}

	client := sc.calendarClientLocked(account)
	if client == nil {
		return nil
	}

	codec := batch.NewCodec(
		batch.TokenSourceFunc(google.BearerTokenFunc(sc.tokenProvider, account)),
		batch.Config{},
	)

	svc := conflict.NewService(conflict.ServiceConfig{
		Lister: client,
		Batch:  &instrumentedBatchRunner{runner: codec, metrics: sc.Metrics},
	})
	sc.conflictServices[account] = svc
	return svc
}

// ConflictService returns the conflict detection service for the default account
func (sc *ServerContext) ConflictService() *conflict.Service {
	return sc.ConflictServiceForAccount("default")
}

// Metrics returns the metrics recorder, or nil if instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if audit logging is disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
