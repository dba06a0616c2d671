// Package server provides the MCP server context and session
// management for the calendops application.
//
// # Key Components
//
// ServerContext manages Google Calendar clients with lazy initialization
// and caching. It supports multiple accounts through a pluggable token
// provider (FileTokenProvider for STDIO transport by default) and wires
// each account's conflict detection service to its calendar client and
// a batch codec sharing the same credentials.
//
// SessionIDManager handles multi-account session tracking for HTTP
// transport. It maps session IDs to Google accounts, enabling multiple
// users to share a single MCP server instance.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, and
// HealthChecker provides liveness/readiness endpoints for Kubernetes
// probes.
package server
