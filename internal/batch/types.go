package batch

import (
	"context"
	"encoding/json"
	"net/textproto"
)

// SubRequest describes one API call carried inside a batch exchange.
type SubRequest struct {
	// Method is the HTTP method of the emulated call (GET, POST, ...).
	Method string

	// Path is the URL path of the emulated call relative to the API
	// host, including URL-encoded query parameters exactly as the
	// equivalent single call would require.
	Path string

	// Headers are optional additional headers for the nested request.
	Headers map[string]string

	// Body, when non-nil, is serialized as the JSON body of the nested
	// request.
	Body any
}

// SubResponse is the parsed result of one part of a batch response.
// Responses are produced 1:1 with the submitted sub-requests and in the
// same order.
type SubResponse struct {
	// StatusCode is the nested HTTP status of this part. Zero when the
	// part's framing was too malformed to locate a status line.
	StatusCode int

	// Header holds the nested response headers.
	Header textproto.MIMEHeader

	// Body is the part body when it parsed as JSON, nil otherwise.
	Body json.RawMessage

	// RawText always carries the part body text, including when JSON
	// parsing failed.
	RawText string
}

// OK reports whether the nested status indicates success.
func (r *SubResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the part's JSON body into v.
func (r *SubResponse) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// TokenSource yields the bearer token that authorizes a batch exchange.
// The OAuth lifecycle behind it is external to this package.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

// AccessToken implements TokenSource.
func (f TokenSourceFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}
