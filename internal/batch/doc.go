// Package batch implements the multipart/mixed batch protocol used by the
// Google Calendar API to carry several independent API calls in a single
// HTTP exchange.
//
// Callers describe each call as a SubRequest; the codec frames them into
// one multipart request body, submits it to the batch endpoint with a
// bearer token from the configured token source, and parses the multipart
// response back into SubResponses. Responses correlate to requests
// strictly by position. A failing status inside one part never fails the
// exchange: it is returned as data for the caller to classify. Only
// transport-level failures (the exchange never completing) are errors,
// and only those are retried.
//
// The framing is a small hand-rolled text codec rather than
// mime/multipart: the nested application/http parts need exact control
// over the synthetic request line, header block, and blank-line
// separators, and the decoder must degrade gracefully on malformed parts
// instead of aborting the whole response.
package batch
