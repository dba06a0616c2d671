package batch

import "fmt"

// TransportError indicates the batch exchange never completed. It is
// returned after the configured retries are exhausted.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("batch exchange failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError indicates token acquisition failed. It is surfaced
// immediately and never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("batch token acquisition failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
