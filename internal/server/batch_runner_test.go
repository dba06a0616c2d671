package server

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/calendops/calendops/internal/batch"
	"github.com/calendops/calendops/internal/instrumentation"
)

type fakeBatchRunner struct {
	parts []batch.SubResponse
	err   error
	calls int
}

func (f *fakeBatchRunner) Do(_ context.Context, reqs []batch.SubRequest) ([]batch.SubResponse, error) {
	f.calls++
	return f.parts, f.err
}

func TestInstrumentedBatchRunner_PassThrough(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	fake := &fakeBatchRunner{
		parts: []batch.SubResponse{{StatusCode: 200}, {StatusCode: 404}},
	}
	runner := &instrumentedBatchRunner{
		runner:  fake,
		metrics: func() *instrumentation.Metrics { return metrics },
	}

	reqs := []batch.SubRequest{{Method: "GET", Path: "/a"}, {Method: "GET", Path: "/b"}}
	parts, err := runner.Do(context.Background(), reqs)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("underlying runner called %d times, want 1", fake.calls)
	}
	if len(parts) != 2 || parts[1].StatusCode != 404 {
		t.Errorf("Do() = %+v, want the underlying parts unchanged", parts)
	}
}

func TestInstrumentedBatchRunner_ErrorAndNilMetrics(t *testing.T) {
	wantErr := errors.New("exchange failed")
	fake := &fakeBatchRunner{err: wantErr}

	// A nil metrics accessor result must not panic or swallow the error.
	runner := &instrumentedBatchRunner{
		runner:  fake,
		metrics: func() *instrumentation.Metrics { return nil },
	}

	_, err := runner.Do(context.Background(), []batch.SubRequest{{Method: "GET", Path: "/a"}})
	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want %v", err, wantErr)
	}
}
