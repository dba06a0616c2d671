package server

import (
	"context"

	"github.com/calendops/calendops/internal/batch"
	"github.com/calendops/calendops/internal/conflict"
	"github.com/calendops/calendops/internal/instrumentation"
)

// instrumentedBatchRunner wraps a batch runner and records one metric
// sample per exchange. The metrics accessor is consulted at call time
// because instrumentation may be attached after the runner is built.
type instrumentedBatchRunner struct {
	runner  conflict.BatchRunner
	metrics func() *instrumentation.Metrics
}

func (r *instrumentedBatchRunner) Do(ctx context.Context, reqs []batch.SubRequest) ([]batch.SubResponse, error) {
	parts, err := r.runner.Do(ctx, reqs)

	if m := r.metrics(); m != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.RecordBatchExchange(ctx, status, len(reqs))
	}

	return parts, err
}
