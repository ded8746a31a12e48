package services

import (
	"context"

	"ehr-analysis-service/internal/domain/dtos"
)

// BatchQueryServiceContract evaluates many queries against one loaded store.
type BatchQueryServiceContract interface {
	// Evaluate runs every request and returns results in request order.
	// Per-request failures are reported in the result; the returned error is
	// non-nil only when ctx ends before the batch completes.
	Evaluate(ctx context.Context, requests []dtos.QueryRequest) ([]dtos.QueryResult, error)
}
