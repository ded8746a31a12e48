package services

import (
	"context"
	"fmt"

	"ehr-analysis-service/internal/domain/dtos"
	"ehr-analysis-service/internal/domain/entities"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a non-positive worker count is configured.
const DefaultWorkers = 4

// BatchQueryServiceImpl fans requests out to a bounded set of goroutines that
// share one QueryServiceContract. The queries only read, so no locking is needed.
type BatchQueryServiceImpl struct {
	queries    QueryServiceContract
	logger     *zap.SugaredLogger
	numWorkers int
}

// NewBatchQueryService creates a new instance of BatchQueryServiceImpl.
func NewBatchQueryService(queries QueryServiceContract, logger *zap.SugaredLogger, numWorkers int) BatchQueryServiceContract {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	return &BatchQueryServiceImpl{
		queries:    queries,
		logger:     logger,
		numWorkers: numWorkers,
	}
}

// Evaluate implements BatchQueryServiceContract.
func (s *BatchQueryServiceImpl) Evaluate(ctx context.Context, requests []dtos.QueryRequest) ([]dtos.QueryResult, error) {
	s.logger.Infow("Evaluating query batch", "requests", len(requests), "workers", s.numWorkers)

	results := make([]dtos.QueryResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.numWorkers)

	for i, req := range requests {
		if req.ID == "" {
			req.ID = uuid.New().String()
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.evaluateOne(req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warnw("Query batch aborted", "error", err)
		return nil, err
	}
	return results, nil
}

func (s *BatchQueryServiceImpl) evaluateOne(req dtos.QueryRequest) dtos.QueryResult {
	res := dtos.QueryResult{ID: req.ID, Kind: req.Kind, PatientID: req.PatientID}

	var err error
	switch req.Kind {
	case dtos.QueryKindAge:
		var age int
		if req.AsOf == "" {
			age, err = s.queries.AgeInYears(req.PatientID)
		} else {
			age, err = s.ageAt(req)
		}
		if err == nil {
			res.Age = &age
		}
	case dtos.QueryKindIsSick:
		var sick bool
		sick, err = s.queries.IsSick(req.PatientID, req.LabName, Operator(req.Operator), req.Threshold)
		if err == nil {
			res.Sick = &sick
		}
	case dtos.QueryKindEarliestLabAge:
		var age int
		age, err = s.queries.EarliestLabAge(req.PatientID)
		if err == nil {
			res.Age = &age
		}
	default:
		err = fmt.Errorf("unknown query kind %q", req.Kind)
	}

	if err != nil {
		res.ErrorKind = ErrorKind(err)
		res.Error = err.Error()
		s.logger.Debugw("Query failed", "id", req.ID, "kind", req.Kind, "patientId", req.PatientID, "error", err)
	}
	return res
}

func (s *BatchQueryServiceImpl) ageAt(req dtos.QueryRequest) (int, error) {
	asOf, err := entities.ParseTimestamp("asOf", req.AsOf)
	if err != nil {
		return 0, err
	}
	return s.queries.AgeAt(req.PatientID, asOf)
}
