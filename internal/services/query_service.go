package services

import (
	"errors"
	"fmt"
	"time"

	"ehr-analysis-service/internal/domain"
	"ehr-analysis-service/internal/domain/repositories"

	"go.uber.org/zap"
)

const (
	daysPerYear = 365
	day         = 24 * time.Hour
)

// QueryServiceImpl implements QueryServiceContract over read-only repositories.
// It holds no mutable state and is safe for concurrent use.
type QueryServiceImpl struct {
	patientRepo      repositories.PatientRepositoryContract
	labRepo          repositories.LabRepositoryContract
	logger           *zap.SugaredLogger
	now              func() time.Time
	lenientOperators bool
}

// QueryOption configures a QueryServiceImpl.
type QueryOption func(*QueryServiceImpl)

// WithClock sets the source of the reference moment used by AgeInYears.
func WithClock(now func() time.Time) QueryOption {
	return func(s *QueryServiceImpl) { s.now = now }
}

// WithLenientOperators makes IsSick answer false for an unsupported
// operator instead of returning an InvalidOperatorError.
func WithLenientOperators(lenient bool) QueryOption {
	return func(s *QueryServiceImpl) { s.lenientOperators = lenient }
}

// NewQueryService creates a new instance of QueryServiceImpl.
func NewQueryService(
	patientRepo repositories.PatientRepositoryContract,
	labRepo repositories.LabRepositoryContract,
	logger *zap.SugaredLogger,
	opts ...QueryOption,
) QueryServiceContract {
	s := &QueryServiceImpl{
		patientRepo: patientRepo,
		labRepo:     labRepo,
		logger:      logger,
		now:         wallClockNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wallClockNow returns the local wall-clock time expressed in UTC. Record
// timestamps carry no zone and parse as UTC, so the local reading is kept
// as-is rather than converted.
func wallClockNow() time.Time {
	n := time.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), time.UTC)
}

// yearsBetween counts whole elapsed days (floored) and divides by 365,
// truncating toward zero.
func yearsBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int64(d / day)
	if d%day < 0 {
		days--
	}
	return int(days / daysPerYear)
}

// AgeInYears implements QueryServiceContract.
func (s *QueryServiceImpl) AgeInYears(patientID string) (int, error) {
	return s.AgeAt(patientID, s.now())
}

// AgeAt implements QueryServiceContract.
func (s *QueryServiceImpl) AgeAt(patientID string, asOf time.Time) (int, error) {
	p, ok := s.patientRepo.GetByID(patientID)
	if !ok {
		return 0, &domain.NotFoundError{Index: "patient", PatientID: patientID}
	}
	birth, err := p.BirthTime()
	if err != nil {
		return 0, fmt.Errorf("age of patient %q: %w", patientID, err)
	}

	age := yearsBetween(birth, asOf)
	s.logger.Debugw("Age computed", "patientId", patientID, "asOf", asOf, "age", age)
	return age, nil
}

// IsSick implements QueryServiceContract. Labs are scanned in load order and
// the scan stops at the first match.
func (s *QueryServiceImpl) IsSick(patientID, labName string, op Operator, threshold float64) (bool, error) {
	if !op.Valid() {
		if !s.lenientOperators {
			return false, &domain.InvalidOperatorError{Operator: string(op)}
		}
		s.logger.Debugw("Unsupported operator treated as no match", "operator", op)
	}

	labs, ok := s.labRepo.FindByPatientID(patientID)
	if !ok {
		return false, nil
	}

	for _, lab := range labs {
		if lab.Name != labName {
			continue
		}
		value, err := lab.NumericValue()
		if err != nil {
			return false, fmt.Errorf("is-sick %q for patient %q: %w", labName, patientID, err)
		}
		if op.Compare(value, threshold) {
			s.logger.Debugw("Threshold crossed", "patientId", patientID, "lab", labName, "value", value, "operator", op, "threshold", threshold)
			return true, nil
		}
	}
	return false, nil
}

// EarliestLabAge implements QueryServiceContract.
func (s *QueryServiceImpl) EarliestLabAge(patientID string) (int, error) {
	labs, ok := s.labRepo.FindByPatientID(patientID)
	if !ok || len(labs) == 0 {
		return 0, &domain.NotFoundError{Index: "lab", PatientID: patientID}
	}
	p, ok := s.patientRepo.GetByID(patientID)
	if !ok {
		return 0, &domain.NotFoundError{Index: "patient", PatientID: patientID}
	}

	var earliest time.Time
	for i, lab := range labs {
		t, err := lab.Time()
		if err != nil {
			return 0, fmt.Errorf("earliest lab of patient %q: %w", patientID, err)
		}
		if i == 0 || t.Before(earliest) {
			earliest = t
		}
	}

	birth, err := p.BirthTime()
	if err != nil {
		return 0, fmt.Errorf("earliest lab age of patient %q: %w", patientID, err)
	}
	return yearsBetween(birth, earliest), nil
}

// Error kinds reported by ErrorKind.
const (
	ErrorKindNotFound        = "not_found"
	ErrorKindParse           = "parse"
	ErrorKindInvalidOperator = "invalid_operator"
	ErrorKindInvalidRequest  = "invalid_request"
)

// ErrorKind classifies a query error for transport layers.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, domain.ErrParse):
		return ErrorKindParse
	case errors.Is(err, domain.ErrInvalidOperator):
		return ErrorKindInvalidOperator
	default:
		return ErrorKindInvalidRequest
	}
}
