package services

import (
	"time"
)

// Operator is a threshold comparison symbol.
type Operator string

const (
	OperatorGreater Operator = ">"
	OperatorLess    Operator = "<"
)

// Valid reports whether op is one of the supported symbols.
func (op Operator) Valid() bool {
	return op == OperatorGreater || op == OperatorLess
}

// Compare applies op strictly. Unsupported operators never match.
func (op Operator) Compare(value, threshold float64) bool {
	switch op {
	case OperatorGreater:
		return value > threshold
	case OperatorLess:
		return value < threshold
	default:
		return false
	}
}

// QueryServiceContract defines the read-only queries over loaded records.
type QueryServiceContract interface {
	// AgeInYears returns the patient's age at the service clock's current moment.
	AgeInYears(patientID string) (int, error)
	// AgeAt returns the patient's age at asOf.
	AgeAt(patientID string, asOf time.Time) (int, error)
	// IsSick reports whether any of the patient's labs named labName
	// compares true against threshold with op.
	IsSick(patientID, labName string, op Operator, threshold float64) (bool, error)
	// EarliestLabAge returns the patient's age at their earliest lab.
	EarliestLabAge(patientID string) (int, error)
}
