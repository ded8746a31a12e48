package repositories

import (
	"ehr-analysis-service/internal/domain/entities"
)

// LabRepositoryContract is the read-only lab index, grouped by patient.
type LabRepositoryContract interface {
	// FindByPatientID returns the patient's labs in load order. ok is false
	// when no lab was ever recorded for the patient; a returned slice is
	// never empty and is owned by the caller.
	FindByPatientID(patientID string) (labs []entities.LabResult, ok bool)
	// Count returns the total number of indexed labs.
	Count() int
}
