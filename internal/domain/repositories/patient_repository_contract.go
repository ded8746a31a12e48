package repositories

import (
	"ehr-analysis-service/internal/domain/entities"
)

// PatientRepositoryContract is the read-only patient index.
type PatientRepositoryContract interface {
	// GetByID returns the patient with the given identifier.
	GetByID(id string) (entities.Patient, bool)
	// ListIDs returns every indexed identifier in ascending order.
	ListIDs() []string
	// Count returns the number of indexed patients.
	Count() int
}
