package services

import (
	"context"

	"ehr-analysis-service/internal/domain/dtos"
)

// ExportServiceContract defines the FHIR export of a patient's loaded records.
type ExportServiceContract interface {
	// ExportPatient maps the patient and their labs to a FHIR bundle.
	// Each call gets a unique export ID.
	ExportPatient(ctx context.Context, patientID string) (dtos.ExportResponse, error)
}
