package services

import (
	"context"
	"fmt"

	"ehr-analysis-service/internal/domain"
	"ehr-analysis-service/internal/domain/dtos"
	"ehr-analysis-service/internal/domain/repositories"
	"ehr-analysis-service/internal/fhir/mappers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const exportStatusCompleted = "COMPLETED"

// ExportServiceImpl implements ExportServiceContract.
type ExportServiceImpl struct {
	patientRepo repositories.PatientRepositoryContract
	labRepo     repositories.LabRepositoryContract
	logger      *zap.SugaredLogger
}

// NewExportService creates a new instance of ExportServiceImpl.
func NewExportService(
	patientRepo repositories.PatientRepositoryContract,
	labRepo repositories.LabRepositoryContract,
	logger *zap.SugaredLogger,
) ExportServiceContract {
	return &ExportServiceImpl{
		patientRepo: patientRepo,
		labRepo:     labRepo,
		logger:      logger,
	}
}

// ExportPatient implements ExportServiceContract. A patient without labs
// exports as a bundle holding only the Patient resource.
func (s *ExportServiceImpl) ExportPatient(ctx context.Context, patientID string) (dtos.ExportResponse, error) {
	if err := ctx.Err(); err != nil {
		return dtos.ExportResponse{}, err
	}

	patient, ok := s.patientRepo.GetByID(patientID)
	if !ok {
		return dtos.ExportResponse{}, &domain.NotFoundError{Index: "patient", PatientID: patientID}
	}
	labs, _ := s.labRepo.FindByPatientID(patientID)

	bundle, err := mappers.MapRecordsToFHIRBundle(patient, labs)
	if err != nil {
		s.logger.Warnw("FHIR mapping failed", "patientId", patientID, "error", err)
		return dtos.ExportResponse{}, fmt.Errorf("export of patient %q: %w", patientID, err)
	}

	exportID := uuid.New().String()
	s.logger.Infow("Patient exported", "exportId", exportID, "patientId", patientID, "labs", len(labs))

	return dtos.ExportResponse{
		ExportProgress: dtos.ExportProgress{
			ExportID: exportID,
			Status:   exportStatusCompleted,
			Message:  "Patient records mapped to a FHIR collection bundle.",
		},
		PatientID:  patientID,
		LabCount:   len(labs),
		FHIRBundle: bundle,
	}, nil
}
