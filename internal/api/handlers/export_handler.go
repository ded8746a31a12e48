package handlers

import (
	"encoding/json"

	"ehr-analysis-service/internal/domain"
	"ehr-analysis-service/internal/domain/repositories"
	"ehr-analysis-service/internal/fhir/mappers"
	"ehr-analysis-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExportHandler struct {
	exportService services.ExportServiceContract
	patientRepo   repositories.PatientRepositoryContract
	labRepo       repositories.LabRepositoryContract
	logger        *zap.SugaredLogger
}

func NewExportHandler(
	es services.ExportServiceContract,
	patientRepo repositories.PatientRepositoryContract,
	labRepo repositories.LabRepositoryContract,
	logger *zap.SugaredLogger,
) *ExportHandler {
	return &ExportHandler{
		exportService: es,
		patientRepo:   patientRepo,
		labRepo:       labRepo,
		logger:        logger,
	}
}

// GetPatient answers GET /patients/:id with a FHIR Patient resource.
func (h *ExportHandler) GetPatient(c *fiber.Ctx) error {
	patientID := c.Params("id")
	patient, ok := h.patientRepo.GetByID(patientID)
	if !ok {
		return writeError(c, &domain.NotFoundError{Index: "patient", PatientID: patientID})
	}

	raw, err := mappers.MapPatientToFHIR(patient)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// GetLabs answers GET /patients/:id/labs with the patient's FHIR Observations
// in load order.
func (h *ExportHandler) GetLabs(c *fiber.Ctx) error {
	patientID := c.Params("id")
	labs, ok := h.labRepo.FindByPatientID(patientID)
	if !ok {
		return writeError(c, &domain.NotFoundError{Index: "lab", PatientID: patientID})
	}

	observations := make([]json.RawMessage, 0, len(labs))
	for _, lab := range labs {
		obs, err := mappers.MapLabToFHIRObservation(lab)
		if err != nil {
			return writeError(c, err)
		}
		observations = append(observations, obs)
	}
	return c.JSON(observations)
}

// Export answers POST /patients/:id/export with a FHIR collection bundle.
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	patientID := c.Params("id")
	h.logger.Debugw("Export requested", "patientId", patientID)

	resp, err := h.exportService.ExportPatient(c.UserContext(), patientID)
	if err != nil {
		h.logger.Infow("Export failed", "patientId", patientID, "error", err)
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func RegisterExportRoutes(app *fiber.App, eh *ExportHandler) {
	patients := app.Group("/patients")
	patients.Get("/:id", eh.GetPatient)
	patients.Get("/:id/labs", eh.GetLabs)
	patients.Post("/:id/export", eh.Export)
}
