package handlers

import (
	"strconv"

	"ehr-analysis-service/internal/domain/dtos"
	"ehr-analysis-service/internal/domain/entities"
	"ehr-analysis-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type QueryHandler struct {
	queryService services.QueryServiceContract
	batchService services.BatchQueryServiceContract
	logger       *zap.SugaredLogger
}

func NewQueryHandler(qs services.QueryServiceContract, bs services.BatchQueryServiceContract, logger *zap.SugaredLogger) *QueryHandler {
	return &QueryHandler{
		queryService: qs,
		batchService: bs,
		logger:       logger,
	}
}

// GetAge answers GET /patients/:id/age. The optional asOf query parameter
// replaces the current moment.
func (h *QueryHandler) GetAge(c *fiber.Ctx) error {
	patientID := c.Params("id")
	asOfText := c.Query("asOf")

	var (
		age int
		err error
	)
	if asOfText == "" {
		age, err = h.queryService.AgeInYears(patientID)
	} else {
		asOf, perr := entities.ParseTimestamp("asOf", asOfText)
		if perr != nil {
			return writeError(c, perr)
		}
		age, err = h.queryService.AgeAt(patientID, asOf)
	}
	if err != nil {
		h.logger.Debugw("Age query failed", "patientId", patientID, "error", err)
		return writeError(c, err)
	}
	return c.JSON(dtos.AgeResponse{PatientID: patientID, Age: age, AsOf: asOfText})
}

// GetEarliestLabAge answers GET /patients/:id/earliest-lab-age.
func (h *QueryHandler) GetEarliestLabAge(c *fiber.Ctx) error {
	patientID := c.Params("id")
	age, err := h.queryService.EarliestLabAge(patientID)
	if err != nil {
		h.logger.Debugw("Earliest lab age query failed", "patientId", patientID, "error", err)
		return writeError(c, err)
	}
	return c.JSON(dtos.AgeResponse{PatientID: patientID, Age: age})
}

// GetSick answers GET /patients/:id/sick?lab=&op=&threshold=.
func (h *QueryHandler) GetSick(c *fiber.Ctx) error {
	patientID := c.Params("id")
	lab := c.Query("lab")
	op := c.Query("op")
	if lab == "" {
		return badRequest(c, "lab is required")
	}
	threshold, err := strconv.ParseFloat(c.Query("threshold"), 64)
	if err != nil {
		return badRequest(c, "threshold must be a number")
	}

	sick, err := h.queryService.IsSick(patientID, lab, services.Operator(op), threshold)
	if err != nil {
		h.logger.Debugw("Is-sick query failed", "patientId", patientID, "lab", lab, "error", err)
		return writeError(c, err)
	}
	return c.JSON(dtos.SickResponse{PatientID: patientID, LabName: lab, Operator: op, Threshold: threshold, Sick: sick})
}

// PostBatch answers POST /queries/batch with one result per request.
func (h *QueryHandler) PostBatch(c *fiber.Ctx) error {
	var requests []dtos.QueryRequest
	if err := c.BodyParser(&requests); err != nil {
		h.logger.Debugw("Could not parse batch body", "error", err)
		return badRequest(c, "could not parse request body: "+err.Error())
	}

	results, err := h.batchService.Evaluate(c.UserContext(), requests)
	if err != nil {
		h.logger.Warnw("Batch evaluation aborted", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dtos.ErrorResponse{ErrorKind: "aborted", Error: err.Error()})
	}
	return c.JSON(results)
}

func RegisterQueryRoutes(app *fiber.App, qh *QueryHandler) {
	patients := app.Group("/patients")
	patients.Get("/:id/age", qh.GetAge)
	patients.Get("/:id/earliest-lab-age", qh.GetEarliestLabAge)
	patients.Get("/:id/sick", qh.GetSick)

	app.Post("/queries/batch", qh.PostBatch)
}
