package dtos

import (
	"encoding/json"
)

// ExportProgress represents common fields for export responses.
type ExportProgress struct {
	ExportID string `json:"exportId"`
	Status   string `json:"status"` // COMPLETED or FAILED
	Message  string `json:"message,omitempty"`
}

// ExportResponse is the result of exporting one patient's records.
type ExportResponse struct {
	ExportProgress
	PatientID  string          `json:"patientId"`
	LabCount   int             `json:"labCount"`
	FHIRBundle json.RawMessage `json:"fhirBundle,omitempty"`
}
