package dtos

// QueryKind names one of the three record queries.
type QueryKind string

const (
	QueryKindAge            QueryKind = "age"
	QueryKindIsSick         QueryKind = "is_sick"
	QueryKindEarliestLabAge QueryKind = "earliest_lab_age"
)

// QueryRequest is one entry of a batch. LabName, Operator and Threshold are
// only read for is_sick; AsOf (YYYY-MM-DD HH:MM:SS) only for age.
type QueryRequest struct {
	ID        string    `json:"id,omitempty"`
	Kind      QueryKind `json:"kind"`
	PatientID string    `json:"patientId"`
	LabName   string    `json:"labName,omitempty"`
	Operator  string    `json:"operator,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	AsOf      string    `json:"asOf,omitempty"`
}

// QueryResult carries either Age, Sick or an error.
type QueryResult struct {
	ID        string    `json:"id"`
	Kind      QueryKind `json:"kind"`
	PatientID string    `json:"patientId"`
	Age       *int      `json:"age,omitempty"`
	Sick      *bool     `json:"sick,omitempty"`
	ErrorKind string    `json:"errorKind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AgeResponse answers the age and earliest-lab-age endpoints.
type AgeResponse struct {
	PatientID string `json:"patientId"`
	Age       int    `json:"age"`
	AsOf      string `json:"asOf,omitempty"`
}

// SickResponse answers the threshold-crossing endpoint.
type SickResponse struct {
	PatientID string  `json:"patientId"`
	LabName   string  `json:"labName"`
	Operator  string  `json:"operator"`
	Threshold float64 `json:"threshold"`
	Sick      bool    `json:"sick"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	ErrorKind string `json:"errorKind"`
	Error     string `json:"error"`
}
