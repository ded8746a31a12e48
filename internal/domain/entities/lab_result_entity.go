package entities

import (
	"maps"
	"strconv"
	"strings"
	"time"

	"ehr-analysis-service/internal/domain"
)

// LabColumns names the header columns that carry the typed lab fields.
type LabColumns struct {
	PatientID   string `yaml:"patient_id"`
	AdmissionID string `yaml:"admission_id"`
	Name        string `yaml:"name"`
	Value       string `yaml:"value"`
	Units       string `yaml:"units"`
	DateTime    string `yaml:"date_time"`
}

// DefaultLabColumns matches the column names of the core labs table.
func DefaultLabColumns() LabColumns {
	return LabColumns{
		PatientID:   "PatientID",
		AdmissionID: "AdmissionID",
		Name:        "LabName",
		Value:       "LabValue",
		Units:       "LabUnits",
		DateTime:    "LabDateTime",
	}
}

// LabResult is one timestamped measurement tied to a patient. Value stays
// textual until a query compares it.
type LabResult struct {
	PatientID   string `json:"patient_id"`
	AdmissionID string `json:"admission_id,omitempty"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Units       string `json:"units,omitempty"`
	DateTime    string `json:"date_time"`

	columns LabColumns
	extra   map[string]string
}

// NewLabResult zips header names to values positionally.
func NewLabResult(columns LabColumns, header, values []string) LabResult {
	l := LabResult{columns: columns}
	for i, name := range header {
		v := values[i]
		switch name {
		case columns.PatientID:
			l.PatientID = v
		case columns.AdmissionID:
			l.AdmissionID = v
		case columns.Name:
			l.Name = v
		case columns.Value:
			l.Value = v
		case columns.Units:
			l.Units = v
		case columns.DateTime:
			l.DateTime = v
		default:
			if l.extra == nil {
				l.extra = make(map[string]string)
			}
			l.extra[name] = v
		}
	}
	return l
}

// Extras returns a copy of the columns that have no typed field.
func (l LabResult) Extras() map[string]string {
	return maps.Clone(l.extra)
}

// NumericValue parses Value as a float64.
func (l LabResult) NumericValue() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(l.Value), 64)
	if err != nil {
		return 0, domain.NewParseError("", 0, l.columns.Value, l.Value, "lab value is not numeric", err)
	}
	return f, nil
}

// Time parses DateTime.
func (l LabResult) Time() (time.Time, error) {
	return ParseTimestamp(l.columns.DateTime, l.DateTime)
}
