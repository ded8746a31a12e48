package entities

import (
	"maps"
	"time"
)

// PatientColumns names the header columns that carry the typed patient fields.
type PatientColumns struct {
	ID          string `yaml:"id"`
	Gender      string `yaml:"gender"`
	DateOfBirth string `yaml:"date_of_birth"`
	Race        string `yaml:"race"`
}

// DefaultPatientColumns matches the column names of the core population table.
func DefaultPatientColumns() PatientColumns {
	return PatientColumns{
		ID:          "PatientID",
		Gender:      "PatientGender",
		DateOfBirth: "PatientDateOfBirth",
		Race:        "PatientRace",
	}
}

// Patient represents one demographic row of the patient source.
// Columns that are not one of the typed fields are kept as extras so the
// header-driven mapping can be reproduced with Fields.
type Patient struct {
	ID          string `json:"id"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth"`
	Race        string `json:"race,omitempty"`

	columns PatientColumns
	header  []string
	extra   map[string]string
}

// NewPatient zips header names to values positionally. header and values
// must have the same length; the loader checks this before calling.
func NewPatient(columns PatientColumns, header, values []string) Patient {
	p := Patient{columns: columns, header: header}
	for i, name := range header {
		v := values[i]
		switch name {
		case columns.ID:
			p.ID = v
		case columns.Gender:
			p.Gender = v
		case columns.DateOfBirth:
			p.DateOfBirth = v
		case columns.Race:
			p.Race = v
		default:
			if p.extra == nil {
				p.extra = make(map[string]string)
			}
			p.extra[name] = v
		}
	}
	return p
}

// Field returns the value of the named source column.
func (p Patient) Field(name string) (string, bool) {
	switch name {
	case "":
		return "", false
	case p.columns.ID:
		return p.ID, p.hasColumn(name)
	case p.columns.Gender:
		return p.Gender, p.hasColumn(name)
	case p.columns.DateOfBirth:
		return p.DateOfBirth, p.hasColumn(name)
	case p.columns.Race:
		return p.Race, p.hasColumn(name)
	}
	v, ok := p.extra[name]
	return v, ok
}

// Fields returns a fresh copy of the full column-name to value mapping.
func (p Patient) Fields() map[string]string {
	out := make(map[string]string, len(p.header))
	for _, name := range p.header {
		if v, ok := p.Field(name); ok {
			out[name] = v
		}
	}
	return out
}

// Extras returns a copy of the columns that have no typed field.
func (p Patient) Extras() map[string]string {
	return maps.Clone(p.extra)
}

// BirthTime parses DateOfBirth.
func (p Patient) BirthTime() (time.Time, error) {
	return ParseTimestamp(p.columns.DateOfBirth, p.DateOfBirth)
}

func (p Patient) hasColumn(name string) bool {
	for _, h := range p.header {
		if h == name {
			return true
		}
	}
	return false
}
