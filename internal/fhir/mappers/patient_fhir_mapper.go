package mappers

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"ehr-analysis-service/internal/domain/entities"
)

// RaceExtensionURL identifies the race extension on a FHIR Patient.
const RaceExtensionURL = "http://hl7.org/fhir/us/core/StructureDefinition/us-core-race"

// ColumnExtensionURL identifies the extension holding source columns that
// have no FHIR element of their own.
const ColumnExtensionURL = "urn:ehr-analysis:source-columns"

// FHIRPatientGender represents the administrative gender of a patient.
// FHIR values: male | female | other | unknown
type FHIRPatientGender string

const (
	GenderMale    FHIRPatientGender = "male"
	GenderFemale  FHIRPatientGender = "female"
	GenderOther   FHIRPatientGender = "other"
	GenderUnknown FHIRPatientGender = "unknown"
)

// FHIRExtension is a FHIR extension element carrying a string value or
// nested extensions.
type FHIRExtension struct {
	URL         string          `json:"url"`
	ValueString string          `json:"valueString,omitempty"`
	Extension   []FHIRExtension `json:"extension,omitempty"`
}

// FHIRPatientResource represents a simplified FHIR Patient resource.
type FHIRPatientResource struct {
	ResourceType string            `json:"resourceType"` // Should be "Patient"
	ID           string            `json:"id,omitempty"`
	BirthDate    string            `json:"birthDate,omitempty"` // YYYY-MM-DD
	Gender       FHIRPatientGender `json:"gender,omitempty"`
	Extension    []FHIRExtension   `json:"extension,omitempty"`
}

// MapGender maps the free-text gender column to a FHIR administrative gender.
func MapGender(gender string) FHIRPatientGender {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	case "", "unknown":
		return GenderUnknown
	default:
		return GenderOther
	}
}

// NewPatientResource builds the FHIR Patient for a loaded patient record.
func NewPatientResource(patient entities.Patient) (FHIRPatientResource, error) {
	if patient.ID == "" {
		return FHIRPatientResource{}, fmt.Errorf("patient identifier is required for FHIR mapping")
	}

	resource := FHIRPatientResource{
		ResourceType: "Patient",
		ID:           patient.ID,
		Gender:       MapGender(patient.Gender),
	}
	if patient.DateOfBirth != "" {
		birth, err := patient.BirthTime()
		if err != nil {
			return FHIRPatientResource{}, fmt.Errorf("mapping birth date of patient %q: %w", patient.ID, err)
		}
		resource.BirthDate = birth.Format("2006-01-02") // FHIR standard date format
	}
	if patient.Race != "" {
		resource.Extension = append(resource.Extension, FHIRExtension{
			URL:       RaceExtensionURL,
			Extension: []FHIRExtension{{URL: "text", ValueString: patient.Race}},
		})
	}
	if ext, ok := columnExtension(patient.Extras()); ok {
		resource.Extension = append(resource.Extension, ext)
	}
	return resource, nil
}

// columnExtension carries extra source columns, sorted by name.
func columnExtension(extras map[string]string) (FHIRExtension, bool) {
	if len(extras) == 0 {
		return FHIRExtension{}, false
	}
	ext := FHIRExtension{URL: ColumnExtensionURL}
	for _, name := range slices.Sorted(maps.Keys(extras)) {
		ext.Extension = append(ext.Extension, FHIRExtension{URL: name, ValueString: extras[name]})
	}
	return ext, true
}

// MapPatientToFHIR converts a loaded patient to a FHIR Patient resource.
func MapPatientToFHIR(patient entities.Patient) (json.RawMessage, error) {
	resource, err := NewPatientResource(patient)
	if err != nil {
		return nil, err
	}

	rawJSON, err := json.MarshalIndent(resource, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR patient resource to JSON: %w", err)
	}
	return rawJSON, nil
}
