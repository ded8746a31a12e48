package mappers

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"ehr-analysis-service/internal/domain/entities"
)

// FHIRCodeableConcept carries only the display text of a code.
type FHIRCodeableConcept struct {
	Text string `json:"text"`
}

// FHIRReference points at another resource.
type FHIRReference struct {
	Reference string `json:"reference"`
}

// FHIRQuantity is a measured amount.
type FHIRQuantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// FHIRObservationResource represents a simplified FHIR Observation resource.
type FHIRObservationResource struct {
	ResourceType      string              `json:"resourceType"` // Should be "Observation"
	Status            string              `json:"status"`
	Code              FHIRCodeableConcept `json:"code"`
	Subject           FHIRReference       `json:"subject"`
	EffectiveDateTime string              `json:"effectiveDateTime,omitempty"`
	ValueQuantity     *FHIRQuantity       `json:"valueQuantity,omitempty"`
	ValueString       string              `json:"valueString,omitempty"`
	Extension         []FHIRExtension     `json:"extension,omitempty"`
}

// FHIRBundleEntry wraps one resource inside a bundle.
type FHIRBundleEntry struct {
	Resource any `json:"resource"`
}

// FHIRBundle is a collection bundle.
type FHIRBundle struct {
	ResourceType string            `json:"resourceType"` // Should be "Bundle"
	Type         string            `json:"type"`
	Total        int               `json:"total"`
	Entry        []FHIRBundleEntry `json:"entry"`
}

// NewObservationResource builds the FHIR Observation for one lab. Finite
// numeric values become valueQuantity, anything else (including NaN and
// Inf) is kept as valueString.
func NewObservationResource(lab entities.LabResult) (FHIRObservationResource, error) {
	if lab.PatientID == "" {
		return FHIRObservationResource{}, fmt.Errorf("lab patient identifier is required for FHIR mapping")
	}

	obs := FHIRObservationResource{
		ResourceType: "Observation",
		Status:       "final",
		Code:         FHIRCodeableConcept{Text: lab.Name},
		Subject:      FHIRReference{Reference: "Patient/" + lab.PatientID},
	}
	if lab.DateTime != "" {
		at, err := lab.Time()
		if err != nil {
			return FHIRObservationResource{}, fmt.Errorf("mapping lab %q of patient %q: %w", lab.Name, lab.PatientID, err)
		}
		obs.EffectiveDateTime = at.Format(time.RFC3339Nano)
	}
	if v, err := lab.NumericValue(); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		obs.ValueQuantity = &FHIRQuantity{Value: v, Unit: lab.Units}
	} else {
		obs.ValueString = lab.Value
	}
	if ext, ok := columnExtension(lab.Extras()); ok {
		obs.Extension = []FHIRExtension{ext}
	}
	return obs, nil
}

// MapLabToFHIRObservation converts one lab to a FHIR Observation resource.
func MapLabToFHIRObservation(lab entities.LabResult) (json.RawMessage, error) {
	obs, err := NewObservationResource(lab)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obs)
}

// MapRecordsToFHIRBundle builds a collection bundle with the Patient first
// followed by one Observation per lab, in load order.
func MapRecordsToFHIRBundle(patient entities.Patient, labs []entities.LabResult) (json.RawMessage, error) {
	p, err := NewPatientResource(patient)
	if err != nil {
		return nil, err
	}

	bundle := FHIRBundle{ResourceType: "Bundle", Type: "collection", Entry: make([]FHIRBundleEntry, 0, len(labs)+1)}
	bundle.Entry = append(bundle.Entry, FHIRBundleEntry{Resource: p})
	for _, lab := range labs {
		obs, err := NewObservationResource(lab)
		if err != nil {
			return nil, err
		}
		bundle.Entry = append(bundle.Entry, FHIRBundleEntry{Resource: obs})
	}
	bundle.Total = len(bundle.Entry)

	rawJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR bundle to JSON: %w", err)
	}
	return rawJSON, nil
}
