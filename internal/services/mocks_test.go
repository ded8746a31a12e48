package services

import (
	"sync/atomic"

	"ehr-analysis-service/internal/domain/entities"
	"ehr-analysis-service/internal/domain/repositories"
)

// --- MockPatientRepository ---
// Compile-time check to ensure MockPatientRepository implements PatientRepositoryContract
var _ repositories.PatientRepositoryContract = (*MockPatientRepository)(nil)

// MockPatientRepository is a mock implementation of PatientRepositoryContract.
type MockPatientRepository struct {
	GetByIDFunc func(id string) (entities.Patient, bool)
	ListIDsFunc func() []string

	GetByIDFuncCallCount int32
}

func (m *MockPatientRepository) GetByID(id string) (entities.Patient, bool) {
	atomic.AddInt32(&m.GetByIDFuncCallCount, 1)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return entities.Patient{}, false
}

func (m *MockPatientRepository) ListIDs() []string {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc()
	}
	return nil
}

func (m *MockPatientRepository) Count() int { return len(m.ListIDs()) }

// --- MockLabRepository ---
var _ repositories.LabRepositoryContract = (*MockLabRepository)(nil)

// MockLabRepository is a mock implementation of LabRepositoryContract.
type MockLabRepository struct {
	FindByPatientIDFunc func(patientID string) ([]entities.LabResult, bool)

	FindByPatientIDFuncCallCount int32
}

func (m *MockLabRepository) FindByPatientID(patientID string) ([]entities.LabResult, bool) {
	atomic.AddInt32(&m.FindByPatientIDFuncCallCount, 1)
	if m.FindByPatientIDFunc != nil {
		return m.FindByPatientIDFunc(patientID)
	}
	return nil, false
}

func (m *MockLabRepository) Count() int { return 0 }

// --- fixtures ---

var (
	fixturePatientHeader = []string{"PatientID", "PatientGender", "PatientDateOfBirth", "PatientRace"}
	fixtureLabHeader     = []string{"PatientID", "AdmissionID", "LabName", "LabValue", "LabUnits", "LabDateTime"}
)

func newPatient(id, dob string) entities.Patient {
	return entities.NewPatient(entities.DefaultPatientColumns(), fixturePatientHeader, []string{id, "male", dob, "white"})
}

func newLab(id, name, value, at string) entities.LabResult {
	return entities.NewLabResult(entities.DefaultLabColumns(), fixtureLabHeader, []string{id, "1", name, value, "mg/dL", at})
}

// scenarioStore holds patient P1 from the reference example plus a patient
// with no labs and an orphan lab.
func scenarioStore() *repositories.MemoryStore {
	b := repositories.NewStoreBuilder()
	b.PutPatient(newPatient("P1", "1950-01-01 00:00:00.000000"))
	b.PutPatient(newPatient("P2", "1980-03-15 12:00:00.000"))
	b.AppendLab(newLab("P1", "URINALYSIS: RED BLOOD CELLS", "1.8", "1992-07-01 01:36:17.910"))
	b.AppendLab(newLab("P1", "METABOLIC: GLUCOSE", "103.3", "1992-06-30 09:35:52.383"))
	b.AppendLab(newLab("ORPHAN", "METABOLIC: GLUCOSE", "250", "2001-01-01 00:00:00.000"))
	return b.Build()
}
