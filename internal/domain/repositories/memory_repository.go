package repositories

import (
	"slices"
	"sort"

	"ehr-analysis-service/internal/domain/entities"
)

var (
	_ PatientRepositoryContract = (*MemoryStore)(nil)
	_ LabRepositoryContract     = labView{}
)

// MemoryStore holds the indexed collections produced by the loader.
//
// A MemoryStore is immutable once built, so any number of goroutines may
// query it without locking.
type MemoryStore struct {
	patients map[string]entities.Patient
	labs     map[string][]entities.LabResult
	labCount int
}

// GetByID implements PatientRepositoryContract.
func (s *MemoryStore) GetByID(id string) (entities.Patient, bool) {
	p, ok := s.patients[id]
	return p, ok
}

// ListIDs implements PatientRepositoryContract.
func (s *MemoryStore) ListIDs() []string {
	ids := make([]string, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count implements PatientRepositoryContract.
func (s *MemoryStore) Count() int { return len(s.patients) }

// FindByPatientID returns a copy of the patient's labs in load order.
func (s *MemoryStore) FindByPatientID(patientID string) ([]entities.LabResult, bool) {
	labs, ok := s.labs[patientID]
	if !ok {
		return nil, false
	}
	return slices.Clone(labs), true
}

// Labs exposes the lab side of the store as its own contract.
func (s *MemoryStore) Labs() LabRepositoryContract { return labView{s} }

// LabCount returns the total number of labs across all patients.
func (s *MemoryStore) LabCount() int { return s.labCount }

// LabPatientCount returns how many patients have at least one lab.
func (s *MemoryStore) LabPatientCount() int { return len(s.labs) }

// labView disambiguates Count between the two contracts.
type labView struct{ s *MemoryStore }

func (v labView) FindByPatientID(patientID string) ([]entities.LabResult, bool) {
	return v.s.FindByPatientID(patientID)
}

func (v labView) Count() int { return v.s.labCount }

// StoreBuilder accumulates rows into a MemoryStore. It is not safe for
// concurrent use.
type StoreBuilder struct {
	store *MemoryStore
}

// NewStoreBuilder returns an empty builder.
func NewStoreBuilder() *StoreBuilder {
	return &StoreBuilder{store: &MemoryStore{
		patients: make(map[string]entities.Patient),
		labs:     make(map[string][]entities.LabResult),
	}}
}

// PutPatient indexes p by identifier. A later patient with the same
// identifier replaces the earlier one; replaced reports whether that happened.
func (b *StoreBuilder) PutPatient(p entities.Patient) (replaced bool) {
	_, replaced = b.store.patients[p.ID]
	b.store.patients[p.ID] = p
	return replaced
}

// AppendLab adds l to the end of its patient's lab sequence.
func (b *StoreBuilder) AppendLab(l entities.LabResult) {
	b.store.labs[l.PatientID] = append(b.store.labs[l.PatientID], l)
	b.store.labCount++
}

// Build returns the finished store. The builder must not be used afterwards.
func (b *StoreBuilder) Build() *MemoryStore {
	s := b.store
	b.store = nil
	return s
}
