package repositories

import (
	"testing"

	"ehr-analysis-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	patientHeader = []string{"PatientID", "PatientDateOfBirth"}
	labHeader     = []string{"PatientID", "LabName", "LabValue", "LabUnits", "LabDateTime"}
)

func patient(id, dob string) entities.Patient {
	return entities.NewPatient(entities.DefaultPatientColumns(), patientHeader, []string{id, dob})
}

func lab(id, name, value string) entities.LabResult {
	return entities.NewLabResult(entities.DefaultLabColumns(), labHeader, []string{id, name, value, "mg/dL", "2019-01-01 00:00:00"})
}

func TestStoreBuilder_LastWriteWins(t *testing.T) {
	b := NewStoreBuilder()
	assert.False(t, b.PutPatient(patient("1", "1947-01-01 00:00:00")))
	assert.True(t, b.PutPatient(patient("1", "1950-01-01 00:00:00")))
	assert.False(t, b.PutPatient(patient("2", "1960-01-01 00:00:00")))
	store := b.Build()

	assert.Equal(t, 2, store.Count())
	p, ok := store.GetByID("1")
	require.True(t, ok)
	assert.Equal(t, "1950-01-01 00:00:00", p.DateOfBirth)
	assert.Equal(t, []string{"1", "2"}, store.ListIDs())
}

func TestMemoryStore_LabsGroupedInLoadOrder(t *testing.T) {
	b := NewStoreBuilder()
	b.AppendLab(lab("1", "HDL", "50"))
	b.AppendLab(lab("2", "LDL", "120"))
	b.AppendLab(lab("1", "LDL", "99"))
	store := b.Build()

	labs, ok := store.FindByPatientID("1")
	require.True(t, ok)
	require.Len(t, labs, 2)
	assert.Equal(t, "HDL", labs[0].Name)
	assert.Equal(t, "LDL", labs[1].Name)

	assert.Equal(t, 3, store.LabCount())
	assert.Equal(t, 3, store.Labs().Count())
	assert.Equal(t, 2, store.LabPatientCount())
}

func TestMemoryStore_MissingLabsAreAbsent(t *testing.T) {
	b := NewStoreBuilder()
	b.PutPatient(patient("1", "1947-01-01 00:00:00"))
	store := b.Build()

	labs, ok := store.Labs().FindByPatientID("1")
	assert.False(t, ok)
	assert.Nil(t, labs)
}

func TestMemoryStore_FindReturnsCopy(t *testing.T) {
	b := NewStoreBuilder()
	b.AppendLab(lab("1", "HDL", "50"))
	store := b.Build()

	labs, _ := store.FindByPatientID("1")
	labs[0].Value = "0"

	again, _ := store.FindByPatientID("1")
	assert.Equal(t, "50", again[0].Value)
}
