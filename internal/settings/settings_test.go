package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, "PatientID", s.Columns.Patient.ID)
	assert.Equal(t, "LabDateTime", s.Columns.Lab.DateTime)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ehr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
patients: s3://records/PatientCorePopulatedTable.txt.gz
labs: data/LabsCorePopulatedTable.txt
lenient_operators: true
workers: 12
columns:
  patient:
    date_of_birth: DOB
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3://records/PatientCorePopulatedTable.txt.gz", s.PatientsSource)
	assert.Equal(t, "data/LabsCorePopulatedTable.txt", s.LabsSource)
	assert.True(t, s.LenientOperators)
	assert.Equal(t, 12, s.Workers)
	assert.Equal(t, "DOB", s.Columns.Patient.DateOfBirth)
	// Unset keys keep their defaults.
	assert.Equal(t, "PatientID", s.Columns.Patient.ID)
	assert.Equal(t, "127.0.0.1:8080", s.Listen)
	assert.NoError(t, s.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ehr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patients source is required")
	assert.Contains(t, err.Error(), "labs source is required")

	s.PatientsSource = "p.txt"
	s.LabsSource = "l.txt"
	s.Workers = 0
	assert.ErrorContains(t, s.Validate(), "invalid worker count")
}
