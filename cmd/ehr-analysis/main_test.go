package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ehr-analysis-service/internal/domain"
	"ehr-analysis-service/internal/domain/dtos"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	patientsTSV = "PatientID\tPatientGender\tPatientDateOfBirth\tPatientRace\n" +
		"P1\tmale\t1950-01-01 00:00:00.000000\twhite\n"
	labsTSV = "PatientID\tAdmissionID\tLabName\tLabValue\tLabUnits\tLabDateTime\n" +
		"P1\t1\tURINALYSIS: RED BLOOD CELLS\t1.8\trbc/hpf\t1992-07-01 01:36:17.910\n" +
		"P1\t1\tMETABOLIC: GLUCOSE\t103.3\tmg/dL\t1992-06-30 09:35:52.383\n"
)

func writeSources(t *testing.T) (patients, labs string) {
	t.Helper()
	dir := t.TempDir()
	patients = filepath.Join(dir, "patients.txt")
	labs = filepath.Join(dir, "labs.txt")
	require.NoError(t, os.WriteFile(patients, []byte(patientsTSV), 0o600))
	require.NoError(t, os.WriteFile(labs, []byte(labsTSV), 0o600))
	return patients, labs
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	patients, labs := writeSources(t)

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--patients", patients, "--labs", labs}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestEarliestLabAgeCommand(t *testing.T) {
	out, err := run(t, "", "earliest-lab-age", "P1")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestAgeCommandAsOf(t *testing.T) {
	out, err := run(t, "", "age", "P1", "--as-of", "2023-06-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "73\n", out)
}

func TestAgeCommandNotFound(t *testing.T) {
	_, err := run(t, "", "age", "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSickCommand(t *testing.T) {
	out, err := run(t, "", "sick", "P1", "METABOLIC: GLUCOSE", ">", "100")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "", "sick", "P1", "METABOLIC: GLUCOSE", "<", "100")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestSickCommandOperatorPolicy(t *testing.T) {
	_, err := run(t, "", "sick", "P1", "METABOLIC: GLUCOSE", ">=", "100")
	assert.ErrorIs(t, err, domain.ErrInvalidOperator)

	out, err := run(t, "", "--lenient-operators", "sick", "P1", "METABOLIC: GLUCOSE", ">=", "100")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestSickCommandBadThreshold(t *testing.T) {
	_, err := run(t, "", "sick", "P1", "METABOLIC: GLUCOSE", ">", "lots")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	stdin := `{"id":"a","kind":"earliest_lab_age","patientId":"P1"}
{"id":"b","kind":"age","patientId":"P1","asOf":"2023-06-01 00:00:00"}
{"id":"c","kind":"age","patientId":"nobody"}
`
	out, err := run(t, stdin, "--workers", "2", "batch")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var results []dtos.QueryResult
	for _, line := range lines {
		var res dtos.QueryResult
		require.NoError(t, json.Unmarshal([]byte(line), &res))
		results = append(results, res)
	}
	assert.Equal(t, "a", results[0].ID)
	require.NotNil(t, results[0].Age)
	assert.Equal(t, 42, *results[0].Age)
	require.NotNil(t, results[1].Age)
	assert.Equal(t, 73, *results[1].Age)
	assert.NotEmpty(t, results[2].ErrorKind)
}

func TestBatchCommandBadInput(t *testing.T) {
	_, err := run(t, "{oops", "batch")
	assert.Error(t, err)
}

func TestMissingSources(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"age", "P1"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patients source is required")
}

func TestMissingFileIsIOError(t *testing.T) {
	_, labs := writeSources(t)
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--patients", filepath.Join(t.TempDir(), "missing.txt"), "--labs", labs, "age", "P1"})
	err := root.Execute()
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.NotErrorIs(t, err, domain.ErrParse)
}

func TestConfigFileWithFlagOverride(t *testing.T) {
	patients, labs := writeSources(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	content := "patients: " + filepath.Join(t.TempDir(), "stale.txt") + "\nlabs: " + labs + "\nworkers: 3\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "--patients", patients, "earliest-lab-age", "P1"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "42\n", out.String())
}

func TestHTTPApp(t *testing.T) {
	patients, labs := writeSources(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("patients: "+patients+"\nlabs: "+labs+"\n"), 0o600))

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	rt, err := setup(cmd, &globalFlags{configPath: cfg})
	require.NoError(t, err)
	defer rt.close()

	app := newHTTPApp(rt)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/patients/P1/earliest-lab-age", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dtos.AgeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 42, body.Age)
}
