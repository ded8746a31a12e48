package settings

import (
	"errors"
	"fmt"
	"os"

	"ehr-analysis-service/internal/domain/entities"

	"gopkg.in/yaml.v3"
)

// Settings holds the runtime configuration. Values come from defaults, then
// an optional YAML file, then command-line flags.
type Settings struct {
	// Record sources: local paths or s3://bucket/key URIs, optionally
	// compressed (.gz, .zst, .lz4).
	PatientsSource string `yaml:"patients"`
	LabsSource     string `yaml:"labs"`

	// Debug switches zap to the development configuration.
	Debug bool `yaml:"debug"`

	// LenientOperators answers false for unsupported is-sick operators
	// instead of failing.
	LenientOperators bool `yaml:"lenient_operators"`

	// Workers bounds concurrent evaluation of batch queries.
	Workers int `yaml:"workers"`

	// Listen is the HTTP address used by the serve command.
	Listen string `yaml:"listen"`

	Columns Columns `yaml:"columns"`
}

// Columns overrides the header names the loader indexes on.
type Columns struct {
	Patient entities.PatientColumns `yaml:"patient"`
	Lab     entities.LabColumns     `yaml:"lab"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		Workers: 4,
		Listen:  "127.0.0.1:8080",
		Columns: Columns{
			Patient: entities.DefaultPatientColumns(),
			Lab:     entities.DefaultLabColumns(),
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return s, nil
}

// Validate returns an error if the settings cannot be used to load records.
func (s *Settings) Validate() error {
	var errs []error
	if s.PatientsSource == "" {
		errs = append(errs, errors.New("patients source is required"))
	}
	if s.LabsSource == "" {
		errs = append(errs, errors.New("labs source is required"))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("invalid worker count: %d (must be at least 1)", s.Workers))
	}
	if s.Columns.Patient.ID == "" {
		errs = append(errs, errors.New("patient identifier column name is required"))
	}
	if s.Columns.Lab.PatientID == "" {
		errs = append(errs, errors.New("lab patient identifier column name is required"))
	}
	return errors.Join(errs...)
}
