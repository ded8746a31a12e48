package loader

import (
	"context"
	"fmt"
	"io"

	"ehr-analysis-service/internal/domain"
	"ehr-analysis-service/internal/domain/entities"
	"ehr-analysis-service/internal/domain/repositories"

	"go.uber.org/zap"
)

// SourceOpener resolves a source URI to a readable stream.
type SourceOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Input is one named record source.
type Input struct {
	Name   string
	Reader io.Reader
}

// Options selects the header columns the loader indexes on.
type Options struct {
	PatientColumns entities.PatientColumns
	LabColumns     entities.LabColumns
}

// DefaultOptions uses the standard column names.
func DefaultOptions() Options {
	return Options{
		PatientColumns: entities.DefaultPatientColumns(),
		LabColumns:     entities.DefaultLabColumns(),
	}
}

// Loader turns a patient source and a lab source into a MemoryStore.
type Loader struct {
	opener SourceOpener
	logger *zap.SugaredLogger
	opts   Options
}

// NewLoader creates a Loader. opener may be nil when only Load is used.
func NewLoader(opener SourceOpener, logger *zap.SugaredLogger, opts Options) *Loader {
	return &Loader{opener: opener, logger: logger, opts: opts}
}

// LoadFiles opens both URIs and loads them.
func (l *Loader) LoadFiles(ctx context.Context, patientURI, labURI string) (*repositories.MemoryStore, error) {
	if l.opener == nil {
		return nil, fmt.Errorf("loader has no source opener")
	}

	patients, err := l.opener.Open(ctx, patientURI)
	if err != nil {
		return nil, err
	}
	defer patients.Close()

	labs, err := l.opener.Open(ctx, labURI)
	if err != nil {
		return nil, err
	}
	defer labs.Close()

	return l.Load(Input{Name: patientURI, Reader: patients}, Input{Name: labURI, Reader: labs})
}

// Load reads both sources in order, patients first, and builds the indices.
// Each source is read once; no patient/lab join happens here.
func (l *Loader) Load(patients, labs Input) (*repositories.MemoryStore, error) {
	b := repositories.NewStoreBuilder()

	patientRows, err := l.loadPatients(b, patients)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	labRows, err := l.loadLabs(b, labs)
	if err != nil {
		return nil, fmt.Errorf("load labs: %w", err)
	}

	store := b.Build()
	l.logger.Infow("Records loaded",
		"patientSource", patients.Name,
		"patientRows", patientRows,
		"patients", store.Count(),
		"labSource", labs.Name,
		"labRows", labRows,
		"labPatients", store.LabPatientCount())
	return store, nil
}

func (l *Loader) loadPatients(b *repositories.StoreBuilder, in Input) (int, error) {
	cols := l.opts.PatientColumns
	t, err := newTableReader(in.Name, in.Reader)
	if err != nil {
		return 0, err
	}
	if err := t.require(cols.ID); err != nil {
		return 0, err
	}

	rows := 0
	for {
		fields, err := t.row()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows++

		p := entities.NewPatient(cols, t.header, fields)
		if p.ID == "" {
			return rows, domain.NewParseError(in.Name, t.line, cols.ID, "", "patient identifier is empty", nil)
		}
		if b.PutPatient(p) {
			l.logger.Debugw("Duplicate patient identifier, keeping later row", "patientId", p.ID, "line", t.line)
		}
	}
}

func (l *Loader) loadLabs(b *repositories.StoreBuilder, in Input) (int, error) {
	cols := l.opts.LabColumns
	t, err := newTableReader(in.Name, in.Reader)
	if err != nil {
		return 0, err
	}
	if err := t.require(cols.PatientID); err != nil {
		return 0, err
	}

	rows := 0
	for {
		fields, err := t.row()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows++
		b.AppendLab(entities.NewLabResult(cols, t.header, fields))
	}
}
