package main

import (
	"fmt"

	"ehr-analysis-service/internal/domain/repositories"
	"ehr-analysis-service/internal/loader"
	"ehr-analysis-service/internal/logging"
	"ehr-analysis-service/internal/services"
	"ehr-analysis-service/internal/settings"
	"ehr-analysis-service/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags override values read from the config file when set.
type globalFlags struct {
	configPath       string
	patients         string
	labs             string
	debug            bool
	lenientOperators bool
	workers          int
}

// runtime is everything a command needs once the records are loaded.
type runtime struct {
	settings *settings.Settings
	logger   *zap.SugaredLogger
	store    *repositories.MemoryStore
	queries  services.QueryServiceContract
}

func (r *runtime) close() {
	_ = r.logger.Sync()
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "ehr-analysis",
		Short:        "Load patient and lab record files and answer questions about them",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flags.patients, "patients", "", "patient records source (path or s3://bucket/key)")
	pf.StringVar(&flags.labs, "labs", "", "lab results source (path or s3://bucket/key)")
	pf.BoolVar(&flags.debug, "debug", false, "enable development logging")
	pf.BoolVar(&flags.lenientOperators, "lenient-operators", false, "answer false instead of failing on unsupported operators")
	pf.IntVar(&flags.workers, "workers", 0, "number of concurrent batch workers")

	root.AddCommand(
		newAgeCommand(flags),
		newSickCommand(flags),
		newEarliestLabAgeCommand(flags),
		newBatchCommand(flags),
		newServeCommand(flags),
	)
	return root
}

// resolveSettings layers explicitly set flags over the config file.
func resolveSettings(cmd *cobra.Command, flags *globalFlags) (*settings.Settings, error) {
	s, err := settings.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("patients") {
		s.PatientsSource = flags.patients
	}
	if f.Changed("labs") {
		s.LabsSource = flags.labs
	}
	if f.Changed("debug") {
		s.Debug = flags.debug
	}
	if f.Changed("lenient-operators") {
		s.LenientOperators = flags.lenientOperators
	}
	if f.Changed("workers") {
		s.Workers = flags.workers
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// setup resolves settings, builds the logger and loads both record sources.
func setup(cmd *cobra.Command, flags *globalFlags) (*runtime, error) {
	s, err := resolveSettings(cmd, flags)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(s.Debug)
	if err != nil {
		return nil, err
	}

	l := loader.NewLoader(source.NewOpener(logger), logger, loader.Options{
		PatientColumns: s.Columns.Patient,
		LabColumns:     s.Columns.Lab,
	})
	store, err := l.LoadFiles(cmd.Context(), s.PatientsSource, s.LabsSource)
	if err != nil {
		logger.Errorw("Failed to load records", "error", err)
		_ = logger.Sync()
		return nil, err
	}

	queries := services.NewQueryService(store, store.Labs(), logger,
		services.WithLenientOperators(s.LenientOperators))

	return &runtime{
		settings: s,
		logger:   logger,
		store:    store,
		queries:  queries,
	}, nil
}
