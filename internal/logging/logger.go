package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Debug selects zap's development
// configuration writing to stderr; otherwise the production JSON config is used.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		logger, err = cfg.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return logger.Sugar(), nil
}
