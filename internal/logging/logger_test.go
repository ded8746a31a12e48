package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	dev, err := New(true)
	require.NoError(t, err)
	assert.True(t, dev.Desugar().Core().Enabled(zapcore.DebugLevel))

	prod, err := New(false)
	require.NoError(t, err)
	assert.False(t, prod.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, zap.L())
}
