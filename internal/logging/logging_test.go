package logging

import (
	"testing"

	"greencart-ops-api/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "WARN"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = New(config.LogConfig{Development: true})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}
