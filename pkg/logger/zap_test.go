package logger

import (
	"testing"

	"go-warehouse-inventory/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("production honours level", func(t *testing.T) {
		log, err := New(config.LoggerConfig{Level: "warn", Encoding: "json"}, false)
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("development logs debug", func(t *testing.T) {
		log, err := New(config.LoggerConfig{Level: "error"}, true)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		log, err := New(config.LoggerConfig{Level: "loud", Encoding: "console"}, false)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})
}
