package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"crypto-portfolio-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		log, err := NewLogger(config.Logger{Level: "warn", Format: "json"})
		assert.NoError(t, err)
		assert.NotNil(t, log)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Console", func(t *testing.T) {
		log, err := NewLogger(config.Logger{Level: "debug", Format: "console"})
		assert.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("BadLevel", func(t *testing.T) {
		_, err := NewLogger(config.Logger{Level: "loud", Format: "json"})
		assert.Error(t, err)
	})

	t.Run("BadFormat", func(t *testing.T) {
		_, err := NewLogger(config.Logger{Level: "info", Format: "xml"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown log format")
	})
}

func TestNewLogger_FileOutput(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(config.Logger{Level: "info", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	// Act
	log.Info("Funds added")
	require.NoError(t, log.Sync())

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "Funds added", entry["msg"])
	assert.Equal(t, "crypto-portfolio", entry["service"])
	assert.Equal(t, "info", entry["level"])
}
