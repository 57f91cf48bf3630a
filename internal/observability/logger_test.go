// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/locus/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -- Test Cases --

func TestNew(t *testing.T) {
	t.Run("should build console logger with colors", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}
		logger := New(cfg, zapcore.AddSync(&buf))
		logger.Named("element").Info("Defining element.", zap.String("locator", "div "))
		require.NoError(t, logger.Sync())

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, colorGreen, "Info level should be colorized green")
		assert.Contains(t, output, colorReset)
		assert.Contains(t, output, "TestService.element.")
		assert.Contains(t, output, "Defining element.")
	})

	t.Run("should build json logger", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}
		logger := New(cfg, zapcore.AddSync(&buf))
		logger.Warn("Failed to click.", zap.Int("attempt", 2))
		require.NoError(t, logger.Sync())

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Log output should be valid JSON")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "Failed to click.", entry["msg"])
		assert.Equal(t, float64(2), entry["attempt"])
	})

	t.Run("should filter below configured level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(config.LoggerConfig{Level: "ERROR", Format: "json"}, zapcore.AddSync(&buf))
		logger.Info("hidden")
		logger.Warn("hidden too")
		logger.Error("shown")
		require.NoError(t, logger.Sync())

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("should fall back to info on unknown level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(config.LoggerConfig{Level: "verbose", Format: "json"}, zapcore.AddSync(&buf))
		logger.Debug("debug line")
		logger.Info("info line")
		require.NoError(t, logger.Sync())

		assert.NotContains(t, buf.String(), "debug line")
		assert.Contains(t, buf.String(), "info line")
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "locus.log")
		var console bytes.Buffer
		cfg := config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}
		logger := New(cfg, zapcore.AddSync(&console))
		logger.Error("This should go to the file.")
		_ = logger.Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
		// The file is always JSON.
		assert.True(t, strings.HasPrefix(strings.TrimSpace(string(content)), "{"))
	})
}

func TestInitialize(t *testing.T) {
	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, zapcore.AddSync(&buf))
		logger1 := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&buf))
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Nil(t, globalLogger.Load())
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		Initialize(config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"}, zapcore.AddSync(&bytes.Buffer{}))

		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
