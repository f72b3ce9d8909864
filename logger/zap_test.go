package logger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func setupTestZap() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	return zap.New(core), &buf
}

func TestNewZapLogger(t *testing.T) {
	zapLogger, _ := setupTestZap()

	zapAdapter := NewZapLogger(zapLogger, Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
		Colorful:      true,
	})

	require.NotNil(t, zapAdapter)
	assert.Equal(t, Info, zapAdapter.(*ZapLogger).LogLevel)
	assert.Equal(t, 100*time.Millisecond, zapAdapter.(*ZapLogger).SlowThreshold)
}

func TestZapLogger_LogMode(t *testing.T) {
	logger := NewZapLogger(zap.NewNop(), Config{LogLevel: Error})

	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*ZapLogger).LogLevel)
	assert.Equal(t, Error, logger.(*ZapLogger).LogLevel)
}

func TestZapLogger_LogLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		level  LogLevel
		logMsg string
	}{
		{"Info level", Info, "Test info message"},
		{"Warn level", Warn, "Test warn message"},
		{"Error level", Error, "Test error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zapLogger, buf := setupTestZap()
			testLogger := NewZapLogger(zapLogger, Config{LogLevel: tt.level})

			switch tt.level {
			case Info:
				testLogger.Info(ctx, tt.logMsg, "key", "value")
			case Warn:
				testLogger.Warn(ctx, tt.logMsg, "key", "value")
			case Error:
				testLogger.Error(ctx, tt.logMsg, "key", "value")
			}

			output := buf.String()
			assert.Contains(t, output, tt.logMsg)
			assert.Contains(t, output, "key")
			assert.Contains(t, output, "value")
		})
	}
}

func TestZapLogger_Trace(t *testing.T) {
	ctx := context.Background()
	zapLogger, buf := setupTestZap()
	logger := NewZapLogger(zapLogger, Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	})

	t.Run("Normal trace", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "Post", 2
		}, nil)

		output := buf.String()
		assert.Contains(t, output, "relations resolved")
		assert.Contains(t, output, `"entity":"Post"`)
		assert.Contains(t, output, `"relations":2`)
		assert.Contains(t, output, "duration")
	})

	t.Run("Slow resolution", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now().Add(-150*time.Millisecond), func() (string, int64) {
			return "Category", 12
		}, nil)

		output := buf.String()
		assert.Contains(t, output, "Category")
		assert.Contains(t, output, "SLOW")
		assert.Contains(t, output, "slow_threshold")
	})

	t.Run("Error trace", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "Photo", 0
		}, assert.AnError)

		output := buf.String()
		assert.Contains(t, output, "Photo")
		assert.Contains(t, output, `"level":"error"`)
		assert.Contains(t, output, assert.AnError.Error())
	})

	t.Run("Warn level skips normal trace", func(t *testing.T) {
		buf.Reset()
		logger.LogMode(Warn).Trace(ctx, time.Now(), func() (string, int64) {
			return "Post", 2
		}, nil)

		assert.Empty(t, buf.String())
	})
}

func TestZapLogger_WithFields(t *testing.T) {
	zapLogger, buf := setupTestZap()
	logger := NewZapLogger(zapLogger, Config{LogLevel: Info})

	newLogger := logger.(*ZapLogger).WithFields(zap.String("catalog", "blog"))
	require.NotNil(t, newLogger)
	assert.Equal(t, Info, newLogger.LogLevel)

	newLogger.Info(context.Background(), "resolving")
	assert.Contains(t, buf.String(), `"catalog":"blog"`)
}

func TestZapLogger_SilentLevel(t *testing.T) {
	ctx := context.Background()
	zapLogger, buf := setupTestZap()
	logger := NewZapLogger(zapLogger, Config{LogLevel: Silent})

	logger.Info(ctx, "This should not be logged")
	logger.Warn(ctx, "This should not be logged")
	logger.Error(ctx, "This should not be logged")
	logger.Trace(ctx, time.Now(), func() (string, int64) { return "Post", 1 }, assert.AnError)

	assert.Empty(t, buf.String())
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected zapcore.Level
	}{
		{"Silent", Silent, zapcore.DPanicLevel},
		{"Error", Error, zapcore.ErrorLevel},
		{"Warn", Warn, zapcore.WarnLevel},
		{"Info", Info, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ZapLevel(tt.level))
		})
	}
}

func TestNewZapLoggerWithConfig(t *testing.T) {
	config := Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	}

	customZapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger := NewZapLoggerWithConfig(config, customZapConfig)

	require.NotNil(t, logger)
	assert.Equal(t, Info, logger.(*ZapLogger).LogLevel)
	assert.Equal(t, 100*time.Millisecond, logger.(*ZapLogger).SlowThreshold)
}

func BenchmarkZapLogger(b *testing.B) {
	ctx := context.Background()
	zapLogger, _ := setupTestZap()
	logger := NewZapLogger(zapLogger, Config{LogLevel: Info})

	b.Run("Trace", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Trace(ctx, time.Now(), func() (string, int64) {
				return "Post", 1
			}, nil)
		}
	})
}
