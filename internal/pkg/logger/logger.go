// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// Context keys for logging
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeySessionID ContextKey = "session_id"
	ContextKeyOrderID   ContextKey = "order_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
	ContextKeyTaskType  ContextKey = "task_type"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string  `json:"level"`
	Format         string  `json:"format"`
	Output         string  `json:"output"`
	AddSource      bool    `json:"add_source"`
	SampleRate     float64 `json:"sample_rate"`
	Environment    string  `json:"environment"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	EnableSampling bool    `json:"enable_sampling"`
	// AuditFile, when set, receives a JSON copy of every warn+ record
	AuditFile string `json:"audit_file"`
}

// Logger wraps slog.Logger with context extraction
type Logger struct {
	*slog.Logger
	config      *LogConfig
	contextKeys []ContextKey
}

// SetupLogger initializes the process logger and installs it as the slog default
func SetupLogger(level string, format string) *Logger {
	config := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      level == "debug",
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
		AuditFile:      os.Getenv("LOG_AUDIT_FILE"),
	}

	logger := NewLogger(config)
	slog.SetDefault(logger.Logger)

	return logger
}

// NewLogger creates a new logger
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		}
	}

	return newLogger(config, getWriter(config.Output))
}

func newLogger(config *LogConfig, writer io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceAttr(config, groups, a)
		},
	}

	var primaryHandler slog.Handler
	switch config.Format {
	case "text":
		primaryHandler = NewPrettyTextHandler(writer, opts)
	default:
		primaryHandler = slog.NewJSONHandler(writer, opts)
	}

	primaryHandler = NewContextHandler(primaryHandler, config)

	if config.EnableSampling && config.SampleRate > 0 && config.SampleRate < 1.0 {
		primaryHandler = NewSamplingHandler(primaryHandler, config.SampleRate)
	}

	var finalHandler slog.Handler = primaryHandler
	if config.AuditFile != "" {
		if file, err := os.OpenFile(config.AuditFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			audit := NewContextHandler(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelWarn}), config)
			finalHandler = NewMultiHandler(primaryHandler, audit)
		}
	}

	// sanitization sits outermost so every destination sees masked values
	finalHandler = NewSanitizationHandler(finalHandler)

	if config.ServiceName != "" || config.Environment != "" {
		attrs := []slog.Attr{}
		if config.ServiceName != "" {
			attrs = append(attrs, slog.String("service", config.ServiceName))
		}
		if config.ServiceVersion != "" {
			attrs = append(attrs, slog.String("version", config.ServiceVersion))
		}
		if config.Environment != "" {
			attrs = append(attrs, slog.String("env", config.Environment))
		}
		finalHandler = finalHandler.WithAttrs(attrs)
	}

	return &Logger{
		Logger:      slog.New(finalHandler),
		config:      config,
		contextKeys: defaultContextKeys(),
	}
}

// WithContext returns a logger carrying the context's request values
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx, l.contextKeys)
	if len(attrs) > 0 {
		return l.Logger.With(attrs...)
	}
	return l.Logger
}

// Helper functions

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch output {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		if strings.HasPrefix(output, "file:") {
			filename := strings.TrimPrefix(output, "file:")
			file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return os.Stdout
			}
			return file
		}
		return os.Stdout
	}
}

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeySessionID,
		ContextKeyOrderID,
		ContextKeyClientIP,
		ContextKeyUserAgent,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyTaskType,
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []any {
	attrs := []any{}

	for _, key := range keys {
		if val := ctx.Value(key); val != nil {
			keyStr := string(key)
			switch v := val.(type) {
			case string:
				if v != "" {
					attrs = append(attrs, slog.String(keyStr, v))
				}
			case int:
				attrs = append(attrs, slog.Int(keyStr, v))
			case time.Duration:
				attrs = append(attrs, slog.Duration(keyStr, v))
			case uuid.UUID:
				attrs = append(attrs, slog.String(keyStr, v.String()))
			default:
				attrs = append(attrs, slog.Any(keyStr, v))
			}
		}
	}

	return attrs
}

func replaceAttr(config *LogConfig, _ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	}

	// Rename level key for some log aggregators
	if a.Key == slog.LevelKey && config.Format == "json" {
		a.Key = "severity"
	}

	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}

	return a
}
