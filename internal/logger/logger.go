package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger levels
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Context keys
type contextKey string

const (
	RequestIDKey     contextKey = "request_id"
	CorrelationIDKey contextKey = "correlation_id"
	EndpointKey      contextKey = "endpoint"
)

// Global logger instance
var Logger *slog.Logger

// Config for the logger
type Config struct {
	Level       slog.Level
	Format      string // "json" or "text"
	Output      string // "stdout", "stderr", or file path
	ServiceName string
	Environment string
}

// DefaultConfig is used when no explicit configuration is given
var DefaultConfig = Config{
	Level:       LevelInfo,
	Format:      "json",
	Output:      "stdout",
	ServiceName: "syncscript-gateway",
	Environment: "development",
}

// StructuredLogEntry is the wire format for a single log line
type StructuredLogEntry struct {
	Timestamp   string                 `json:"timestamp"`
	Level       string                 `json:"level"`
	Message     string                 `json:"message"`
	Service     string                 `json:"service"`
	Environment string                 `json:"environment"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Request     map[string]interface{} `json:"request,omitempty"`
	Response    map[string]interface{} `json:"response,omitempty"`
	Error       map[string]interface{} `json:"error,omitempty"`
}

// Init initializes the global logger
func Init(config Config) error {
	var output *os.File
	var err error

	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		output, err = os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
	}

	var handler slog.Handler
	switch config.Format {
	case "json":
		handler = &StructuredJSONHandler{
			writer:      output,
			level:       config.Level,
			serviceName: config.ServiceName,
			environment: config.Environment,
		}
	default:
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: config.Level})
	}

	Logger = slog.New(handler)
	return nil
}

// InitFromEnv initializes the global logger from environment variables
func InitFromEnv() error {
	config := DefaultConfig

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		config.Level = LevelDebug
	case "info":
		config.Level = LevelInfo
	case "warn", "warning":
		config.Level = LevelWarn
	case "error":
		config.Level = LevelError
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = format
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		config.Output = output
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}

	return Init(config)
}

// StructuredJSONHandler implements a custom JSON handler for the structured format
type StructuredJSONHandler struct {
	writer      io.Writer
	level       slog.Level
	serviceName string
	environment string
}

func (h *StructuredJSONHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *StructuredJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *StructuredJSONHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *StructuredJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := StructuredLogEntry{
		Timestamp:   r.Time.Format(time.RFC3339),
		Level:       r.Level.String(),
		Message:     r.Message,
		Service:     h.serviceName,
		Environment: h.environment,
		Attributes:  make(map[string]interface{}),
	}

	if ctx != nil {
		if requestID := ctx.Value(RequestIDKey); requestID != nil {
			if entry.Request == nil {
				entry.Request = make(map[string]interface{})
			}
			entry.Request["request_id"] = requestID
		}
		if correlationID := ctx.Value(CorrelationIDKey); correlationID != nil {
			if entry.Request == nil {
				entry.Request = make(map[string]interface{})
			}
			entry.Request["correlation_id"] = correlationID
		}
		if endpoint := ctx.Value(EndpointKey); endpoint != nil {
			entry.Attributes["endpoint"] = endpoint
		}
	}

	// Route attributes to the request/response/error sections by prefix
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		value := a.Value.Any()

		switch {
		case strings.HasPrefix(key, "request_"):
			if entry.Request == nil {
				entry.Request = make(map[string]interface{})
			}
			entry.Request[strings.TrimPrefix(key, "request_")] = value
		case strings.HasPrefix(key, "response_"):
			if entry.Response == nil {
				entry.Response = make(map[string]interface{})
			}
			entry.Response[strings.TrimPrefix(key, "response_")] = value
		case key == "error":
			if entry.Error == nil {
				entry.Error = make(map[string]interface{})
			}
			if err, ok := value.(error); ok {
				entry.Error["message"] = err.Error()
				entry.Error["type"] = fmt.Sprintf("%T", err)
			} else {
				entry.Error["message"] = fmt.Sprintf("%v", value)
			}
		default:
			entry.Attributes[key] = value
		}
		return true
	})

	if len(entry.Attributes) == 0 {
		entry.Attributes = nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = h.writer.Write(data)
	return err
}

// WithRequestID returns a context carrying the request ID for log correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithCorrelationID returns a context carrying the correlation ID
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// WithEndpoint returns a context carrying the handling endpoint's name
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, EndpointKey, endpoint)
}

// Convenience functions using the global logger

func Debug(msg string, args ...any) {
	if Logger != nil {
		Logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if Logger != nil {
		Logger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if Logger != nil {
		Logger.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if Logger != nil {
		Logger.Error(msg, args...)
	}
}

// Context-aware convenience functions

func DebugCtx(ctx context.Context, msg string, args ...any) {
	if Logger != nil {
		Logger.DebugContext(ctx, msg, args...)
	}
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	if Logger != nil {
		Logger.InfoContext(ctx, msg, args...)
	}
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	if Logger != nil {
		Logger.WarnContext(ctx, msg, args...)
	}
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	if Logger != nil {
		Logger.ErrorContext(ctx, msg, args...)
	}
}
