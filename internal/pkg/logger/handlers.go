// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
)

// ContextHandler extracts values from context and adds them to log records
type ContextHandler struct {
	handler slog.Handler
	config  *LogConfig
}

// NewContextHandler creates a handler that enriches logs with context values
func NewContextHandler(handler slog.Handler, config *LogConfig) *ContextHandler {
	return &ContextHandler{
		handler: handler,
		config:  config,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	contextAttrs := extractContextAttrs(ctx, defaultContextKeys())
	if len(contextAttrs) == 0 {
		return h.handler.Handle(ctx, record)
	}

	newRecord := record.Clone()
	for _, a := range contextAttrs {
		if attr, ok := a.(slog.Attr); ok {
			newRecord.AddAttrs(attr)
		}
	}
	return h.handler.Handle(ctx, newRecord)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		handler: h.handler.WithAttrs(attrs),
		config:  h.config,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{
		handler: h.handler.WithGroup(name),
		config:  h.config,
	}
}

// SamplingHandler drops a share of debug and info records. Warnings and
// errors always pass.
type SamplingHandler struct {
	handler    slog.Handler
	sampleRate float64
	mu         *sync.Mutex
	rng        *rand.Rand
}

// NewSamplingHandler creates a handler that samples logs
func NewSamplingHandler(handler slog.Handler, sampleRate float64) *SamplingHandler {
	return &SamplingHandler{
		handler:    handler,
		sampleRate: sampleRate,
		mu:         &sync.Mutex{},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *SamplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelWarn {
		return h.handler.Enabled(ctx, level)
	}

	h.mu.Lock()
	sample := h.rng.Float64() < h.sampleRate
	h.mu.Unlock()

	return sample && h.handler.Enabled(ctx, level)
}

func (h *SamplingHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < slog.LevelWarn {
		record.AddAttrs(slog.Float64("sample_rate", h.sampleRate))
	}
	return h.handler.Handle(ctx, record)
}

func (h *SamplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SamplingHandler{
		handler:    h.handler.WithAttrs(attrs),
		sampleRate: h.sampleRate,
		mu:         h.mu,
		rng:        h.rng,
	}
}

func (h *SamplingHandler) WithGroup(name string) slog.Handler {
	return &SamplingHandler{
		handler:    h.handler.WithGroup(name),
		sampleRate: h.sampleRate,
		mu:         h.mu,
		rng:        h.rng,
	}
}

type sanitizeRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// SanitizationHandler masks credentials, emails and card numbers. Checkout
// logs pass shipping and payment details through here.
type SanitizationHandler struct {
	handler   slog.Handler
	rules     []sanitizeRule
	blacklist []string
}

// NewSanitizationHandler creates a handler that sanitizes sensitive data
func NewSanitizationHandler(handler slog.Handler) *SanitizationHandler {
	return &SanitizationHandler{
		handler: handler,
		rules: []sanitizeRule{
			{regexp.MustCompile(`(?i)(password|pwd|pass|secret|token|auth|bearer|api[-_]?key)\s*[:=]\s*["']?([^"'\s]+)`), "$1=***REDACTED***"},
			{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "***EMAIL***"},
			{regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`), "***CARD***"},
		},
		blacklist: []string{
			"password", "pwd", "secret", "token", "auth",
			"card_number", "cvv", "api_key",
		},
	}
}

func (h *SanitizationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SanitizationHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, h.sanitizeString(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, newRecord)
}

func (h *SanitizationHandler) sanitizeAttr(attr slog.Attr) slog.Attr {
	lowerKey := strings.ToLower(attr.Key)
	for _, blacklisted := range h.blacklist {
		if strings.Contains(lowerKey, blacklisted) {
			attr.Value = slog.StringValue("***REDACTED***")
			return attr
		}
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		attr.Value = slog.StringValue(h.sanitizeString(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		sanitized := make([]slog.Attr, len(group))
		for i, a := range group {
			sanitized[i] = h.sanitizeAttr(a)
		}
		attr.Value = slog.GroupValue(sanitized...)
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok {
			attr.Value = slog.StringValue(h.sanitizeString(err.Error()))
		}
	}

	return attr
}

func (h *SanitizationHandler) sanitizeString(s string) string {
	for _, rule := range h.rules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}

func (h *SanitizationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &SanitizationHandler{
		handler:   h.handler.WithAttrs(sanitized),
		rules:     h.rules,
		blacklist: h.blacklist,
	}
}

func (h *SanitizationHandler) WithGroup(name string) slog.Handler {
	return &SanitizationHandler{
		handler:   h.handler.WithGroup(name),
		rules:     h.rules,
		blacklist: h.blacklist,
	}
}

// MultiHandler sends logs to multiple handlers
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that sends to multiple destinations
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: newHandlers}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: newHandlers}
}

// PrettyTextHandler provides human-readable colored output for development
type PrettyTextHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string
}

// NewPrettyTextHandler creates a pretty text handler
func NewPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyTextHandler{
		opts: opts,
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *PrettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *PrettyTextHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timestamp := r.Time.Format("2006-01-02 15:04:05.000")
	levelColor := h.getLevelColor(r.Level)
	resetColor := "\033[0m"
	level := r.Level.String()

	fmt.Fprintf(h.w, "%s%s %s%s%s %s",
		levelColor,
		timestamp,
		strings.ToUpper(level),
		resetColor,
		strings.Repeat(" ", max(1, 7-len(level))),
		r.Message,
	)

	write := func(a slog.Attr) {
		fmt.Fprintf(h.w, " %s%s%s=%v%s", "\033[36m", h.prefix, a.Key, a.Value, resetColor)
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a)
		return true
	})

	fmt.Fprintln(h.w)

	return nil
}

func (h *PrettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *PrettyTextHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *PrettyTextHandler) getLevelColor(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "\033[37m" // White
	case slog.LevelInfo:
		return "\033[34m" // Blue
	case slog.LevelWarn:
		return "\033[33m" // Yellow
	case slog.LevelError:
		return "\033[31m" // Red
	default:
		return "\033[0m" // Reset
	}
}
