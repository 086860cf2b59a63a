package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Setup configures the global zerolog logger.
func Setup(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// WithRequest attaches a logger carrying the request id and, when a span is
// recording, the trace and span ids.
func WithRequest(ctx context.Context, requestID string) context.Context {
	lc := log.With()
	if requestID != "" {
		lc = lc.Str("request_id", requestID)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		sCtx := span.SpanContext()
		if sCtx.HasTraceID() {
			lc = lc.Str("trace_id", sCtx.TraceID().String()).Str("span_id", sCtx.SpanID().String())
		}
	}

	l := lc.Logger()
	return l.WithContext(ctx)
}
