package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// New builds the process logger. format is "json" or "text".
func New(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	if out == nil {
		out = os.Stdout
	}
	log.Out = out

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl

	if format == "text" {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
		return log
	}
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	return log
}

// WithContext stores entry in ctx so that FromContext returns it.
func WithContext(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the request-scoped logger, or base decorated with
// whatever request and trace ids the context carries.
func FromContext(ctx context.Context, base logrus.FieldLogger) logrus.FieldLogger {
	if entry, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
		return entry
	}
	if entry, ok := ctx.Value(middleware.LogEntryCtxKey).(*requestEntry); ok {
		return entry.Entry
	}
	return base.WithFields(contextFields(ctx))
}

func contextFields(ctx context.Context) logrus.Fields {
	fields := logrus.Fields{}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		fields["request_id"] = reqID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	return fields
}
