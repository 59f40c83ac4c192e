package logger

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger is a chi middleware.LogFormatter writing access logs through logrus.
type RequestLogger struct {
	log *logrus.Logger
}

func NewRequestLogger(log *logrus.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&RequestLogger{log: log})
}

func (l *RequestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	fields := contextFields(r.Context())
	fields["method"] = r.Method
	fields["path"] = r.URL.Path
	fields["remote_addr"] = r.RemoteAddr
	fields["user_agent"] = r.UserAgent()

	return &requestEntry{Entry: l.log.WithFields(fields)}
}

type requestEntry struct {
	*logrus.Entry
}

func (e *requestEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	entry := e.WithFields(logrus.Fields{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
	})
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request completed")
	}
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	e.WithFields(logrus.Fields{
		"panic": fmt.Sprintf("%+v", v),
		"stack": string(stack),
	}).Error("request panicked")
}
