package observability

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one unit of work. Spans started from a context that already
// holds one become its children and share its trace ID.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Start     time.Time
	Duration  time.Duration

	tags []slog.Attr
	err  error
	done bool
}

type spanContextKey struct{}

func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		TraceID:   newID(),
		SpanID:    newID(),
		Operation: operation,
		Start:     time.Now(),
	}
	if parent := GetSpan(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}
	return context.WithValue(ctx, spanContextKey{}, span), span
}

func GetSpan(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}

func (s *Span) SetTag(key, value string) {
	s.tags = append(s.tags, slog.String(key, value))
}

func (s *Span) SetError(err error) {
	s.err = err
}

// Finish records the duration. Later calls are ignored.
func (s *Span) Finish() {
	if s.done {
		return
	}
	s.done = true
	s.Duration = time.Since(s.Start)
}

// Attrs flattens the span for structured logging.
func (s *Span) Attrs() []slog.Attr {
	status := "OK"
	if s.err != nil {
		status = "ERROR"
	}

	attrs := []slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("operation", s.Operation),
		slog.String("status", status),
	}
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	if s.done {
		attrs = append(attrs, slog.Duration("duration", s.Duration))
	}
	if s.err != nil {
		attrs = append(attrs, slog.String("error", s.err.Error()))
	}
	return append(attrs, s.tags...)
}

func newID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}
