package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogProcessor writes every ended span to a slog logger
type LogProcessor struct {
	logger *slog.Logger
}

// NewLogProcessor creates a processor logging to logger, or to the default
// logger when nil
func NewLogProcessor(logger *slog.Logger) *LogProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	level := slog.LevelInfo
	if span.Status().Code == codes.Error {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("trace", span.SpanContext().TraceID().String()),
		slog.String("span", span.SpanContext().SpanID().String()),
		slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
		slog.Int("events", len(span.Events())),
	}
	if span.Parent().IsValid() {
		attrs = append(attrs, slog.String("parent", span.Parent().SpanID().String()))
	}
	if desc := span.Status().Description; desc != "" {
		attrs = append(attrs, slog.String("error", desc))
	}

	p.logger.LogAttrs(context.Background(), level, "span "+span.Name(), attrs...)
}

func (p *LogProcessor) Shutdown(context.Context) error   { return nil }
func (p *LogProcessor) ForceFlush(context.Context) error { return nil }

// NewProvider creates a tracer provider that logs ended spans
func NewProvider(logger *slog.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewLogProcessor(logger)))
}
