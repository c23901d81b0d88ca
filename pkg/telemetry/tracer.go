package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hashnav/pkg/history"
)

// Default tracer name for hashnav.
const defaultTracerName = "hashnav"

// SpanName is the name of every transition span.
const SpanName = "hashnav.transition"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "hashnav").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ev history.TransitionEvent) []attribute.KeyValue
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev history.TransitionEvent) []attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracer records one span per finished transition. Spans are created after
// the fact with the transition's own start and end timestamps.
type Tracer struct {
	tracer    trace.Tracer
	extractor func(ev history.TransitionEvent) []attribute.KeyValue
}

// NewTracer creates a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer:    provider.Tracer(config.TracerName),
		extractor: config.AttributeExtractor,
	}
}

// ObserveTransition implements history.Observer.
func (t *Tracer) ObserveTransition(ev history.TransitionEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("nav.id", ev.ID.String()),
		attribute.String("nav.location", ev.Location.String()),
		attribute.String("nav.outcome", ev.Outcome),
	}
	if ev.From != nil {
		attrs = append(attrs, attribute.String("nav.from", ev.From.FullPath))
	}
	if ev.To != nil {
		attrs = append(attrs, attribute.String("nav.to", ev.To.FullPath))
		if ev.To.Name != "" {
			attrs = append(attrs, attribute.String("nav.route", ev.To.Name))
		}
	}
	if t.extractor != nil {
		attrs = append(attrs, t.extractor(ev)...)
	}

	_, span := t.tracer.Start(context.Background(), SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(ev.Started),
	)
	switch ev.Outcome {
	case history.OutcomeError, history.OutcomeNoMatch:
		if ev.Err != nil {
			span.RecordError(ev.Err)
			span.SetStatus(codes.Error, ev.Err.Error())
		} else {
			span.SetStatus(codes.Error, ev.Outcome)
		}
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(ev.Finished))
}

// ObserveURLWrite implements history.Observer. Address writes are not traced.
func (t *Tracer) ObserveURLWrite(history.Mode, string) {}
