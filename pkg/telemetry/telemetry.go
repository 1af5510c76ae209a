package telemetry

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Trace matches lifecycle.Trace so the adapters below can be assigned to
// lifecycle.Config.Trace directly.
type Trace = func(ctx context.Context, step string, subjects ...any) func(...any)

type provider struct {
	trace.TracerProvider
}

type tracer struct {
	trace.Tracer
}

type span struct {
	trace.Span
}

var (
	noopProvider = &provider{}
	noopTracer   = &tracer{}
	noopSpan     = &span{}
)

// NewProvider returns a tracer provider whose spans record nothing.
func NewProvider() trace.TracerProvider {
	return noopProvider
}

func (*provider) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return noopTracer
}

func (*tracer) Start(ctx context.Context, name string, options ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, noopSpan
}

func (*span) End(options ...trace.SpanEndOption)                  {}
func (*span) IsRecording() bool                                   { return false }
func (*span) RecordError(err error, options ...trace.EventOption) {}
func (*span) SetAttributes(kv ...attribute.KeyValue)              {}
func (*span) SetStatus(code codes.Code, description string)       {}
func (*span) SpanContext() trace.SpanContext                      { return trace.SpanContext{} }
func (*span) TracerProvider() trace.TracerProvider                { return noopProvider }

// Spans opens one span per lifecycle step. Errors passed to the returned
// end function are recorded on the span. A nil tracer records nothing.
func Spans(t trace.Tracer) Trace {
	if t == nil {
		t = noopProvider.Tracer("lifecycle")
	}
	return func(ctx context.Context, step string, subjects ...any) func(...any) {
		_, s := t.Start(ctx, "lifecycle."+step, trace.WithAttributes(Attributes(subjects...)...))
		return func(results ...any) {
			if err := firstError(results); err != nil {
				s.RecordError(err)
				s.SetStatus(codes.Error, err.Error())
			}
			s.End()
		}
	}
}

// Chain fans every step out to each of traces in order.
func Chain(traces ...Trace) Trace {
	return func(ctx context.Context, step string, subjects ...any) func(...any) {
		ends := make([]func(...any), 0, len(traces))
		for _, trace := range traces {
			if trace != nil {
				ends = append(ends, trace(ctx, step, subjects...))
			}
		}
		return func(results ...any) {
			for i := len(ends) - 1; i >= 0; i-- {
				ends[i](results...)
			}
		}
	}
}

// Attributes describes step subjects as span attributes keyed by position.
func Attributes(subjects ...any) []attribute.KeyValue {
	attributes := make([]attribute.KeyValue, 0, len(subjects))
	for i, subject := range subjects {
		key := "lifecycle.subject." + strconv.Itoa(i)
		switch subject := subject.(type) {
		case interface {
			ID() string
			DisplayName() string
		}:
			attributes = append(attributes,
				attribute.String(key, subject.DisplayName()),
				attribute.String(key+".id", subject.ID()),
			)
		case bool:
			attributes = append(attributes, attribute.Bool(key, subject))
		case int:
			attributes = append(attributes, attribute.Int(key, subject))
		case string:
			attributes = append(attributes, attribute.String(key, subject))
		case nil:
		default:
			attributes = append(attributes, attribute.String(key, fmt.Sprint(subject)))
		}
	}
	return attributes
}

func firstError(results []any) error {
	for _, result := range results {
		if err, ok := result.(error); ok && err != nil {
			return err
		}
	}
	return nil
}
