package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/observer/internal/observer"
)

// Traced decorates an observer with one span per update.
// A Traced is itself an observer with its own identity: register and
// remove the wrapper, not the wrapped observer.
type Traced struct {
	next   observer.Observer[observer.Subject]
	tracer trace.Tracer
	parent context.Context
	label  string
}

// TracedOption configures a Traced observer.
type TracedOption func(*Traced)

// WithParent makes update spans children of the span carried by ctx.
func WithParent(ctx context.Context) TracedOption {
	return func(t *Traced) {
		t.parent = ctx
	}
}

// Wrap returns next decorated with tracing. A nil tracer disables spans.
func Wrap(tracer trace.Tracer, next observer.Observer[observer.Subject], opts ...TracedOption) *Traced {
	t := &Traced{
		next:   next,
		tracer: tracer,
		parent: context.Background(),
		label:  label(next),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update implements observer.Observer.
func (t *Traced) Update(s observer.Subject) {
	if t.tracer == nil {
		t.next.Update(s)
		return
	}

	_, span := t.tracer.Start(t.parent, SpanPrefixUpdate+t.label,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrSubjectName, s.Name()),
			attribute.Int(AttrSubjectValue, s.Value()),
			attribute.String(AttrObserverType, t.label),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("observer panicked: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
	}()

	t.next.Update(s)
	span.SetStatus(codes.Ok, "")
}

// Unwrap returns the decorated observer.
func (t *Traced) Unwrap() observer.Observer[observer.Subject] {
	return t.next
}

func (t *Traced) String() string {
	return "Traced(" + t.label + ")"
}

func label(o any) string {
	if s, ok := o.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", o)
}
