package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/observer/internal/observer"
)

type counting struct{ n int }

func (c *counting) Update(observer.Subject) { c.n++ }
func (c *counting) String() string         { return "counting" }

type panicking struct{ id int }

func (p *panicking) Update(observer.Subject) { panic("boom") }

func newTestProvider(t *testing.T) (*Provider, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	p := NewProviderWithExporter(Config{ServiceName: "test"}, exp)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p, exp
}

func TestTraced_RecordsSpanPerUpdate(t *testing.T) {
	provider, exp := newTestProvider(t)

	inner := &counting{}
	h, err := observer.NewHolder("test1")
	require.NoError(t, err)
	require.NoError(t, h.Add(Wrap(provider.Tracer(), inner)))

	require.NoError(t, h.Set(3))
	require.NoError(t, h.Set(21))
	require.Equal(t, 2, inner.n)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	span := spans[1]
	require.Equal(t, "observer.update.counting", span.Name)
	require.Equal(t, codes.Ok, span.Status.Code)

	attrs := map[string]any{}
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, "test1", attrs[AttrSubjectName])
	require.EqualValues(t, 21, attrs[AttrSubjectValue])
	require.Equal(t, "counting", attrs[AttrObserverType])
}

func TestTraced_WithParent(t *testing.T) {
	provider, exp := newTestProvider(t)

	ctx, root := provider.Tracer().Start(context.Background(), "root")
	traced := Wrap(provider.Tracer(), &counting{}, WithParent(ctx))
	traced.Update(stub{})
	root.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	require.Equal(t, root.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func TestTraced_PanicMarksSpanAndPropagates(t *testing.T) {
	provider, exp := newTestProvider(t)

	traced := Wrap(provider.Tracer(), &panicking{})
	require.PanicsWithValue(t, "boom", func() { traced.Update(stub{}) })

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status.Code)
	require.Equal(t, "observer panicked: boom", spans[0].Status.Description)
	require.Equal(t, "observer.update.*tracing.panicking", spans[0].Name)
}

func TestTraced_NilTracerPassesThrough(t *testing.T) {
	inner := &counting{}
	traced := Wrap(nil, inner)
	traced.Update(stub{})

	require.Equal(t, 1, inner.n)
	require.Same(t, inner, traced.Unwrap())
	require.Equal(t, "Traced(counting)", traced.String())
}

func TestTraced_HasOwnIdentity(t *testing.T) {
	inner := &counting{}
	h, err := observer.NewHolder("test1")
	require.NoError(t, err)

	require.NoError(t, h.Add(inner))
	require.NoError(t, h.Add(Wrap(nil, inner)), "wrapper is a distinct observer")
	require.Len(t, h.Observers(), 2)
}

type stub struct{}

func (stub) Name() string { return "stub" }
func (stub) Value() int   { return 1 }
