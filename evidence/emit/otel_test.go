package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestTracer wires an in-memory exporter so tests can inspect spans.
func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, NewOTelEmitter(tp.Tracer("test"))
}

func TestOTelEmitter_Emit(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		ScenarioID: "what-if-1",
		Pass:       2,
		NodeID:     "claim-a",
		Msg:        "pass_complete",
		Meta: map[string]interface{}{
			"max_delta": 0.003,
			"converged": true,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "pass_complete" {
		t.Errorf("expected span name 'pass_complete', got %q", span.Name)
	}

	attrs := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["evidencegraph.scenario_id"].AsString(); got != "what-if-1" {
		t.Errorf("expected scenario_id 'what-if-1', got %q", got)
	}
	if got := attrs["evidencegraph.pass"].AsInt64(); got != 2 {
		t.Errorf("expected pass 2, got %d", got)
	}
	if got := attrs["evidencegraph.node_id"].AsString(); got != "claim-a" {
		t.Errorf("expected node_id 'claim-a', got %q", got)
	}
	if got := attrs["evidencegraph.max_delta"].AsFloat64(); got != 0.003 {
		t.Errorf("expected max_delta 0.003, got %v", got)
	}
	if got := attrs["evidencegraph.converged"].AsBool(); !got {
		t.Error("expected converged attribute to be true")
	}
}

func TestOTelEmitter_ErrorStatus(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		ScenarioID: "what-if-1",
		Msg:        "patch_skipped",
		Meta:       map[string]interface{}{"error": "unknown node"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "unknown node" {
		t.Errorf("expected status description 'unknown node', got %q", spans[0].Status.Description)
	}
}

func TestOTelEmitter_EmitBatch(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	events := []Event{
		{ScenarioID: "s", Msg: "scenario_start"},
		{ScenarioID: "s", Pass: 1, Msg: "pass_complete"},
		{ScenarioID: "s", Pass: 1, Msg: "simulation_complete"},
	}
	if err := emitter.EmitBatch(context.Background(), events); err != nil {
		t.Fatalf("EmitBatch failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != len(events) {
		t.Fatalf("expected %d spans, got %d", len(events), len(spans))
	}
	for i, e := range events {
		if spans[i].Name != e.Msg {
			t.Errorf("span %d: expected name %q, got %q", i, e.Msg, spans[i].Name)
		}
	}
}

func TestOTelEmitter_Flush(t *testing.T) {
	_, emitter := newTestTracer(t)
	if err := emitter.Flush(context.Background()); err != nil {
		t.Errorf("Flush failed: %v", err)
	}
}
