package telemetry

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/history"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/router"
)

func loc(raw string) route.Location {
	return route.ParseLocation(raw)
}

func newObservedHash(t *testing.T, obs history.Observer) (*history.Hash, *browser.Memory) {
	t.Helper()
	rt := router.New()
	if err := rt.Add(
		router.RecordConfig{Path: "/home", Name: "home"},
		router.RecordConfig{Path: "/about", Name: "about"},
	); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	win := browser.NewMemory("http://localhost/#/home")
	h := history.NewHash(win, rt,
		history.WithObserver(obs),
		history.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err := history.Init(h); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return h, win
}

func newRecordingTracer(opts ...TracerOption) (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(append([]TracerOption{WithTracerProvider(tp)}, opts...)...), recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTracerRecordsSpan(t *testing.T) {
	tracer, recorder := newRecordingTracer()

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.New()
	tracer.ObserveTransition(history.TransitionEvent{
		ID:       id,
		Location: loc("/about"),
		From:     route.Start,
		To:       route.New(&route.Record{Path: "/about", Name: "about"}, "/about", nil, "", nil),
		Outcome:  history.OutcomeCommitted,
		Started:  started,
		Finished: started.Add(5 * time.Millisecond),
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != SpanName {
		t.Errorf("Name() = %q, want %q", span.Name(), SpanName)
	}
	if !span.StartTime().Equal(started) || span.EndTime().Sub(span.StartTime()) != 5*time.Millisecond {
		t.Errorf("span times = %v .. %v", span.StartTime(), span.EndTime())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("Status().Code = %v, want Ok", span.Status().Code)
	}

	attrs := attrMap(span.Attributes())
	want := map[string]string{
		"nav.id":      id.String(),
		"nav.from":    "/",
		"nav.to":      "/about",
		"nav.route":   "about",
		"nav.outcome": "committed",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestTracerErrorStatus(t *testing.T) {
	tests := []struct {
		outcome string
		err     error
		want    codes.Code
	}{
		{history.OutcomeNoMatch, errors.New("no route"), codes.Error},
		{history.OutcomeError, errors.New("guard failed"), codes.Error},
		{history.OutcomeCancelled, nil, codes.Ok},
		{history.OutcomeDuplicated, nil, codes.Ok},
	}
	for _, tt := range tests {
		tracer, recorder := newRecordingTracer()
		tracer.ObserveTransition(history.TransitionEvent{
			Location: loc("/x"),
			From:     route.Start,
			Outcome:  tt.outcome,
			Err:      tt.err,
		})
		spans := recorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("%s: ended spans = %d, want 1", tt.outcome, len(spans))
		}
		if got := spans[0].Status().Code; got != tt.want {
			t.Errorf("%s: Status().Code = %v, want %v", tt.outcome, got, tt.want)
		}
		if tt.err != nil && len(spans[0].Events()) == 0 {
			t.Errorf("%s: error was not recorded on the span", tt.outcome)
		}
	}
}

func TestTracerAttributeExtractor(t *testing.T) {
	tracer, recorder := newRecordingTracer(
		WithTracerName("custom"),
		WithAttributeExtractor(func(ev history.TransitionEvent) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)
	tracer.ObserveTransition(history.TransitionEvent{From: route.Start, Outcome: history.OutcomeCommitted})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if got := attrMap(spans[0].Attributes())["test.attr"]; got != "ok" {
		t.Errorf("test.attr = %q, want ok", got)
	}
	if got := spans[0].InstrumentationScope().Name; got != "custom" {
		t.Errorf("scope name = %q, want custom", got)
	}
}

func TestTracerWithHistory(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	h, _ := newObservedHash(t, tracer)
	h.Push(loc("/about"), nil, nil)
	h.Push(loc("/missing"), nil, nil)

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("ended spans = %d, want 3", len(spans))
	}
	last := attrMap(spans[2].Attributes())
	if last["nav.outcome"] != history.OutcomeNoMatch {
		t.Errorf("last outcome = %q, want no_match", last["nav.outcome"])
	}
	if spans[2].Status().Code != codes.Error {
		t.Errorf("no_match span status = %v, want Error", spans[2].Status().Code)
	}
}
