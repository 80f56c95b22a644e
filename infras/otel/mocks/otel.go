// Package mocks provides an Otel that keeps spans in memory.
package mocks

import (
	"elc/infras/otel"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Recorder is an otel.Otel whose finished spans can be inspected.
type Recorder struct {
	otel.Otel

	exporter *tracetest.InMemoryExporter
}

func NewOtel() otel.Otel {
	return NewRecorder()
}

func NewRecorder() *Recorder {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))

	return &Recorder{
		Otel:     otel.NewWithProvider(provider),
		exporter: exporter,
	}
}

// Spans returns every span ended so far.
func (r *Recorder) Spans() tracetest.SpanStubs {
	return r.exporter.GetSpans()
}
