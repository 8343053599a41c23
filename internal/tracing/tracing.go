// SPDX-License-Identifier: EPL-2.0

// Package tracing sets up OpenTelemetry for the control side of audsim.
// Nothing in the device callback is traced.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/ik5/audsim"

// Exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

type Config struct {
	ServiceName string
	Exporter    string
	// Writer receives stdout exporter output; os.Stdout when nil.
	Writer      io.Writer
}

// Init installs a global tracer provider for cfg.Exporter and returns its
// shutdown function. With no exporter the global no-op provider stays in
// place and shutdown does nothing.
func Init(cfg Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Exporter {
	case "", ExporterNone:
		return noop, nil
	case ExporterStdout:
	default:
		return noop, fmt.Errorf("unsupported trace exporter %q", cfg.Exporter)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noop, fmt.Errorf("creating stdout exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "audsim"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the audsim tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span on the audsim tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks span as failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
