// Package observability sets up logging, tracing and metrics for the
// roam binaries. The terminal belongs to the TUI, so logs and spans go
// to files.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Instruments bundles the process-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// Reader collects the meter provider's metrics on demand.
	Reader *sdkmetric.ManualReader
}

// Options configures Init.
type Options struct {
	ServiceName string
	Level       slog.Level
	// LogFile receives JSON logs. Empty discards them; "-" writes to stderr.
	LogFile string
	// TraceFile receives spans as JSON. Empty disables tracing.
	TraceFile string
}

// DefaultLogFile returns ~/.roam/roam.log.
func DefaultLogFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".roam", "roam.log"), nil
}

// Init configures slog and OpenTelemetry. The returned shutdown flushes
// spans and closes the files it opened.
func Init(ctx context.Context, opts Options) (*Instruments, func(context.Context) error, error) {
	var closers []io.Closer

	logOut, err := openSink(opts.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("observability: log file: %w", err)
	}
	if c, ok := logOut.(io.Closer); ok && logOut != os.Stderr {
		closers = append(closers, c)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: opts.Level}))
	slog.SetDefault(logger)

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", opts.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("observability: resource: %w", err)
	}

	var tracerProvider trace.TracerProvider = nooptrace.NewTracerProvider()
	var sdkTracer *sdktrace.TracerProvider
	if opts.TraceFile != "" {
		traceOut, err := openSink(opts.TraceFile)
		if err != nil {
			return nil, nil, fmt.Errorf("observability: trace file: %w", err)
		}
		if c, ok := traceOut.(io.Closer); ok && traceOut != os.Stderr {
			closers = append(closers, c)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
		if err != nil {
			return nil, nil, fmt.Errorf("observability: span exporter: %w", err)
		}
		sdkTracer = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exporter),
		)
		tracerProvider = sdkTracer
		otel.SetTracerProvider(sdkTracer)
	}

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	instruments := &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Reader:         reader,
	}

	shutdown := func(ctx context.Context) error {
		var shutdownErr error
		shutdownErr = errors.Join(shutdownErr, meterProvider.Shutdown(ctx))
		if sdkTracer != nil {
			shutdownErr = errors.Join(shutdownErr, sdkTracer.Shutdown(ctx))
		}
		for _, c := range closers {
			shutdownErr = errors.Join(shutdownErr, c.Close())
		}
		return shutdownErr
	}

	return instruments, shutdown, nil
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "":
		return io.Discard, nil
	case "-":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
