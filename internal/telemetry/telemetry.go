// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/bighogz/tradie/internal/config"
)

// Shutdown flushes and stops the provider installed by Setup.
type Shutdown func(context.Context) error

// Setup installs a batching stdout exporter when tracing is enabled. When it
// is disabled the global no-op provider is left in place.
func Setup(cfg config.TelemetryConfig) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w, closeW, err := writer(cfg.Output)
	if err != nil {
		return nil, err
	}
	return SetupWithWriter(w, closeW)
}

// SetupWithWriter installs a provider exporting pretty-printed spans to w.
// closeW, when non-nil, runs after the provider shuts down.
func SetupWithWriter(w io.Writer, closeW func() error) (Shutdown, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeW != nil {
			if cerr := closeW(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

func writer(output string) (io.Writer, func() error, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: open %s: %w", output, err)
	}
	return f, f.Close, nil
}
