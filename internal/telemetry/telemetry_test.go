package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/bighogz/tradie/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(config.TelemetryConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithWriterExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := SetupWithWriter(&buf, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "scraper.Fetch")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "scraper.Fetch")
}
