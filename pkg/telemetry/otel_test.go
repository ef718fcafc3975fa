package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ManoGuzman/inventory-system/pkg/config"
	"github.com/ManoGuzman/inventory-system/pkg/telemetry"
)

func TestSetupTracing_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := telemetry.SetupTracing(context.Background(), config.TelemetryConfig{ServiceName: "test"}, "dev")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}
