package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h7lu/modkg/services/kgraph/telemetry"
)

func TestSetup_ReturnsWorkingMetricsHandlerAndShutdown(t *testing.T) {
	handler, shutdown, err := telemetry.Setup(telemetry.Options{ServiceName: "kgraph-test"})
	require.NoError(t, err)
	require.NotNil(t, handler)
	require.NotNil(t, shutdown)
	defer func() { assert.NoError(t, shutdown(context.Background())) }()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetup_NilTraceWriterDefaultsToDiscard(t *testing.T) {
	_, shutdown, err := telemetry.Setup(telemetry.Options{ServiceName: "kgraph-test-discard"})
	require.NoError(t, err)
	defer func() { assert.NoError(t, shutdown(context.Background())) }()
}
