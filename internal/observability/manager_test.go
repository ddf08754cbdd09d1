package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

func TestBuild_Disabled(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{ServiceName: "timeclock"}, nil)
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestBuild_PrometheusExposesCounters(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{
		ServiceName:     "timeclock",
		EnableMetrics:   true,
		MetricsExporter: "prometheus",
		PrometheusPath:  "/metrics",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	require.True(t, mgr.MetricsEnabled())
	counter, err := mgr.MeterProvider().Meter("test").Int64Counter("clock_ins")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	rec := httptest.NewRecorder()
	mgr.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clock_ins_total")
}

func TestBuild_UnknownExporterDisablesMetrics(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{EnableMetrics: true, MetricsExporter: "statsd"}, nil)
	require.NoError(t, err)
	assert.False(t, mgr.MetricsEnabled())
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 0, want: "AlwaysOnSampler"},
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 0.25, want: "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.Contains(t, sampler(tt.ratio).Description(), tt.want)
	}
}

func TestBuild_StdoutTracing(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{
		ServiceName:      "timeclock",
		EnableTracing:    true,
		TraceExporter:    "stdout",
		TraceSampleRatio: 0.5,
	}, nil)
	require.NoError(t, err)
	assert.True(t, mgr.TracingEnabled())
	assert.NoError(t, mgr.Shutdown(context.Background()))
}
