package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueOf(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPredictionStored(t *testing.T) {
	InitRegistry()
	before := valueOf(t, PredictionsStoredTotal.WithLabelValues("NHL", "home-it-over"))

	RecordPredictionStored("NHL", "home-it-over")
	RecordPredictionStored("NHL", "home-it-over")

	after := valueOf(t, PredictionsStoredTotal.WithLabelValues("NHL", "home-it-over"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordCacheLookup(t *testing.T) {
	InitRegistry()
	hits := valueOf(t, StatsCacheLookupsTotal.WithLabelValues("hit"))
	misses := valueOf(t, StatsCacheLookupsTotal.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, 1.0, valueOf(t, StatsCacheLookupsTotal.WithLabelValues("hit"))-hits)
	assert.Equal(t, 2.0, valueOf(t, StatsCacheLookupsTotal.WithLabelValues("miss"))-misses)
}

func TestRecordSweep(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		status   string
		eligible int
	}{
		{name: "successful sweep", status: "success", eligible: 12},
		{name: "empty sweep", status: "success", eligible: 0},
		{name: "failed sweep", status: "failure", eligible: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSweep(tt.status, 0.25, tt.eligible)
			})
			assert.Equal(t, float64(tt.eligible), valueOf(t, PendingPredictions))
		})
	}
}

func TestRecordSweepOutcome(t *testing.T) {
	InitRegistry()
	before := valueOf(t, SweepOutcomesTotal.WithLabelValues("won"))

	RecordSweepOutcome("won")

	assert.Equal(t, 1.0, valueOf(t, SweepOutcomesTotal.WithLabelValues("won"))-before)
}

func TestUpdateCacheEntries(t *testing.T) {
	InitRegistry()
	UpdateCacheEntries(7)
	assert.Equal(t, 7.0, valueOf(t, StatsCacheEntries))
}

func TestHandlerServesNamespace(t *testing.T) {
	InitRegistry()
	RecordPredictionDuplicate()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "puckline_predictions_duplicate_total")
}
