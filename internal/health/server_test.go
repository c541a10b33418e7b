package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/puckline/internal/models"
	"github.com/yourusername/puckline/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeHistory struct {
	lastDay time.Time
	err     error
}

func (f *fakeHistory) Day(_ context.Context, day time.Time) (*service.History, error) {
	f.lastDay = day
	if f.err != nil {
		return nil, f.err
	}
	return &service.History{
		Date:    "2024-11-19",
		Summary: models.HistorySummary{Total: 2, Won: 1, Lost: 1, WinRate: 50},
	}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "puckline", Version: "dev", Logger: quietLogger()})

	rec := serve(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "dev", body.Version)

	assert.Equal(t, http.StatusOK, serve(t, s, "/live").Code)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		ready  bool
		dbErr  error
		status int
	}{
		{"ready with healthy db", true, nil, http.StatusOK},
		{"not marked ready", false, nil, http.StatusServiceUnavailable},
		{"db down", true, errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "puckline", Logger: quietLogger(), DB: fakePinger{err: tt.dbErr}})
			s.SetReady(tt.ready)

			rec := serve(t, s, "/ready")
			assert.Equal(t, tt.status, rec.Code)

			var body ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Checks, "database")
		})
	}
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("puckline_sweeps_total 1\n"))
	})
	s := NewServer(Config{Logger: quietLogger(), MetricsPath: "/metrics", MetricsHandler: metrics})

	rec := serve(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "puckline_sweeps_total")
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &fakeHistory{}
	s := NewServer(Config{Logger: quietLogger(), History: hist})

	rec := serve(t, s, "/api/v1/history")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hist.lastDay.IsZero())

	var body service.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.Won)

	rec = serve(t, s, "/api/v1/history/2024-11-01")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), hist.lastDay)

	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/api/v1/history/yesterday").Code)

	hist.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, serve(t, s, "/api/v1/history").Code)
}

func TestHistoryNotMountedWithoutProvider(t *testing.T) {
	s := NewServer(Config{Logger: quietLogger()})
	assert.Equal(t, http.StatusNotFound, serve(t, s, "/api/v1/history").Code)
}
