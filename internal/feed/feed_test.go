package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/puckline/internal/config"
	"github.com/yourusername/puckline/internal/models"
)

const clubScheduleJSON = `{
  "games": [
    {"id": 2024020010, "gameType": 2, "gameDate": "2024-10-10", "startTimeUTC": "2024-10-10T23:00:00Z", "gameState": "OFF",
     "homeTeam": {"abbrev": "BOS", "placeName": {"default": "Boston"}, "commonName": {"default": "Bruins"}, "score": 3},
     "awayTeam": {"abbrev": "TOR", "placeName": {"default": "Toronto"}, "commonName": {"default": "Maple Leafs"}, "score": 2}},
    {"id": 2024020020, "gameType": 2, "gameDate": "2024-10-14", "startTimeUTC": "2024-10-14T23:00:00Z", "gameState": "FINAL",
     "homeTeam": {"abbrev": "MTL", "score": 1},
     "awayTeam": {"abbrev": "BOS", "score": 4}},
    {"id": 2024020030, "gameType": 2, "gameDate": "2024-10-18", "startTimeUTC": "2024-10-18T23:00:00Z", "gameState": "OFF",
     "homeTeam": {"abbrev": "BOS", "score": 5},
     "awayTeam": {"abbrev": "NYR", "score": 0}},
    {"id": 2024010001, "gameType": 1, "gameDate": "2024-09-25", "startTimeUTC": "2024-09-25T23:00:00Z", "gameState": "OFF",
     "homeTeam": {"abbrev": "BOS", "score": 7},
     "awayTeam": {"abbrev": "PHI", "score": 1}},
    {"id": 2024020040, "gameType": 2, "gameDate": "2024-12-01", "startTimeUTC": "2024-12-01T23:00:00Z", "gameState": "FUT",
     "homeTeam": {"abbrev": "BOS"},
     "awayTeam": {"abbrev": "OTT"}}
  ]
}`

const scheduleJSON = `{
  "gameWeek": [
    {"date": "2024-11-20", "games": [
      {"id": 2024020300, "gameType": 2, "gameDate": "2024-11-20", "startTimeUTC": "2024-11-20T00:00:00Z", "gameState": "OFF",
       "homeTeam": {"abbrev": "EDM", "placeName": {"default": "Edmonton"}, "commonName": {"default": "Oilers"}, "score": 4},
       "awayTeam": {"abbrev": "CGY", "placeName": {"default": "Calgary"}, "commonName": {"default": "Flames"}, "score": 3}}
    ]},
    {"date": "2024-11-21", "games": [
      {"id": 2024020310, "gameType": 2, "gameDate": "2024-11-21", "startTimeUTC": "2024-11-21T01:00:00Z", "gameState": "FUT",
       "homeTeam": {"abbrev": "VAN"},
       "awayTeam": {"abbrev": "SEA"}},
      {"id": 2024020320, "gameType": 2, "gameDate": "2024-11-23", "startTimeUTC": "2024-11-23T01:00:00Z", "gameState": "FUT",
       "homeTeam": {"abbrev": "LAK"},
       "awayTeam": {"abbrev": "ANA"}}
    ]}
  ]
}`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testHTTPConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 1
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.RateLimit = 1000
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *NHLClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := NewRateLimitedHTTPClient(testHTTPConfig(), quietLogger())
	return NewNHLClient(httpClient, "NHL", srv.URL, "20242025", quietLogger())
}

func TestNHLClientTeamMatchesHomeSplit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/club-schedule-season/BOS/20242025", r.URL.Path)
		_, _ = w.Write([]byte(clubScheduleJSON))
	})

	matches, err := client.TeamMatches(context.Background(), "BOS", models.SplitHome)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	// newest first, preseason and unfinished games excluded
	assert.Equal(t, "2024020030", matches[0].GameID)
	assert.Equal(t, "NYR", matches[0].OpponentAbbrev)
	assert.Equal(t, 5, matches[0].TeamScore)
	assert.Equal(t, "2024020010", matches[1].GameID)
	assert.Equal(t, "Toronto Maple Leafs", matches[1].Opponent)
	assert.True(t, matches[1].IsHome)
	assert.Equal(t, 5, matches[1].TotalGoals())
}

func TestNHLClientTeamMatchesAwaySplit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(clubScheduleJSON))
	})

	matches, err := client.TeamMatches(context.Background(), "BOS", models.SplitAway)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.False(t, matches[0].IsHome)
	assert.Equal(t, 4, matches[0].TeamScore)
	assert.Equal(t, 1, matches[0].OpponentScore)
	assert.Equal(t, "MTL", matches[0].OpponentAbbrev)
}

func TestNHLClientTeamMatchesFetchesScheduleOncePerTeam(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(clubScheduleJSON))
	})

	home, err := client.TeamMatches(context.Background(), "BOS", models.SplitHome)
	require.NoError(t, err)
	away, err := client.TeamMatches(context.Background(), "BOS", models.SplitAway)
	require.NoError(t, err)

	assert.Len(t, home, 2)
	assert.Len(t, away, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = client.TeamMatches(context.Background(), "TOR", models.SplitAway)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNHLClientFixtures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/2024-11-20", r.URL.Path)
		_, _ = w.Write([]byte(scheduleJSON))
	})

	from := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	games, err := client.Fixtures(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, games, 2)
	assert.Equal(t, "2024020300", games[0].GameID)
	assert.True(t, games[0].HasFinalScore())
	assert.Equal(t, "4-3", games[0].FinalScore())
	assert.Equal(t, "Edmonton Oilers", games[0].HomeTeam)
	assert.Equal(t, "NHL", games[0].League)

	assert.Equal(t, "VAN", games[1].HomeAbbrev)
	assert.False(t, games[1].IsFinished)
	assert.Nil(t, games[1].HomeScore)
}

func TestNHLClientFixturesDeduplicatesAcrossWeeks(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(scheduleJSON))
	})

	from := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)
	games, err := client.Fixtures(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, games, 3)
}

func TestNHLClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{name: "not found", status: http.StatusNotFound, body: "{}", code: ErrCodeNotFound},
		{name: "server error", status: http.StatusServiceUnavailable, body: "down", code: ErrCodeServerError},
		{name: "bad payload", status: http.StatusOK, body: "{not json", code: ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.TeamMatches(context.Background(), "BOS", models.SplitHome)
			require.Error(t, err)

			var feedErr FeedError
			require.True(t, errors.As(err, &feedErr))
			assert.Equal(t, tt.code, feedErr.Code)
			assert.Equal(t, "nhl_web", feedErr.Source)
		})
	}
}

func TestRateLimitedHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), quietLogger())
	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRateLimitedHTTPClientCircuitBreaker(t *testing.T) {
	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, quietLogger())

	// nothing listens on this port
	url := "http://127.0.0.1:1/unreachable"
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), url)
		require.Error(t, err)
	}

	_, err := client.Get(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	client.Reset()
	_, err = client.Get(context.Background(), url)
	assert.NotContains(t, err.Error(), "circuit breaker open")
}

// flakyTransport fails at the dial level while down is set
type flakyTransport struct {
	down  atomic.Bool
	calls int32
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.down.Load() {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f.next.RoundTrip(req)
}

func TestRateLimitedHTTPClientBreakerRecovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	cfg.BreakerCooldown = time.Minute
	client := NewRateLimitedHTTPClient(cfg, quietLogger())

	transport := &flakyTransport{next: http.DefaultTransport}
	transport.down.Store(true)
	client.client.HTTPClient.Transport = transport

	clock := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}

	// open: rejected without touching upstream
	_, err := client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&transport.calls))

	// trial after cooldown while upstream is still down reopens the breaker
	clock = clock.Add(time.Minute)
	_, err = client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&transport.calls))

	_, err = client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	// upstream recovers; the next trial closes the breaker for good
	transport.down.Store(false)
	clock = clock.Add(time.Minute)
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, int32(6), atomic.LoadInt32(&transport.calls))
}

func TestFactoryNewRegistry(t *testing.T) {
	local := &stubFeed{league: "AHL"}
	factory := NewFactory(testHTTPConfig(), quietLogger()).
		WithLocal(func(league string) Feed { return local })

	reg, err := factory.NewRegistry([]config.LeagueConfig{
		{Name: "NHL", Source: NHLWebSource, Season: "20242025", Enabled: true},
		{Name: "AHL", Source: PostgresSource, Enabled: true},
		{Name: "KHL", Source: NHLWebSource, Season: "20242025", Enabled: false},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	fd, err := reg.Get("NHL")
	require.NoError(t, err)
	assert.IsType(t, &NHLClient{}, fd)

	fd, err = reg.Get("AHL")
	require.NoError(t, err)
	assert.Same(t, local, fd)

	_, err = reg.Get("KHL")
	assert.ErrorIs(t, err, ErrUnknownLeague)

	feeds := reg.Feeds()
	require.Len(t, feeds, 2)
	assert.Equal(t, "AHL", feeds[0].League())
}

func TestFactoryUseLocalServesSyncedLeague(t *testing.T) {
	locals := map[string]Feed{}
	factory := NewFactory(testHTTPConfig(), quietLogger()).
		WithLocal(func(league string) Feed {
			fd := &stubFeed{league: league}
			locals[league] = fd
			return fd
		})

	leagues := []config.LeagueConfig{
		{Name: "NHL", Source: NHLWebSource, Season: "20242025", Enabled: true, UseLocal: true},
		{Name: "AHL", Source: PostgresSource, Enabled: true},
	}

	serving, err := factory.NewRegistry(leagues)
	require.NoError(t, err)
	fd, err := serving.Get("NHL")
	require.NoError(t, err)
	assert.Same(t, locals["NHL"], fd)

	syncing, err := factory.NewSyncRegistry(leagues)
	require.NoError(t, err)
	require.Equal(t, 1, syncing.Len())
	remote, err := syncing.Get("NHL")
	require.NoError(t, err)
	assert.IsType(t, &NHLClient{}, remote)

	// one upstream client per league across both registries
	again, err := factory.NewSyncRegistry(leagues)
	require.NoError(t, err)
	sameRemote, err := again.Get("NHL")
	require.NoError(t, err)
	assert.Same(t, remote, sameRemote)

	_, err = syncing.Get("AHL")
	assert.ErrorIs(t, err, ErrUnknownLeague)
}

func TestFactoryUseLocalRequiresDatabase(t *testing.T) {
	factory := NewFactory(testHTTPConfig(), quietLogger())
	_, err := factory.NewFeed(config.LeagueConfig{Name: "NHL", Source: NHLWebSource, Season: "20242025", UseLocal: true})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestFactoryRejectsUnknownSource(t *testing.T) {
	factory := NewFactory(testHTTPConfig(), quietLogger())

	_, err := factory.NewFeed(config.LeagueConfig{Name: "AHL", Source: PostgresSource})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = factory.NewFeed(config.LeagueConfig{Name: "X", Source: "rss"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = factory.NewRegistry(nil)
	assert.Error(t, err)
}

type stubFeed struct {
	league string
}

func (s *stubFeed) League() string { return s.league }

func (s *stubFeed) TeamMatches(context.Context, string, models.Split) ([]models.GameResult, error) {
	return nil, nil
}

func (s *stubFeed) Fixtures(context.Context, time.Time, time.Time) ([]models.Game, error) {
	return nil, nil
}
