package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/puckline/internal/metrics"
	"github.com/yourusername/puckline/internal/models"
)

const (
	// DefaultNHLBaseURL is the public NHL web API
	DefaultNHLBaseURL = "https://api-web.nhle.com/v1"

	nhlSource          = "nhl_web"
	nhlRegularSeason   = 2
	nhlScheduleDateFmt = "2006-01-02"

	// clubScheduleTTL keeps a team's season schedule long enough for both splits to share one fetch
	clubScheduleTTL = 2 * time.Minute
)

// NHLClient implements Feed for the NHL web API
type NHLClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	league     string
	season     string
	logger     *logrus.Entry

	schedules *gocache.Cache
	inflight  singleflight.Group
}

type nhlTeam struct {
	ID         int               `json:"id"`
	Abbrev     string            `json:"abbrev"`
	PlaceName  map[string]string `json:"placeName"`
	CommonName map[string]string `json:"commonName"`
	Score      *int              `json:"score"`
}

func (t nhlTeam) name() string {
	place := t.PlaceName["default"]
	common := t.CommonName["default"]
	switch {
	case place != "" && common != "":
		return place + " " + common
	case common != "":
		return common
	case place != "":
		return place
	}
	return t.Abbrev
}

type nhlGame struct {
	ID           int64   `json:"id"`
	GameType     int     `json:"gameType"`
	GameDate     string  `json:"gameDate"`
	StartTimeUTC string  `json:"startTimeUTC"`
	GameState    string  `json:"gameState"`
	HomeTeam     nhlTeam `json:"homeTeam"`
	AwayTeam     nhlTeam `json:"awayTeam"`
}

type nhlClubSchedule struct {
	Games []nhlGame `json:"games"`
}

type nhlSchedule struct {
	GameWeek []struct {
		Date  string    `json:"date"`
		Games []nhlGame `json:"games"`
	} `json:"gameWeek"`
}

// NewNHLClient creates a new NHL web API client. An empty baseURL uses DefaultNHLBaseURL.
func NewNHLClient(httpClient *RateLimitedHTTPClient, league, baseURL, season string, logger *logrus.Logger) *NHLClient {
	if baseURL == "" {
		baseURL = DefaultNHLBaseURL
	}
	if league == "" {
		league = "NHL"
	}
	return &NHLClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		league:     league,
		season:     season,
		logger:     logger.WithFields(logrus.Fields{"component": "feed", "league": league}),
		schedules:  gocache.New(clubScheduleTTL, 2*clubScheduleTTL),
	}
}

// League returns the league code
func (c *NHLClient) League() string {
	return c.league
}

// TeamMatches retrieves finished regular-season games of a team for one split
func (c *NHLClient) TeamMatches(ctx context.Context, abbrev string, split models.Split) ([]models.GameResult, error) {
	games, err := c.clubGames(ctx, abbrev)
	if err != nil {
		return nil, err
	}

	results := make([]models.GameResult, 0, len(games))
	for _, game := range games {
		if split == models.SplitHome && game.HomeAbbrev != abbrev || split == models.SplitAway && game.AwayAbbrev != abbrev {
			continue
		}
		result, ok := game.ResultFor(abbrev)
		if !ok {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})

	c.logger.WithFields(logrus.Fields{
		"team":    abbrev,
		"split":   string(split),
		"matches": len(results),
	}).Debug("Fetched team matches")

	return results, nil
}

// clubGames returns a team's regular-season games. The payload covers both splits,
// so it is fetched once per team and reused for a short while.
func (c *NHLClient) clubGames(ctx context.Context, abbrev string) ([]models.Game, error) {
	if cached, ok := c.schedules.Get(abbrev); ok {
		return cached.([]models.Game), nil
	}

	v, err, _ := c.inflight.Do(abbrev, func() (interface{}, error) {
		url := fmt.Sprintf("%s/club-schedule-season/%s/%s", c.baseURL, abbrev, c.season)

		var schedule nhlClubSchedule
		if err := c.getJSON(ctx, url, &schedule); err != nil {
			return nil, err
		}

		games := make([]models.Game, 0, len(schedule.Games))
		for _, ng := range schedule.Games {
			if ng.GameType != nhlRegularSeason {
				continue
			}
			game, err := c.toGame(ng)
			if err != nil {
				c.logger.WithError(err).WithField("game_id", ng.ID).Warn("Skipping malformed game")
				continue
			}
			games = append(games, game)
		}

		c.schedules.SetDefault(abbrev, games)
		return games, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Game), nil
}

// Fixtures retrieves games starting within [from, to]. The schedule endpoint returns a week per call.
func (c *NHLClient) Fixtures(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	if to.Before(from) {
		return nil, nil
	}

	seen := make(map[string]bool)
	var games []models.Game

	day := from.UTC().Truncate(24 * time.Hour)
	for !day.After(to) {
		url := fmt.Sprintf("%s/schedule/%s", c.baseURL, day.Format(nhlScheduleDateFmt))

		var schedule nhlSchedule
		if err := c.getJSON(ctx, url, &schedule); err != nil {
			return nil, err
		}

		for _, gameDay := range schedule.GameWeek {
			for _, ng := range gameDay.Games {
				game, err := c.toGame(ng)
				if err != nil {
					c.logger.WithError(err).WithField("game_id", ng.ID).Warn("Skipping malformed game")
					continue
				}
				if seen[game.GameID] || game.Scheduled.Before(from) || game.Scheduled.After(to) {
					continue
				}
				seen[game.GameID] = true
				games = append(games, game)
			}
		}

		day = day.AddDate(0, 0, 7)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Scheduled.Before(games[j].Scheduled)
	})
	return games, nil
}

func (c *NHLClient) getJSON(ctx context.Context, url string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.RecordFeedRequest(c.league, "error", time.Since(start).Seconds())
		return NewFeedError(nhlSource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()
	metrics.RecordFeedRequest(c.league, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewFeedError(nhlSource, ErrCodeNotFound, "resource not found: "+url, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewFeedError(nhlSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewFeedError(nhlSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewFeedError(nhlSource, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// toGame converts an API game. Scores are kept only once the game is final.
func (c *NHLClient) toGame(ng nhlGame) (models.Game, error) {
	scheduled, err := parseNHLStart(ng)
	if err != nil {
		return models.Game{}, err
	}

	game := models.Game{
		League:     c.league,
		GameID:     strconv.FormatInt(ng.ID, 10),
		Scheduled:  scheduled,
		HomeTeam:   ng.HomeTeam.name(),
		HomeAbbrev: ng.HomeTeam.Abbrev,
		AwayTeam:   ng.AwayTeam.name(),
		AwayAbbrev: ng.AwayTeam.Abbrev,
		IsFinished: isFinalState(ng.GameState),
	}
	if game.IsFinished {
		game.HomeScore = ng.HomeTeam.Score
		game.AwayScore = ng.AwayTeam.Score
	}

	if err := game.Validate(); err != nil {
		return models.Game{}, err
	}
	return game, nil
}

func parseNHLStart(ng nhlGame) (time.Time, error) {
	if ng.StartTimeUTC != "" {
		t, err := time.Parse(time.RFC3339, ng.StartTimeUTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	t, err := time.Parse(nhlScheduleDateFmt, ng.GameDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("game %d has no usable start time: %w", ng.ID, err)
	}
	return t.UTC(), nil
}

func isFinalState(state string) bool {
	return state == "OFF" || state == "FINAL"
}
