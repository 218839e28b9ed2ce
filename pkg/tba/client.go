// Package tba provides a read-only client for The Blue Alliance API v3, the
// season data provider: it supplies the team and event rosters that the
// location pipeline resolves.
package tba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/flashrun24/frc-season-map/internal/model"
)

const defaultBaseURL = "https://www.thebluealliance.com/api/v3"

// Client fetches season rosters.
type Client interface {
	// Teams returns all teams competing in the given year, in roster order.
	Teams(ctx context.Context, year int) ([]*model.Team, error)

	// Events returns all events of the given year, in calendar order.
	Events(ctx context.Context, year int) ([]*model.Event, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	authKey string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client authenticated with a TBA read API key.
func NewClient(authKey string, opts ...Option) Client {
	c := &httpClient{
		authKey: authKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireTeam is the TBA team object, reduced to the fields we keep.
type wireTeam struct {
	Key        string `json:"key"`
	TeamNumber int    `json:"team_number"`
	Nickname   string `json:"nickname"`
	SchoolName string `json:"school_name"`
	City       string `json:"city"`
	StateProv  string `json:"state_prov"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Website    string `json:"website"`
}

// wireEvent is the TBA event object, reduced to the fields we keep. TBA
// sometimes ships event coordinates of its own; they are carried through and
// count as an upstream-provided location.
type wireEvent struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	EventCode string `json:"first_event_code"`
	EventType int    `json:"event_type"`
	District  *struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"district"`
	Week       *int     `json:"week"`
	Venue      string   `json:"location_name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	StateProv  string   `json:"state_prov"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

// TBA event types: 0-7 are season play run by FIRST, 99 is offseason,
// 100 is preseason, -1 is unlabeled.
func isOfficial(eventType int) bool {
	return eventType >= 0 && eventType < 99
}

// Teams pages through /teams/{year}/{page} until an empty page.
func (c *httpClient) Teams(ctx context.Context, year int) ([]*model.Team, error) {
	var teams []*model.Team
	for page := 0; ; page++ {
		var wire []wireTeam
		if err := c.get(ctx, fmt.Sprintf("/teams/%d/%d", year, page), &wire); err != nil {
			return nil, err
		}
		if len(wire) == 0 {
			break
		}
		for _, w := range wire {
			teams = append(teams, &model.Team{
				Key:        w.Key,
				TeamNumber: w.TeamNumber,
				Nickname:   w.Nickname,
				SchoolName: w.SchoolName,
				City:       w.City,
				StateProv:  w.StateProv,
				PostalCode: w.PostalCode,
				Country:    w.Country,
				Website:    w.Website,
			})
		}
	}
	zap.L().Info("fetched season teams", zap.Int("year", year), zap.Int("count", len(teams)))
	return teams, nil
}

// Events fetches /events/{year}.
func (c *httpClient) Events(ctx context.Context, year int) ([]*model.Event, error) {
	var wire []wireEvent
	if err := c.get(ctx, fmt.Sprintf("/events/%d", year), &wire); err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(wire))
	for _, w := range wire {
		e := &model.Event{
			Key:        w.Key,
			Name:       w.Name,
			EventCode:  w.EventCode,
			Week:       w.Week,
			Venue:      w.Venue,
			Address:    w.Address,
			City:       w.City,
			StateProv:  w.StateProv,
			PostalCode: w.PostalCode,
			Country:    w.Country,
			IsOfficial: isOfficial(w.EventType),
		}
		if w.District != nil {
			e.District = w.District.Abbreviation
		}
		if w.Lat != nil && w.Lng != nil {
			e.SetCoordinates(model.Coordinates{Lat: *w.Lat, Lng: *w.Lng})
		}
		events = append(events, e)
	}
	zap.L().Info("fetched season events", zap.Int("year", year), zap.Int("count", len(events)))
	return events, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "tba: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrapf(err, "tba: build request %s", path)
	}
	req.Header.Set("X-TBA-Auth-Key", c.authKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "tba: get %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("tba: %s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "tba: read %s", path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "tba: parse %s", path)
	}
	return nil
}
