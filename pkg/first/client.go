// Package first provides a client for the FIRST Events API. The season data
// provider carries only sparse venue data for some official events; this
// client backfills the missing address fields from the official record so
// they can be geocoded.
package first

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/flashrun24/frc-season-map/internal/model"
)

const defaultBaseURL = "https://frc-api.firstinspires.org/v3.0"

// Client enriches events with official venue data.
type Client interface {
	// EnhanceEvent fills the event's empty venue and address fields from the
	// official event record, in place. Fields that already hold a value are
	// left alone.
	EnhanceEvent(ctx context.Context, event *model.Event) error
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
	username string
	authKey  string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a client using HTTP basic auth with a FIRST API
// username and token.
func NewClient(username, authKey string, opts ...Option) Client {
	c := &httpClient{
		username: username,
		authKey:  authKey,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// eventsResponse is the FIRST Events API response envelope.
type eventsResponse struct {
	Events []struct {
		Code      string `json:"code"`
		Name      string `json:"name"`
		Venue     string `json:"venue"`
		Address   string `json:"address"`
		City      string `json:"city"`
		StateProv string `json:"stateprov"`
		Country   string `json:"country"`
	} `json:"Events"`
	EventCount int `json:"eventCount"`
}

// EnhanceEvent implements Client.
func (c *httpClient) EnhanceEvent(ctx context.Context, event *model.Event) error {
	if event.EventCode == "" {
		return eris.Errorf("first: event %s has no official event code", event.Key)
	}
	season, err := seasonFromKey(event.Key)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "first: rate limit")
	}

	reqURL := fmt.Sprintf("%s/%d/events?%s", c.baseURL, season,
		url.Values{"eventCode": {event.EventCode}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "first: build request for %s", event.Key)
	}
	req.SetBasicAuth(c.username, c.authKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "first: fetch event %s", event.Key)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("first: event %s returned status %d", event.Key, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "first: read event %s", event.Key)
	}

	var envelope eventsResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return eris.Wrapf(err, "first: parse event %s", event.Key)
	}
	if envelope.EventCount == 0 || len(envelope.Events) == 0 {
		return eris.Errorf("first: no official record for event %s (code %s)", event.Key, event.EventCode)
	}

	official := envelope.Events[0]
	fillIfEmpty(&event.Venue, official.Venue)
	fillIfEmpty(&event.Address, official.Address)
	fillIfEmpty(&event.City, official.City)
	fillIfEmpty(&event.StateProv, official.StateProv)
	fillIfEmpty(&event.Country, official.Country)

	zap.L().Debug("enhanced event from official record",
		zap.String("key", event.Key),
		zap.String("venue", event.Venue))
	return nil
}

func fillIfEmpty(dst *string, value string) {
	if strings.TrimSpace(*dst) == "" && value != "" {
		*dst = value
	}
}

// seasonFromKey extracts the 4-digit season prefix of an event key such as
// "2024casj".
func seasonFromKey(key string) (int, error) {
	if len(key) < 5 {
		return 0, eris.Errorf("first: malformed event key %q", key)
	}
	season, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, eris.Errorf("first: malformed event key %q", key)
	}
	return season, nil
}
