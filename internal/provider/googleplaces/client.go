// Package googleplaces implements the provider contract against the Google
// Places web service (nearby search, text search, place details).
package googleplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"playfinder/internal/provider"
)

// Keyword narrows every search to playgrounds; the vendor has no dedicated
// place type for them, so nearby searches combine type=park with the keyword.
const Keyword = "playground"

// Config carries the vendor endpoint and credentials.
type Config struct {
	// BaseURL is the API root, e.g. https://maps.googleapis.com/maps/api/place.
	BaseURL string
	APIKey  string
	// DefaultRadiusMeters applies when a region query leaves the radius unset.
	DefaultRadiusMeters int
	Timeout             time.Duration
}

// Client is a single-attempt HTTP client for the Places API. It never retries;
// the orchestrator owns any re-query policy.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ provider.Client = (*Client)(nil)

// New builds a Places client. A zero timeout defaults to ten seconds.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// searchResponse is the vendor's list envelope. Only the fields the pipeline
// reads are declared; the rest of the vendor schema is ignored on decode.
type searchResponse struct {
	Results      []provider.Record `json:"results"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
}

type detailsResponse struct {
	Result       *provider.Record `json:"result"`
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message"`
}

// Search performs one provider call for the query variant.
func (c *Client) Search(ctx context.Context, q provider.Query) ([]provider.Record, error) {
	var endpoint string
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)

	switch q.Mode {
	case provider.ModeText:
		endpoint = c.cfg.BaseURL + "/textsearch/json"
		params.Set("query", Keyword+" in "+q.Text)
	case provider.ModeRegion:
		endpoint = c.cfg.BaseURL + "/nearbysearch/json"
		radius := q.RadiusMeters
		if radius <= 0 {
			radius = c.cfg.DefaultRadiusMeters
		}
		params.Set("location", fmt.Sprintf("%g,%g", q.Coords.Lat, q.Coords.Lng))
		params.Set("radius", strconv.Itoa(radius))
		params.Set("type", "park")
		params.Set("keyword", Keyword)
	default:
		return nil, provider.NewError(provider.ErrorInternal, "unknown query mode", nil)
	}

	var body searchResponse
	if err := c.get(ctx, endpoint, params, &body); err != nil {
		return nil, err
	}

	switch body.Status {
	case "OK":
		return body.Results, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, provider.NewError(provider.ErrorOutage,
			"place search failed", fmt.Errorf("provider status %s", body.Status))
	}
}

// Details fetches a single record by place id.
func (c *Client) Details(ctx context.Context, externalID string) (*provider.Record, error) {
	params := url.Values{}
	params.Set("place_id", externalID)
	params.Set("key", c.cfg.APIKey)

	var body detailsResponse
	if err := c.get(ctx, c.cfg.BaseURL+"/details/json", params, &body); err != nil {
		return nil, err
	}

	switch body.Status {
	case "OK":
		if body.Result == nil {
			return nil, provider.NewError(provider.ErrorNotFound, "place not found", nil)
		}
		return body.Result, nil
	case "NOT_FOUND", "ZERO_RESULTS", "INVALID_REQUEST":
		return nil, provider.NewError(provider.ErrorNotFound, "place not found", nil)
	default:
		return nil, provider.NewError(provider.ErrorOutage,
			"place details failed", fmt.Errorf("provider status %s", body.Status))
	}
}

// get issues one request and decodes the JSON body into out. Response bodies
// of failed requests are discarded, never surfaced.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return provider.NewError(provider.ErrorInternal, "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return provider.NewError(provider.ErrorTimeout, "provider call timed out", err)
		}
		return provider.NewError(provider.ErrorOutage, "provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.NewError(provider.ErrorOutage, "provider request failed",
			fmt.Errorf("unexpected status: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.NewError(provider.ErrorBadData, "decode provider response", err)
	}
	return nil
}
