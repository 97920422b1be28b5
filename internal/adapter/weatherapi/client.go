// Package weatherapi implements the HTTP client for the data.gov.sg
// real-time weather API (v2).
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/couchcryptid/weather-gateway/internal/domain"
	"github.com/couchcryptid/weather-gateway/internal/normalize"
)

// endpointPaths maps each document schema to its upstream path segment.
var endpointPaths = map[normalize.Schema]string{
	normalize.TwoHourForecast:        "two-hr-forecast",
	normalize.TwentyFourHourForecast: "twenty-four-hr-forecast",
	normalize.FourDayForecast:        "four-day-outlook",
	normalize.AirTemperature:         "air-temperature",
	normalize.WindDirection:          "wind-direction",
	normalize.Lightning:              "weather",
	normalize.WBGT:                   "weather",
}

// apiParams holds the extra `api` query parameter required by the shared
// /weather endpoint, keyed by schema.
var apiParams = map[normalize.Schema]string{
	normalize.Lightning: "lightning",
	normalize.WBGT:      "wbgt",
}

// Query carries the optional caller-supplied query parameters that are
// forwarded to the upstream API unchanged.
type Query struct {
	Date            string
	PaginationToken string
}

// Client fetches raw weather documents from the upstream API. Responses are
// returned as parsed JSON objects so the normalizer can inspect and repair
// them before typed decoding.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a Client with retry and timeout behaviour configured.
// Retries use exponential backoff and apply only to transport-level
// failures. Upstream statuses, including 5xx, are never retried: the caller
// needs the real status and body to relay the error envelope.
func NewClient(baseURL string, timeout time.Duration, retryMax int, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = retryMax
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}

	httpClient := rc.StandardClient()
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Fetch retrieves the raw upstream document for the given schema. A non-2xx
// response is mapped to *domain.UpstreamError when the body carries the
// structured error envelope, and *domain.OpaqueUpstreamError otherwise.
// Network-level failures are wrapped in *domain.TransportError.
func (c *Client) Fetch(ctx context.Context, schema normalize.Schema, q Query) (map[string]any, error) {
	path, ok := endpointPaths[schema]
	if !ok {
		return nil, fmt.Errorf("no upstream endpoint for schema %q", schema)
	}

	params := url.Values{}
	if api, ok := apiParams[schema]; ok {
		params.Set("api", api)
	}
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	if q.PaginationToken != "" {
		params.Set("paginationToken", q.PaginationToken)
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, path)
	if enc := params.Encode(); enc != "" {
		reqURL += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFromResponse(resp.StatusCode, body)
	}

	doc, err := normalize.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream response: %w", err)
	}
	return doc, nil
}

// wireError mirrors the upstream error envelope with its wire-format field
// names. Pointer fields distinguish absent keys from zero values.
type wireError struct {
	Code     *int           `json:"code"`
	Name     *string        `json:"name"`
	Data     map[string]any `json:"data"`
	ErrorMsg *string        `json:"errorMsg"`
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil &&
		we.Code != nil && we.Name != nil && we.ErrorMsg != nil {
		return &domain.UpstreamError{
			Status:   status,
			Code:     *we.Code,
			Name:     *we.Name,
			ErrorMsg: *we.ErrorMsg,
		}
	}

	c.logger.Warn("upstream error body did not match envelope",
		"status", status,
		"body_bytes", len(body),
	)
	return &domain.OpaqueUpstreamError{Status: status, Body: string(body)}
}
