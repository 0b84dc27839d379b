package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNetwork marks failures to reach OMDb at all, as opposed to a bad or
// unexpected response.
var ErrNetwork = errors.New("omdb: network error")

// Metadata is the subset of an OMDb title record the application consumes.
// Empty fields were absent upstream or reported as "N/A".
type Metadata struct {
	Title    string
	Director string
	Year     string
	Rating   string
	Poster   string
	Found    bool
}

// Client looks movies up by title.
type Client interface {
	Lookup(ctx context.Context, title string) (*Metadata, error)
}

// HTTPClient implements Client against the OMDb HTTP API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient constructs a new OMDb client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse omdb url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Lookup searches OMDb by exact title. A title OMDb does not know yields
// Metadata with Found=false and no error.
func (c *HTTPClient) Lookup(ctx context.Context, title string) (*Metadata, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, scrubKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("omdb: unexpected status", "status", resp.StatusCode, "title", title)
		return nil, fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	meta := convertToMetadata(payload)
	if !meta.Found {
		c.logger.Debug("omdb: title not found", "title", title, "reason", payload.Error)
	}
	return meta, nil
}

// DisabledClient is used when no API key is configured. It never performs
// network I/O and reports every title as not found.
type DisabledClient struct{}

// Lookup implements Client.
func (DisabledClient) Lookup(ctx context.Context, title string) (*Metadata, error) {
	return &Metadata{Title: title}, nil
}

type apiResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
}

func convertToMetadata(payload apiResponse) *Metadata {
	if strings.EqualFold(payload.Response, "False") {
		return &Metadata{}
	}
	return &Metadata{
		Title:    clean(payload.Title),
		Director: clean(payload.Director),
		Year:     clean(payload.Year),
		Rating:   clean(payload.ImdbRating),
		Poster:   clean(payload.Poster),
		Found:    true,
	}
}

func clean(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

// scrubKey strips the API key from transport errors, which embed the full
// request URL.
func scrubKey(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), apiKey, "REDACTED"))
}
