// Package csvapi fetches rows from an HTTP endpoint that returns CSV.
package csvapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/areeshzakir/plutus-data-warehouse/internal/sources"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// DefaultTimeout bounds one fetch round trip.
const DefaultTimeout = 60 * time.Second

// Client fetches one CSV endpoint. It implements pipeline.Fetcher.
type Client struct {
	source   string
	endpoint string
	apiKey   string
	client   *http.Client
}

// New creates a Client for the given endpoint. apiKey, when non-empty,
// is injected as the api_key query parameter unless the endpoint URL
// already carries one.
func New(source, endpoint, apiKey string) *Client {
	return &Client{
		source:   source,
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// Fetch downloads and decodes the endpoint's current dataset. An empty
// response body is a valid zero-row result, not an error.
func (c *Client) Fetch(ctx context.Context) ([]record.Raw, error) {
	endpoint, err := c.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapFetch(c.source, c.endpoint, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WrapFetch(c.source, c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.FetchError{
			Source:     c.source,
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	raws, err := sources.DecodeCSV(resp.Body)
	if err != nil {
		return nil, errors.WrapFetch(c.source, c.endpoint, err)
	}
	return raws, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", errors.WrapFetch(c.source, c.endpoint, err)
	}
	q := u.Query()
	if c.apiKey != "" && !q.Has("api_key") {
		q.Set("api_key", c.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
