// Package postcodes resolves UK postcodes to coordinates via postcodes.io.
// Campaign search centers and per-lead distances both go through this lookup.
package postcodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ccs-group/leadgen-cli/internal/resilience"
)

const defaultBaseURL = "https://api.postcodes.io"

// Client looks up UK postcodes.
type Client interface {
	Lookup(ctx context.Context, postcode string) (*Postcode, error)
}

// Postcode is the geocoded record for a single postcode.
type Postcode struct {
	Postcode    string  `json:"postcode"`
	Outcode     string  `json:"outcode"`
	Incode      string  `json:"incode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Region      string  `json:"region"`
	AdminWard   string  `json:"admin_ward"`
	AdminCounty string  `json:"admin_county"`
}

type lookupResponse struct {
	Status int       `json:"status"`
	Result *Postcode `json:"result"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a postcodes.io client. The service is unauthenticated.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("postcodes_io", "lookup")
	for _, o := range opts {
		o(c)
	}
	return c
}

// ErrNotFound is returned when the postcode does not exist.
var ErrNotFound = eris.New("postcodes: postcode not found")

func (c *httpClient) Lookup(ctx context.Context, postcode string) (*Postcode, error) {
	if postcode == "" {
		return nil, eris.New("postcodes: postcode is required")
	}

	var out lookupResponse
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/postcodes/"+url.PathEscape(postcode), nil)
		if err != nil {
			return eris.Wrap(err, "create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "read response")
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			return resilience.NewTransientError(
				fmt.Errorf("status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return eris.Wrap(json.Unmarshal(body, &out), "unmarshal response")
	})
	if err != nil {
		if eris.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, eris.Wrapf(err, "postcodes: lookup %q", postcode)
	}
	if out.Result == nil {
		return nil, eris.Errorf("postcodes: empty result for %q", postcode)
	}
	return out.Result, nil
}
