// Package companieshouse queries the Companies House public data API for
// registry enrichment of existing leads. The API allows 600 requests per five
// minutes, so all calls pass through a shared rate limiter.
package companieshouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ccs-group/leadgen-cli/internal/resilience"
)

const defaultBaseURL = "https://api.company-information.service.gov.uk"

// Client searches and fetches company records.
type Client interface {
	SearchCompanies(ctx context.Context, query string, limit int) (*SearchResult, error)
	GetCompany(ctx context.Context, companyNumber string) (*CompanyProfile, error)
}

// SearchResult is the response from GET /search/companies.
type SearchResult struct {
	TotalResults int          `json:"total_results"`
	Items        []SearchItem `json:"items"`
}

// SearchItem is a single company hit in a search result.
type SearchItem struct {
	Title          string `json:"title"`
	CompanyNumber  string `json:"company_number"`
	CompanyStatus  string `json:"company_status"`
	CompanyType    string `json:"company_type"`
	AddressSnippet string `json:"address_snippet"`
	Description    string `json:"description"`
}

// CompanyProfile is the response from GET /company/{number}.
type CompanyProfile struct {
	CompanyName   string            `json:"company_name"`
	CompanyNumber string            `json:"company_number"`
	CompanyStatus string            `json:"company_status"`
	Type          string            `json:"type"`
	DateOfCreated string            `json:"date_of_creation"`
	SICCodes      []string          `json:"sic_codes"`
	Address       RegisteredAddress `json:"registered_office_address"`
}

// RegisteredAddress is the registered office address of a company.
type RegisteredAddress struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
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

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Companies House API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("companies_house", "get")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("items_per_page", strconv.Itoa(limit))

	var result SearchResult
	if err := c.getJSON(ctx, "/search/companies?"+q.Encode(), &result); err != nil {
		return nil, eris.Wrapf(err, "companieshouse: search %q", query)
	}
	return &result, nil
}

func (c *httpClient) GetCompany(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	if companyNumber == "" {
		return nil, eris.New("companieshouse: company number is required")
	}

	var profile CompanyProfile
	if err := c.getJSON(ctx, "/company/"+url.PathEscape(companyNumber), &profile); err != nil {
		return nil, eris.Wrapf(err, "companieshouse: get company %s", companyNumber)
	}
	return &profile, nil
}

// getJSON performs a rate-limited, retried GET and decodes the JSON body.
func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	return resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		// Companies House uses HTTP basic auth with the key as username.
		req.SetBasicAuth(c.apiKey, "")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "read response")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				fmt.Errorf("status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return eris.Wrap(json.Unmarshal(body, out), "unmarshal response")
	})
}
