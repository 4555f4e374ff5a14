package companieshouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCompanies(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
		wantTotal  int
		wantItems  int
	}{
		{
			name:       "success",
			statusCode: http.StatusOK,
			body: `{
				"total_results": 2,
				"items": [
					{"title": "ACME WIDGETS LTD", "company_number": "01234567", "company_status": "active"},
					{"title": "ACME HOLDINGS LTD", "company_number": "07654321", "company_status": "dissolved"}
				]
			}`,
			wantTotal: 2,
			wantItems: 2,
		},
		{
			name:       "no_results",
			statusCode: http.StatusOK,
			body:       `{"total_results": 0, "items": []}`,
			wantTotal:  0,
			wantItems:  0,
		},
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			body:       `{"error": "Invalid Authorization"}`,
			wantErr:    true,
		},
		{
			name:       "malformed_body",
			statusCode: http.StatusOK,
			body:       `{"total_results": not json`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/companies", r.URL.Path)
				assert.Equal(t, "acme", r.URL.Query().Get("q"))

				user, _, ok := r.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "test-key", user)

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))

			result, err := client.SearchCompanies(context.Background(), "acme", 20)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.TotalResults)
			assert.Len(t, result.Items, tt.wantItems)
		})
	}
}

func TestGetCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/01234567", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"company_name": "ACME WIDGETS LTD",
			"company_number": "01234567",
			"company_status": "active",
			"type": "ltd",
			"date_of_creation": "2015-03-02",
			"sic_codes": ["62020"],
			"registered_office_address": {
				"address_line_1": "1 High Street",
				"locality": "Norwich",
				"postal_code": "NR1 1AA"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	profile, err := client.GetCompany(context.Background(), "01234567")
	require.NoError(t, err)
	assert.Equal(t, "ACME WIDGETS LTD", profile.CompanyName)
	assert.Equal(t, "active", profile.CompanyStatus)
	assert.Equal(t, []string{"62020"}, profile.SICCodes)
	assert.Equal(t, "NR1 1AA", profile.Address.PostalCode)
}

func TestGetCompany_EmptyNumber(t *testing.T) {
	client := NewClient("test-key")
	_, err := client.GetCompany(context.Background(), "")
	require.Error(t, err)
}

func TestSearchCompanies_RetriesTransient(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"total_results": 1, "items": [{"title": "ACME LTD"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithRateLimit(1000, 10),
	)

	result, err := client.SearchCompanies(context.Background(), "acme", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, result.TotalResults)
}
