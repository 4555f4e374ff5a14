package lead

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
	"github.com/ccs-group/leadgen-cli/pkg/companieshouse"
	"github.com/ccs-group/leadgen-cli/pkg/postcodes"
)

// mockStore implements store.Store with overridable behavior per method.
type mockStore struct {
	createLead       func(ctx context.Context, l *model.Lead) (bool, *model.Lead, error)
	getLead          func(ctx context.Context, id string) (*model.Lead, error)
	listLeads        func(ctx context.Context, f store.LeadFilter) ([]model.Lead, error)
	updateLeadStatus func(ctx context.Context, id string, from, to model.LeadStatus) error
	convertLead      func(ctx context.Context, leadID, customerID string) (*model.Lead, error)
	attachRegistry   func(ctx context.Context, leadID string, data []byte) error

	convertCalls int
	attached     []byte
}

func (m *mockStore) CreateLead(ctx context.Context, l *model.Lead) (bool, *model.Lead, error) {
	if m.createLead != nil {
		return m.createLead(ctx, l)
	}
	l.ID = "lead-1"
	return true, l, nil
}

func (m *mockStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	if m.getLead != nil {
		return m.getLead(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) ListLeads(ctx context.Context, f store.LeadFilter) ([]model.Lead, error) {
	if m.listLeads != nil {
		return m.listLeads(ctx, f)
	}
	return nil, nil
}

func (m *mockStore) UpdateLeadStatus(ctx context.Context, id string, from, to model.LeadStatus) error {
	if m.updateLeadStatus != nil {
		return m.updateLeadStatus(ctx, id, from, to)
	}
	return nil
}

func (m *mockStore) ConvertLead(ctx context.Context, leadID, customerID string) (*model.Lead, error) {
	m.convertCalls++
	if m.convertLead != nil {
		return m.convertLead(ctx, leadID, customerID)
	}
	now := time.Now()
	return &model.Lead{ID: leadID, Status: model.LeadConverted, CustomerID: customerID, ConvertedAt: &now}, nil
}

func (m *mockStore) AttachRegistryData(ctx context.Context, leadID string, data []byte) error {
	m.attached = data
	if m.attachRegistry != nil {
		return m.attachRegistry(ctx, leadID, data)
	}
	return nil
}

func (m *mockStore) CreateCampaign(context.Context, *model.Campaign) error { return nil }
func (m *mockStore) GetCampaign(context.Context, string) (*model.Campaign, error) {
	return nil, nil
}
func (m *mockStore) ListCampaigns(context.Context, store.CampaignFilter) ([]model.Campaign, error) {
	return nil, nil
}
func (m *mockStore) StartCampaign(context.Context, string) error { return nil }
func (m *mockStore) FinishCampaign(context.Context, string, store.CampaignResult) error {
	return nil
}
func (m *mockStore) FailCreatedCampaign(context.Context, string, string) error { return nil }
func (m *mockStore) FindStuckCampaigns(context.Context, time.Duration) ([]model.Campaign, error) {
	return nil, nil
}
func (m *mockStore) ListIdentityEntries(context.Context) ([]dedup.Entry, error) { return nil, nil }
func (m *mockStore) CreateCustomer(context.Context, *model.CustomerRef) error   { return nil }
func (m *mockStore) ListCustomers(context.Context) ([]model.CustomerRef, error) { return nil, nil }
func (m *mockStore) Ping(context.Context) error                                 { return nil }
func (m *mockStore) Migrate(context.Context) error                              { return nil }
func (m *mockStore) Close() error                                               { return nil }

// mockGeocoder implements postcodes.Client with a fixed coordinate table.
type mockGeocoder struct {
	coords map[string][2]float64 // postcode -> lat, lon
	calls  int
}

func (g *mockGeocoder) Lookup(ctx context.Context, postcode string) (*postcodes.Postcode, error) {
	g.calls++
	c, ok := g.coords[postcode]
	if !ok {
		return nil, postcodes.ErrNotFound
	}
	return &postcodes.Postcode{Postcode: postcode, Latitude: c[0], Longitude: c[1]}, nil
}

// mockRegistry implements companieshouse.Client.
type mockRegistry struct {
	searchResult *companieshouse.SearchResult
	searchErr    error
	profiles     map[string]*companieshouse.CompanyProfile
}

func (r *mockRegistry) SearchCompanies(ctx context.Context, query string, limit int) (*companieshouse.SearchResult, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.searchResult, nil
}

func (r *mockRegistry) GetCompany(ctx context.Context, companyNumber string) (*companieshouse.CompanyProfile, error) {
	p, ok := r.profiles[companyNumber]
	if !ok {
		return nil, eris.Errorf("no profile for %s", companyNumber)
	}
	return p, nil
}
