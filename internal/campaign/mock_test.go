package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/discovery"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
)

// mockDiscoverer returns a canned payload or error.
type mockDiscoverer struct {
	out     *discovery.RawOutput
	err     error
	calls   int
	lastReq discovery.Request
	// block, when set, waits for ctx cancellation and returns ctx.Err().
	block bool
}

func (d *mockDiscoverer) Discover(ctx context.Context, req discovery.Request) (*discovery.RawOutput, error) {
	d.calls++
	d.lastReq = req
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.out, nil
}

// mockStore is an in-memory store.Store that records lifecycle calls in
// order so tests can assert sequencing.
type mockStore struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	leads     map[string]*model.Lead
	entries   []dedup.Entry
	calls     []string

	createLeadErr error
	finishResult  *store.CampaignResult
	failReason    string
}

func newMockStore() *mockStore {
	return &mockStore{
		campaigns: map[string]*model.Campaign{},
		leads:     map[string]*model.Lead{},
	}
}

func (m *mockStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Status = model.CampaignCreated
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) ListCampaigns(ctx context.Context, f store.CampaignFilter) ([]model.Campaign, error) {
	return nil, nil
}

func (m *mockStore) StartCampaign(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start")
	m.campaigns[id].Status = model.CampaignRunning
	return nil
}

func (m *mockStore) FinishCampaign(ctx context.Context, id string, result store.CampaignResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("finish")
	m.finishResult = &result
	m.campaigns[id].Status = result.Status
	m.campaigns[id].Counters = result.Counters
	m.campaigns[id].FailureReason = result.FailureReason
	return nil
}

func (m *mockStore) FailCreatedCampaign(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("fail_created")
	m.failReason = reason
	m.campaigns[id].Status = model.CampaignFailed
	m.campaigns[id].FailureReason = reason
	return nil
}

func (m *mockStore) FindStuckCampaigns(ctx context.Context, olderThan time.Duration) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Campaign
	for _, c := range m.campaigns {
		if c.Status == model.CampaignRunning {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockStore) CreateLead(ctx context.Context, l *model.Lead) (bool, *model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create_lead")
	if m.createLeadErr != nil {
		return false, nil, m.createLeadErr
	}
	for _, existing := range m.leads {
		sameDomain := l.NormDomain != "" && existing.NormDomain == l.NormDomain
		sameNameArea := l.NormName != "" && existing.NormName == l.NormName && existing.OutwardCode == l.OutwardCode
		if sameDomain || sameNameArea {
			cp := *existing
			return false, &cp, nil
		}
	}
	l.ID = uuid.NewString()
	l.Status = model.LeadNew
	m.leads[l.ID] = l
	return true, l, nil
}

func (m *mockStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *mockStore) ListLeads(ctx context.Context, f store.LeadFilter) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lead
	for _, l := range m.leads {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockStore) UpdateLeadStatus(ctx context.Context, id string, from, to model.LeadStatus) error {
	return nil
}

func (m *mockStore) ConvertLead(ctx context.Context, leadID, customerID string) (*model.Lead, error) {
	return nil, nil
}

func (m *mockStore) AttachRegistryData(ctx context.Context, leadID string, data []byte) error {
	return nil
}

func (m *mockStore) ListIdentityEntries(ctx context.Context) ([]dedup.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dedup.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockStore) CreateCustomer(ctx context.Context, c *model.CustomerRef) error { return nil }
func (m *mockStore) ListCustomers(ctx context.Context) ([]model.CustomerRef, error) {
	return nil, nil
}
func (m *mockStore) Ping(ctx context.Context) error    { return nil }
func (m *mockStore) Migrate(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                      { return nil }
