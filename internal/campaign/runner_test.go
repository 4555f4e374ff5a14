package campaign

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccs-group/leadgen-cli/internal/config"
	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/discovery"
	"github.com/ccs-group/leadgen-cli/internal/lead"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/validate"
)

func newTestRunner(t *testing.T, st *mockStore, disc Discoverer) *Runner {
	t.Helper()
	v, err := validate.New(config.ValidateConfig{ScoreMin: 0, ScoreMax: 100})
	require.NoError(t, err)
	cfg := config.CampaignConfig{
		WorkerConcurrency: 2,
		PersistRetries:    2,
		PersistBackoffMS:  1,
	}
	return NewRunner(st, disc, v, lead.New(st), cfg)
}

func createdCampaign(t *testing.T, st *mockStore) *model.Campaign {
	t.Helper()
	c := validCampaign()
	require.NoError(t, st.CreateCampaign(context.Background(), &c))
	return &c
}

const scenarioPayload = "Here are the results:\n```json\n" +
	`{"query_area":"NR1","results":[{"company_name":"Acme Ltd","postcode":"NR1 1AA","website":"https://acme.co.uk","lead_score":80}]}` +
	"\n```"

// Two campaigns discovering the same company at the same time must settle
// on a single lead: one run inserts, the other loses the conflict-guarded
// insert and counts the company as a duplicate.
func TestRun_ConcurrentCampaignsSameCompanyOneLead(t *testing.T) {
	st := newMockStore()
	a := createdCampaign(t, st)
	b := createdCampaign(t, st)

	runA := newTestRunner(t, st, &mockDiscoverer{out: &discovery.RawOutput{Text: scenarioPayload}})
	runB := newTestRunner(t, st, &mockDiscoverer{out: &discovery.RawOutput{Text: scenarioPayload}})

	var wg sync.WaitGroup
	wg.Add(2)
	var errA, errB error
	go func() {
		defer wg.Done()
		_, errA = runA.Run(context.Background(), a.ID)
	}()
	go func() {
		defer wg.Done()
		_, errB = runB.Run(context.Background(), b.ID)
	}()
	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Len(t, st.leads, 1)

	ca, cb := st.campaigns[a.ID], st.campaigns[b.ID]
	assert.Equal(t, 1, ca.Counters.LeadsCreated+cb.Counters.LeadsCreated)
	assert.Equal(t, 1, ca.Counters.DuplicatesSkipped+cb.Counters.DuplicatesSkipped)
	assert.True(t, ca.Counters.Consistent())
	assert.True(t, cb.Counters.Consistent())
}

func TestRun_ModePreferenceReachesDiscovery(t *testing.T) {
	st := newMockStore()
	c := validCampaign()
	c.ModePreference = model.ModeKnowledgeOnly
	require.NoError(t, st.CreateCampaign(context.Background(), &c))

	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     scenarioPayload,
		ModeUsed: model.ModeKnowledgeOnly,
	}}

	_, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModeKnowledgeOnly, disc.lastReq.Mode)
}

func TestRun_CreatesLead(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     scenarioPayload,
		ModeUsed: model.ModeSearchAugmented,
	}}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCompleted, status)

	require.NotNil(t, st.finishResult)
	assert.Equal(t, 1, st.finishResult.Counters.TotalCandidates)
	assert.Equal(t, 1, st.finishResult.Counters.LeadsCreated)
	assert.True(t, st.finishResult.Counters.Consistent())
	assert.Equal(t, model.ModeSearchAugmented, st.finishResult.ModeUsed)
	assert.Empty(t, st.finishResult.LowConfidenceNote)
	assert.Equal(t, scenarioPayload, st.finishResult.RawOutput)

	// Running was persisted before discovery dispatched.
	require.GreaterOrEqual(t, len(st.calls), 2)
	assert.Equal(t, "start", st.calls[0])
	assert.Equal(t, 1, disc.calls)
	assert.Len(t, st.leads, 1)
}

func TestRun_EmptyResultsCompletes(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     `{"query_area":"NR1","results":[]}`,
		ModeUsed: model.ModeSearchAugmented,
	}}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCompleted, status)
	assert.Zero(t, st.finishResult.Counters.LeadsCreated)
	assert.Zero(t, st.finishResult.Counters.TotalCandidates)
}

func TestRun_HardFailureFailsCampaign(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	raw := "I could not find any businesses matching your criteria in that area."
	disc := &mockDiscoverer{out: &discovery.RawOutput{Text: raw, ModeUsed: model.ModeKnowledgeOnly}}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignFailed, status)
	assert.Contains(t, st.finishResult.FailureReason, "could not be parsed")
	// Raw payload kept for post-hoc debugging even on failure.
	assert.Equal(t, raw, st.finishResult.RawOutput)
}

func TestRun_DiscoveryUnavailable(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{err: discovery.ErrUnavailable}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignFailed, status)
	assert.Contains(t, st.finishResult.FailureReason, "discovery failed")
}

func TestRun_InvalidSpecFailsFromCreated(t *testing.T) {
	st := newMockStore()
	c := validCampaign()
	c.RadiusMiles = 0
	require.NoError(t, st.CreateCampaign(context.Background(), &c))
	disc := &mockDiscoverer{}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidCampaignSpec))
	assert.Equal(t, model.CampaignFailed, status)
	assert.Contains(t, st.failReason, "radius")
	assert.Zero(t, disc.calls)
	// The campaign never reached Running.
	assert.NotContains(t, st.calls, "start")
}

func TestRun_TerminalCampaignRefusesRerun(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	st.campaigns[c.ID].Status = model.CampaignCompleted

	_, err := newTestRunner(t, st, &mockDiscoverer{}).Run(context.Background(), c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only created campaigns")
}

func TestRun_NotFound(t *testing.T) {
	st := newMockStore()
	_, err := newTestRunner(t, st, &mockDiscoverer{}).Run(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRun_LowConfidenceNoteRecorded(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:          `{"query_area":"NR1","results":[]}`,
		ModeUsed:      model.ModeKnowledgeOnly,
		LowConfidence: true,
	}}

	_, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModeKnowledgeOnly, st.finishResult.ModeUsed)
	assert.NotEmpty(t, st.finishResult.LowConfidenceNote)
}

func TestRun_MixedBatchCounterIdentity(t *testing.T) {
	st := newMockStore()
	// A pre-existing lead that one candidate collides with on domain.
	st.entries = []dedup.Entry{{
		ID: "lead-0", Source: dedup.SourceLead,
		NormDomain: "dupe.co.uk", NormName: "dupe", OutwardCode: "NR1",
	}}
	c := createdCampaign(t, st)

	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text: `{"query_area":"NR1","results":[
			{"company_name":"Fresh Ltd","postcode":"NR1 1AA","website":"https://fresh.co.uk","lead_score":70},
			{"company_name":"Dupe Ltd","postcode":"NR2 2BB","website":"https://dupe.co.uk","lead_score":60},
			{"company_name":"Bad Postcode Ltd","postcode":"not-a-postcode","lead_score":50},
			{"company_name":"Street Address Ltd","postcode":"NR3 3CC","website":"12 High Street, Norwich","lead_score":40}
		]}`,
		ModeUsed: model.ModeSearchAugmented,
	}}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCompleted, status)

	got := st.finishResult.Counters
	assert.Equal(t, 4, got.TotalCandidates)
	assert.Equal(t, 1, got.LeadsCreated)
	assert.Equal(t, 1, got.DuplicatesSkipped)
	assert.Equal(t, 2, got.ValidationRejects)
	assert.Zero(t, got.PersistenceFailures)
	assert.True(t, got.Consistent())
}

func TestRun_IntraRunDuplicateCreatesOneLead(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text: `{"query_area":"NR1","results":[
			{"company_name":"Acme Ltd","postcode":"NR1 1AA","website":"https://acme.co.uk","lead_score":80},
			{"company_name":"ACME LIMITED","postcode":"NR1 4DJ","website":"http://www.acme.co.uk/","lead_score":75}
		]}`,
		ModeUsed: model.ModeSearchAugmented,
	}}

	_, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, st.leads, 1)
	assert.Equal(t, 1, st.finishResult.Counters.LeadsCreated)
	assert.Equal(t, 1, st.finishResult.Counters.DuplicatesSkipped)
	assert.True(t, st.finishResult.Counters.Consistent())
}

func TestRun_PersistenceFailurePartiallyCompletes(t *testing.T) {
	st := newMockStore()
	st.createLeadErr = eris.New("disk full")
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     scenarioPayload,
		ModeUsed: model.ModeSearchAugmented,
	}}

	status, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignPartiallyCompleted, status)
	assert.Equal(t, 1, st.finishResult.Counters.PersistenceFailures)
	assert.True(t, st.finishResult.Counters.Consistent())
}

func TestRun_ExistingCustomersExcludedByDefault(t *testing.T) {
	st := newMockStore()
	st.entries = []dedup.Entry{{
		ID: "cust-1", Source: dedup.SourceCustomer,
		NormDomain: "acme.co.uk", NormName: "acme", OutwardCode: "NR1",
	}}
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     scenarioPayload,
		ModeUsed: model.ModeSearchAugmented,
	}}

	_, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.finishResult.Counters.DuplicatesSkipped)
	assert.Zero(t, st.finishResult.Counters.LeadsCreated)
}

func TestRun_IncludeExistingCustomersIgnoresCustomerIndex(t *testing.T) {
	st := newMockStore()
	st.entries = []dedup.Entry{{
		ID: "cust-1", Source: dedup.SourceCustomer,
		NormDomain: "acme.co.uk", NormName: "acme", OutwardCode: "NR1",
	}}
	c := validCampaign()
	c.IncludeExistingCustomers = true
	require.NoError(t, st.CreateCampaign(context.Background(), &c))
	disc := &mockDiscoverer{out: &discovery.RawOutput{
		Text:     scenarioPayload,
		ModeUsed: model.ModeSearchAugmented,
	}}

	_, err := newTestRunner(t, st, disc).Run(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.finishResult.Counters.LeadsCreated)
}

func TestRun_CancelledDuringDiscovery(t *testing.T) {
	st := newMockStore()
	c := createdCampaign(t, st)
	disc := &mockDiscoverer{block: true}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	status, err := newTestRunner(t, st, disc).Run(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignFailed, status)
	assert.Contains(t, st.finishResult.FailureReason, "cancelled")
	// The terminal write landed despite the cancelled run context.
	got, err := st.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignFailed, got.Status)
}

func TestRepairStuck(t *testing.T) {
	st := newMockStore()
	stale := createdCampaign(t, st)
	require.NoError(t, st.StartCampaign(context.Background(), stale.ID))
	fine := createdCampaign(t, st)

	repaired, err := newTestRunner(t, st, &mockDiscoverer{}).RepairStuck(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, repaired, 1)
	assert.Equal(t, stale.ID, repaired[0].ID)

	got, err := st.GetCampaign(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignFailed, got.Status)
	assert.Equal(t, stuckReason, got.FailureReason)

	untouched, err := st.GetCampaign(context.Background(), fine.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCreated, untouched.Status)
}
