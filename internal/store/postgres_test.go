package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetCampaign_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM campaigns WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	c, err := s.GetCampaign(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateCampaign(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO campaigns`).
		WithArgs(pgxmock.AnyArg(), "norwich msps", "", "it_msp_expansion", "", "NR1 1AA",
			20, 100, pgxmock.AnyArg(), pgxmock.AnyArg(), false, 0, "", "created", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c := &model.Campaign{
		Name:        "norwich msps",
		PromptType:  "it_msp_expansion",
		Postcode:    "NR1 1AA",
		RadiusMiles: 20,
		MaxResults:  100,
	}
	require.NoError(t, s.CreateCampaign(context.Background(), c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.CampaignCreated, c.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartCampaign(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE campaigns SET status = \$1, started_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs("running", pgxmock.AnyArg(), "c1", "created").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.StartCampaign(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartCampaign_GuardRejectsWrongState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE campaigns SET status`).
		WithArgs("running", pgxmock.AnyArg(), "c1", "created").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.StartCampaign(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in created state")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishCampaign(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE campaigns SET status = \$1`).
		WithArgs("completed", "", 3, 1, 1, 1, 0, "search_augmented", "", `{"results":[]}`,
			pgxmock.AnyArg(), "c1", "running").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FinishCampaign(context.Background(), "c1", CampaignResult{
		Status: model.CampaignCompleted,
		Counters: model.CampaignCounters{
			TotalCandidates: 3, LeadsCreated: 1, DuplicatesSkipped: 1, ValidationRejects: 1,
		},
		ModeUsed:  model.ModeSearchAugmented,
		RawOutput: `{"results":[]}`,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishCampaign_RejectsNonTerminalStatus(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.FinishCampaign(context.Background(), "c1", CampaignResult{
		Status: model.CampaignRunning,
	})
	require.Error(t, err)
}

func TestPostgresStore_CreateLead_Inserted(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO leads .+ ON CONFLICT DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "c1", "Acme Ltd", "", "", "", "LE1 1AA", "", "",
			"", "", "", float64(0), pgxmock.AnyArg(), "", pgxmock.AnyArg(),
			"acme.co.uk", "acme", "LE1", "new", pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("lead-1"))

	lead := &model.Lead{
		CampaignID:  "c1",
		CompanyName: "Acme Ltd",
		Postcode:    "LE1 1AA",
		NormDomain:  "acme.co.uk",
		NormName:    "acme",
		OutwardCode: "LE1",
	}
	created, got, err := s.CreateLead(context.Background(), lead)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, lead, got)
	assert.Equal(t, model.LeadNew, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateLead_ConflictReturnsSurvivor(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO leads .+ ON CONFLICT DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "c2", "ACME LIMITED", "", "", "", "LE1 2BB", "", "",
			"", "", "", float64(0), pgxmock.AnyArg(), "", pgxmock.AnyArg(),
			"acme.co.uk", "acme", "LE1", "new", pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM leads WHERE \(norm_domain = \$1`).
		WithArgs("acme.co.uk", "acme", "LE1").
		WillReturnRows(leadRows("survivor-1", now))

	lead := &model.Lead{
		CampaignID:  "c2",
		CompanyName: "ACME LIMITED",
		Postcode:    "LE1 2BB",
		NormDomain:  "acme.co.uk",
		NormName:    "acme",
		OutwardCode: "LE1",
	}
	created, got, err := s.CreateLead(context.Background(), lead)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "survivor-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ConvertLead_Idempotent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// Already converted: the guarded update touches nothing, then the
	// existing linkage is returned.
	mock.ExpectExec(`UPDATE leads SET status = \$1, customer_id = \$2`).
		WithArgs("converted", "cust-9", pgxmock.AnyArg(), "lead-1", "new", "qualified").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	now := time.Now().UTC()
	rows := leadRows("lead-1", now)
	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(rows)

	got, err := s.ConvertLead(context.Background(), "lead-1", "cust-9")
	require.NoError(t, err)
	assert.Equal(t, model.LeadConverted, got.Status)
	assert.Equal(t, "cust-1", got.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLeadStatus_IllegalTransition(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.UpdateLeadStatus(context.Background(), "lead-1", model.LeadConverted, model.LeadNew)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal lead transition")
}

func TestPostgresStore_ListIdentityEntries(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "source", "norm_domain", "norm_name", "outward_code"}).
		AddRow("l1", "lead", "acme.co.uk", "acme", "LE1").
		AddRow("cu1", "customer", "", "beta systems", "NR1")
	mock.ExpectQuery(`SELECT id, 'lead' AS source`).WillReturnRows(rows)

	entries, err := s.ListIdentityEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "acme.co.uk", entries[0].NormDomain)
	assert.Equal(t, "customer", string(entries[1].Source))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindStuckCampaigns_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM campaigns WHERE status = \$1 AND started_at < \$2`).
		WithArgs("running", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := s.FindStuckCampaigns(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// leadRows builds a full lead row for scan tests. The lead is converted and
// linked to cust-1.
func leadRows(id string, now time.Time) *pgxmock.Rows {
	convertedAt := now
	return pgxmock.NewRows([]string{
		"id", "campaign_id", "company_name", "website", "description",
		"address", "postcode", "business_sector", "company_size",
		"contact_name", "contact_email", "contact_phone", "lead_score",
		"project_value_gbp", "timeline", "distance_miles",
		"norm_domain", "norm_name", "outward_code",
		"status", "customer_id", "converted_at",
		"registry_data", "source_urls",
		"created_at", "updated_at",
	}).AddRow(
		id, "c1", "Acme Ltd", "https://acme.co.uk", "",
		"", "LE1 1AA", "IT Services", "",
		"", "", "", 80.0,
		(*float64)(nil), "Unknown", (*float64)(nil),
		"acme.co.uk", "acme", "LE1",
		"converted", "cust-1", &convertedAt,
		[]byte(nil), []byte(`["https://acme.co.uk"]`),
		now, now,
	)
}
