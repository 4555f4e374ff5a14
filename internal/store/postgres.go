package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ccs-group/leadgen-cli/internal/db"
	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()

	// inwardLen is the inward-code length used when deriving customer
	// identity keys. Must match the resolver's configuration.
	inwardLen int
}

// SetInwardCodeLen overrides the postcode inward-code length (default 3).
func (s *PostgresStore) SetInwardCodeLen(n int) {
	if n > 0 {
		s.inwardLen = n
	}
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot per-candidate path.
var preparedStatements = map[string]string{
	"get_campaign":     `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`,
	"get_lead":         `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`,
	"find_by_identity": `SELECT ` + leadColumns + ` FROM leads WHERE (norm_domain = $1 AND $1 <> '') OR (norm_name = $2 AND outward_code = $3) LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; tests use this with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const campaignColumns = `id, name, description, prompt_type, custom_criteria, postcode, radius_miles, max_results, include_sectors, exclude_sectors, include_existing_customers, min_company_size, mode_preference, status, failure_reason, total_candidates, leads_created, duplicates_skipped, validation_rejects, persistence_failures, mode_used, low_confidence_note, raw_output, created_at, started_at, completed_at`

const leadColumns = `id, campaign_id, company_name, website, description, address, postcode, business_sector, company_size, contact_name, contact_email, contact_phone, lead_score, project_value_gbp, timeline, distance_miles, norm_domain, norm_name, outward_code, status, customer_id, converted_at, registry_data, source_urls, created_at, updated_at`

const postgresMigration = `
CREATE TABLE IF NOT EXISTS campaigns (
	id                         TEXT PRIMARY KEY,
	name                       TEXT NOT NULL,
	description                TEXT NOT NULL DEFAULT '',
	prompt_type                TEXT NOT NULL,
	custom_criteria            TEXT NOT NULL DEFAULT '',
	postcode                   TEXT NOT NULL,
	radius_miles               INTEGER NOT NULL,
	max_results                INTEGER NOT NULL,
	include_sectors            JSONB,
	exclude_sectors            JSONB,
	include_existing_customers BOOLEAN NOT NULL DEFAULT false,
	min_company_size           INTEGER NOT NULL DEFAULT 0,
	mode_preference            TEXT NOT NULL DEFAULT '',
	status                     TEXT NOT NULL DEFAULT 'created',
	failure_reason             TEXT NOT NULL DEFAULT '',
	total_candidates           INTEGER NOT NULL DEFAULT 0,
	leads_created              INTEGER NOT NULL DEFAULT 0,
	duplicates_skipped         INTEGER NOT NULL DEFAULT 0,
	validation_rejects         INTEGER NOT NULL DEFAULT 0,
	persistence_failures       INTEGER NOT NULL DEFAULT 0,
	mode_used                  TEXT NOT NULL DEFAULT '',
	low_confidence_note        TEXT NOT NULL DEFAULT '',
	raw_output                 TEXT NOT NULL DEFAULT '',
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at                 TIMESTAMPTZ,
	completed_at               TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
CREATE INDEX IF NOT EXISTS idx_campaigns_started_at ON campaigns(started_at);

CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	campaign_id       TEXT NOT NULL REFERENCES campaigns(id),
	company_name      TEXT NOT NULL,
	website           TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	address           TEXT NOT NULL DEFAULT '',
	postcode          TEXT NOT NULL,
	business_sector   TEXT NOT NULL DEFAULT '',
	company_size      TEXT NOT NULL DEFAULT '',
	contact_name      TEXT NOT NULL DEFAULT '',
	contact_email     TEXT NOT NULL DEFAULT '',
	contact_phone     TEXT NOT NULL DEFAULT '',
	lead_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	project_value_gbp DOUBLE PRECISION,
	timeline          TEXT NOT NULL DEFAULT '',
	distance_miles    DOUBLE PRECISION,
	norm_domain       TEXT NOT NULL DEFAULT '',
	norm_name         TEXT NOT NULL DEFAULT '',
	outward_code      TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'new',
	customer_id       TEXT NOT NULL DEFAULT '',
	converted_at      TIMESTAMPTZ,
	registry_data     JSONB,
	source_urls       JSONB,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- The unique indexes are what make concurrent campaigns safe: two writers
-- racing on the same identity collapse to one row via ON CONFLICT DO NOTHING.
CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_norm_domain ON leads(norm_domain) WHERE norm_domain <> '';
CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_name_area ON leads(norm_name, outward_code) WHERE norm_name <> '';
CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON leads(campaign_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);

CREATE TABLE IF NOT EXISTS customers (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	postcode            TEXT NOT NULL DEFAULT '',
	website_domain      TEXT NOT NULL DEFAULT '',
	registration_number TEXT NOT NULL DEFAULT '',
	norm_domain         TEXT NOT NULL DEFAULT '',
	norm_name           TEXT NOT NULL DEFAULT '',
	outward_code        TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_customers_norm_domain ON customers(norm_domain);
CREATE INDEX IF NOT EXISTS idx_customers_name_area ON customers(norm_name, outward_code);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignCreated
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	includeJSON, err := json.Marshal(c.IncludeSectors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal include sectors")
	}
	excludeJSON, err := json.Marshal(c.ExcludeSectors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal exclude sectors")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO campaigns (id, name, description, prompt_type, custom_criteria, postcode, radius_miles, max_results, include_sectors, exclude_sectors, include_existing_customers, min_company_size, mode_preference, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, c.Description, c.PromptType, c.CustomCriteria, c.Postcode,
		c.RadiusMiles, c.MaxResults, includeJSON, excludeJSON,
		c.IncludeExistingCustomers, c.MinCompanySize, string(c.ModePreference),
		string(c.Status), c.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert campaign")
}

func (s *PostgresStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get campaign %s", id)
	}
	return c, nil
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaigns")
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list campaigns rows")
}

func (s *PostgresStore) StartCampaign(ctx context.Context, id string) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, started_at = $2 WHERE id = $3 AND status = $4`,
		string(model.CampaignRunning), now, id, string(model.CampaignCreated),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: start campaign %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: campaign %s not found or not in created state", id)
	}
	return nil
}

func (s *PostgresStore) FinishCampaign(ctx context.Context, id string, result CampaignResult) error {
	if !model.CanTransition(model.CampaignRunning, result.Status) {
		return eris.Errorf("postgres: %s is not a terminal status reachable from running", result.Status)
	}

	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, failure_reason = $2, total_candidates = $3, leads_created = $4, duplicates_skipped = $5, validation_rejects = $6, persistence_failures = $7, mode_used = $8, low_confidence_note = $9, raw_output = $10, completed_at = $11
		 WHERE id = $12 AND status = $13`,
		string(result.Status), result.FailureReason,
		result.Counters.TotalCandidates, result.Counters.LeadsCreated,
		result.Counters.DuplicatesSkipped, result.Counters.ValidationRejects,
		result.Counters.PersistenceFailures,
		string(result.ModeUsed), result.LowConfidenceNote, result.RawOutput,
		now, id, string(model.CampaignRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish campaign %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: campaign %s not found or not running", id)
	}
	return nil
}

func (s *PostgresStore) FailCreatedCampaign(ctx context.Context, id string, reason string) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, failure_reason = $2, completed_at = $3 WHERE id = $4 AND status = $5`,
		string(model.CampaignFailed), reason, now, id, string(model.CampaignCreated),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail campaign %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: campaign %s not found or not in created state", id)
	}
	return nil
}

func (s *PostgresStore) FindStuckCampaigns(ctx context.Context, runningLongerThan time.Duration) ([]model.Campaign, error) {
	cutoff := time.Now().UTC().Add(-runningLongerThan)
	rows, err := s.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE status = $1 AND started_at < $2 ORDER BY started_at`,
		string(model.CampaignRunning), cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find stuck campaigns")
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan stuck campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: stuck campaign rows")
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) (bool, *model.Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = model.LeadNew
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	sourceJSON, err := json.Marshal(lead.SourceURLs)
	if err != nil {
		return false, nil, eris.Wrap(err, "postgres: marshal source urls")
	}

	var insertedID string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO leads (id, campaign_id, company_name, website, description, address, postcode, business_sector, company_size, contact_name, contact_email, contact_phone, lead_score, project_value_gbp, timeline, distance_miles, norm_domain, norm_name, outward_code, status, source_urls, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		 ON CONFLICT DO NOTHING
		 RETURNING id`,
		lead.ID, lead.CampaignID, lead.CompanyName, lead.Website, lead.Description,
		lead.Address, lead.Postcode, lead.Sector, lead.CompanySize,
		lead.ContactName, lead.ContactEmail, lead.ContactPhone, lead.LeadScore,
		lead.ProjectValueGBP, lead.Timeline, lead.DistanceMiles,
		lead.NormDomain, lead.NormName, lead.OutwardCode,
		string(lead.Status), sourceJSON, lead.CreatedAt, lead.UpdatedAt,
	).Scan(&insertedID)

	if err == nil {
		return true, lead, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, nil, eris.Wrap(err, "postgres: insert lead")
	}

	// A concurrent writer won the identity race. Surface the survivor.
	existing, err := s.FindLeadByIdentity(ctx, lead.NormDomain, lead.NormName, lead.OutwardCode)
	if err != nil {
		return false, nil, eris.Wrap(err, "postgres: lookup after lead conflict")
	}
	if existing == nil {
		return false, nil, eris.New("postgres: lead conflicted but no survivor found")
	}
	return false, existing, nil
}

// FindLeadByIdentity looks up a lead by its dedup keys: domain first, then
// name+area, mirroring resolution order.
func (s *PostgresStore) FindLeadByIdentity(ctx context.Context, normDomain, normName, outwardCode string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE (norm_domain = $1 AND $1 <> '') OR (norm_name = $2 AND outward_code = $3) LIMIT 1`,
		normDomain, normName, outwardCode,
	)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find lead by identity")
	}
	return l, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}
	if filter.CampaignID != "" {
		query += ` AND campaign_id = ` + next()
		args = append(args, filter.CampaignID)
	}
	if filter.Status != "" {
		query += ` AND status = ` + next()
		args = append(args, string(filter.Status))
	}
	if filter.MinScore > 0 {
		query += ` AND lead_score >= ` + next()
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY lead_score DESC, created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		out = append(out, *l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list leads rows")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, from, to model.LeadStatus) error {
	if !model.CanTransitionLead(from, to) {
		return eris.Errorf("postgres: illegal lead transition %s -> %s", from, to)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(to), time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead %s not found or not in %s state", id, from)
	}
	return nil
}

func (s *PostgresStore) ConvertLead(ctx context.Context, leadID, customerID string) (*model.Lead, error) {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, customer_id = $2, converted_at = $3, updated_at = $3 WHERE id = $4 AND status IN ($5, $6)`,
		string(model.LeadConverted), customerID, now, leadID,
		string(model.LeadNew), string(model.LeadQualified),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: convert lead %s", leadID)
	}

	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, eris.Errorf("postgres: lead not found: %s", leadID)
	}
	if tag.RowsAffected() == 0 && lead.Status != model.LeadConverted {
		return nil, eris.Errorf("postgres: lead %s could not be converted from %s", leadID, lead.Status)
	}
	return lead, nil
}

func (s *PostgresStore) AttachRegistryData(ctx context.Context, leadID string, data []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET registry_data = $1, updated_at = $2 WHERE id = $3`,
		data, time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: attach registry data %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead not found: %s", leadID)
	}
	return nil
}

func (s *PostgresStore) ListIdentityEntries(ctx context.Context) ([]dedup.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, 'lead' AS source, norm_domain, norm_name, outward_code FROM leads
		 UNION ALL
		 SELECT id, 'customer' AS source, norm_domain, norm_name, outward_code FROM customers`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list identity entries")
	}
	defer rows.Close()

	var out []dedup.Entry
	for rows.Next() {
		var e dedup.Entry
		var source string
		if err := rows.Scan(&e.ID, &source, &e.NormDomain, &e.NormName, &e.OutwardCode); err != nil {
			return nil, eris.Wrap(err, "postgres: scan identity entry")
		}
		e.Source = dedup.Source(source)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: identity entry rows")
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, c *model.CustomerRef) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	normDomain, normName, outward := dedup.Keys(c.CompanyName, c.WebsiteDomain, c.Postcode, s.inwardLen)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (id, company_name, postcode, website_domain, registration_number, norm_domain, norm_name, outward_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CompanyName, c.Postcode, c.WebsiteDomain, c.RegistrationNumber,
		normDomain, normName, outward, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert customer")
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]model.CustomerRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_name, postcode, website_domain, registration_number FROM customers ORDER BY company_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list customers")
	}
	defer rows.Close()

	var out []model.CustomerRef
	for rows.Next() {
		var c model.CustomerRef
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Postcode, &c.WebsiteDomain, &c.RegistrationNumber); err != nil {
			return nil, eris.Wrap(err, "postgres: scan customer")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: customer rows")
}

func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var c model.Campaign
	var includeJSON, excludeJSON []byte
	var modePreference, status, modeUsed string

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.PromptType, &c.CustomCriteria,
		&c.Postcode, &c.RadiusMiles, &c.MaxResults, &includeJSON, &excludeJSON,
		&c.IncludeExistingCustomers, &c.MinCompanySize, &modePreference,
		&status, &c.FailureReason,
		&c.Counters.TotalCandidates, &c.Counters.LeadsCreated,
		&c.Counters.DuplicatesSkipped, &c.Counters.ValidationRejects,
		&c.Counters.PersistenceFailures,
		&modeUsed, &c.LowConfidenceNote, &c.RawOutput,
		&c.CreatedAt, &c.StartedAt, &c.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ModePreference = model.DiscoveryMode(modePreference)
	c.Status = model.CampaignStatus(status)
	c.ModeUsed = model.DiscoveryMode(modeUsed)

	if len(includeJSON) > 0 {
		if err := json.Unmarshal(includeJSON, &c.IncludeSectors); err != nil {
			return nil, eris.Wrap(err, "unmarshal include sectors")
		}
	}
	if len(excludeJSON) > 0 {
		if err := json.Unmarshal(excludeJSON, &c.ExcludeSectors); err != nil {
			return nil, eris.Wrap(err, "unmarshal exclude sectors")
		}
	}
	return &c, nil
}

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var status string
	var registryJSON, sourceJSON []byte

	err := row.Scan(
		&l.ID, &l.CampaignID, &l.CompanyName, &l.Website, &l.Description,
		&l.Address, &l.Postcode, &l.Sector, &l.CompanySize,
		&l.ContactName, &l.ContactEmail, &l.ContactPhone, &l.LeadScore,
		&l.ProjectValueGBP, &l.Timeline, &l.DistanceMiles,
		&l.NormDomain, &l.NormName, &l.OutwardCode,
		&status, &l.CustomerID, &l.ConvertedAt,
		&registryJSON, &sourceJSON,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = model.LeadStatus(status)
	if len(registryJSON) > 0 {
		l.RegistryData = json.RawMessage(registryJSON)
	}
	if len(sourceJSON) > 0 {
		if err := json.Unmarshal(sourceJSON, &l.SourceURLs); err != nil {
			return nil, eris.Wrap(err, "unmarshal source urls")
		}
	}
	return &l, nil
}
