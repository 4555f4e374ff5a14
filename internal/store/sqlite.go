package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It exists for
// single-operator use without a Postgres instance; the conflict-guarded
// lead insert works the same way through SQLite's partial unique indexes.
type SQLiteStore struct {
	db        *sql.DB
	inwardLen int
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// SetInwardCodeLen overrides the postcode inward-code length (default 3).
func (s *SQLiteStore) SetInwardCodeLen(n int) {
	if n > 0 {
		s.inwardLen = n
	}
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS campaigns (
	id                         TEXT PRIMARY KEY,
	name                       TEXT NOT NULL,
	description                TEXT NOT NULL DEFAULT '',
	prompt_type                TEXT NOT NULL,
	custom_criteria            TEXT NOT NULL DEFAULT '',
	postcode                   TEXT NOT NULL,
	radius_miles               INTEGER NOT NULL,
	max_results                INTEGER NOT NULL,
	include_sectors            TEXT,
	exclude_sectors            TEXT,
	include_existing_customers INTEGER NOT NULL DEFAULT 0,
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
	created_at                 DATETIME NOT NULL,
	started_at                 DATETIME,
	completed_at               DATETIME
);

CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);

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
	lead_score        REAL NOT NULL DEFAULT 0,
	project_value_gbp REAL,
	timeline          TEXT NOT NULL DEFAULT '',
	distance_miles    REAL,
	norm_domain       TEXT NOT NULL DEFAULT '',
	norm_name         TEXT NOT NULL DEFAULT '',
	outward_code      TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'new',
	customer_id       TEXT NOT NULL DEFAULT '',
	converted_at      DATETIME,
	registry_data     TEXT,
	source_urls       TEXT,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

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
	created_at          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_norm_domain ON customers(norm_domain);
CREATE INDEX IF NOT EXISTS idx_customers_name_area ON customers(norm_name, outward_code);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
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
		return eris.Wrap(err, "sqlite: marshal include sectors")
	}
	excludeJSON, err := json.Marshal(c.ExcludeSectors)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal exclude sectors")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, description, prompt_type, custom_criteria, postcode, radius_miles, max_results, include_sectors, exclude_sectors, include_existing_customers, min_company_size, mode_preference, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.PromptType, c.CustomCriteria, c.Postcode,
		c.RadiusMiles, c.MaxResults, string(includeJSON), string(excludeJSON),
		c.IncludeExistingCustomers, c.MinCompanySize, string(c.ModePreference),
		string(c.Status), c.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert campaign")
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaignSQL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get campaign %s", id)
	}
	return c, nil
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaigns")
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaignSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list campaigns rows")
}

func (s *SQLiteStore) StartCampaign(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
		string(model.CampaignRunning), time.Now().UTC(), id, string(model.CampaignCreated),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: start campaign %s", id)
	}
	return requireRows(res, "sqlite: campaign %s not found or not in created state", id)
}

func (s *SQLiteStore) FinishCampaign(ctx context.Context, id string, result CampaignResult) error {
	if !model.CanTransition(model.CampaignRunning, result.Status) {
		return eris.Errorf("sqlite: %s is not a terminal status reachable from running", result.Status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, failure_reason = ?, total_candidates = ?, leads_created = ?, duplicates_skipped = ?, validation_rejects = ?, persistence_failures = ?, mode_used = ?, low_confidence_note = ?, raw_output = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(result.Status), result.FailureReason,
		result.Counters.TotalCandidates, result.Counters.LeadsCreated,
		result.Counters.DuplicatesSkipped, result.Counters.ValidationRejects,
		result.Counters.PersistenceFailures,
		string(result.ModeUsed), result.LowConfidenceNote, result.RawOutput,
		time.Now().UTC(), id, string(model.CampaignRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish campaign %s", id)
	}
	return requireRows(res, "sqlite: campaign %s not found or not running", id)
}

func (s *SQLiteStore) FailCreatedCampaign(ctx context.Context, id string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = ?, failure_reason = ?, completed_at = ? WHERE id = ? AND status = ?`,
		string(model.CampaignFailed), reason, time.Now().UTC(), id, string(model.CampaignCreated),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail campaign %s", id)
	}
	return requireRows(res, "sqlite: campaign %s not found or not in created state", id)
}

func (s *SQLiteStore) FindStuckCampaigns(ctx context.Context, runningLongerThan time.Duration) ([]model.Campaign, error) {
	cutoff := time.Now().UTC().Add(-runningLongerThan)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE status = ? AND started_at < ? ORDER BY started_at`,
		string(model.CampaignRunning), cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find stuck campaigns")
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaignSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stuck campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: stuck campaign rows")
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) (bool, *model.Lead, error) {
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
		return false, nil, eris.Wrap(err, "sqlite: marshal source urls")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, campaign_id, company_name, website, description, address, postcode, business_sector, company_size, contact_name, contact_email, contact_phone, lead_score, project_value_gbp, timeline, distance_miles, norm_domain, norm_name, outward_code, status, source_urls, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		lead.ID, lead.CampaignID, lead.CompanyName, lead.Website, lead.Description,
		lead.Address, lead.Postcode, lead.Sector, lead.CompanySize,
		lead.ContactName, lead.ContactEmail, lead.ContactPhone, lead.LeadScore,
		lead.ProjectValueGBP, lead.Timeline, lead.DistanceMiles,
		lead.NormDomain, lead.NormName, lead.OutwardCode,
		string(lead.Status), string(sourceJSON), lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return false, nil, eris.Wrap(err, "sqlite: insert lead")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, nil, eris.Wrap(err, "sqlite: insert lead rows affected")
	}
	if n > 0 {
		return true, lead, nil
	}

	existing, err := s.FindLeadByIdentity(ctx, lead.NormDomain, lead.NormName, lead.OutwardCode)
	if err != nil {
		return false, nil, eris.Wrap(err, "sqlite: lookup after lead conflict")
	}
	if existing == nil {
		return false, nil, eris.New("sqlite: lead conflicted but no survivor found")
	}
	return false, existing, nil
}

// FindLeadByIdentity looks up a lead by its dedup keys.
func (s *SQLiteStore) FindLeadByIdentity(ctx context.Context, normDomain, normName, outwardCode string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE (norm_domain = ? AND ? <> '') OR (norm_name = ? AND outward_code = ?) LIMIT 1`,
		normDomain, normDomain, normName, outwardCode,
	)
	l, err := scanLeadSQL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find lead by identity")
	}
	return l, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLeadSQL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return l, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []any{}
	if filter.CampaignID != "" {
		query += ` AND campaign_id = ?`
		args = append(args, filter.CampaignID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.MinScore > 0 {
		query += ` AND lead_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY lead_score DESC, created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		l, err := scanLeadSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		out = append(out, *l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list leads rows")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, from, to model.LeadStatus) error {
	if !model.CanTransitionLead(from, to) {
		return eris.Errorf("sqlite: illegal lead transition %s -> %s", from, to)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", id)
	}
	return requireRows(res, "sqlite: lead %s not found or not in expected state", id)
}

func (s *SQLiteStore) ConvertLead(ctx context.Context, leadID, customerID string) (*model.Lead, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, customer_id = ?, converted_at = ?, updated_at = ? WHERE id = ? AND status IN (?, ?)`,
		string(model.LeadConverted), customerID, now, now, leadID,
		string(model.LeadNew), string(model.LeadQualified),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: convert lead %s", leadID)
	}

	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, eris.Errorf("sqlite: lead not found: %s", leadID)
	}
	if lead.Status != model.LeadConverted {
		return nil, eris.Errorf("sqlite: lead %s could not be converted from %s", leadID, lead.Status)
	}
	return lead, nil
}

func (s *SQLiteStore) AttachRegistryData(ctx context.Context, leadID string, data []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET registry_data = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: attach registry data %s", leadID)
	}
	return requireRows(res, "sqlite: lead not found: %s", leadID)
}

func (s *SQLiteStore) ListIdentityEntries(ctx context.Context) ([]dedup.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, 'lead' AS source, norm_domain, norm_name, outward_code FROM leads
		 UNION ALL
		 SELECT id, 'customer' AS source, norm_domain, norm_name, outward_code FROM customers`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list identity entries")
	}
	defer rows.Close()

	var out []dedup.Entry
	for rows.Next() {
		var e dedup.Entry
		var source string
		if err := rows.Scan(&e.ID, &source, &e.NormDomain, &e.NormName, &e.OutwardCode); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan identity entry")
		}
		e.Source = dedup.Source(source)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: identity entry rows")
}

func (s *SQLiteStore) CreateCustomer(ctx context.Context, c *model.CustomerRef) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	normDomain, normName, outward := dedup.Keys(c.CompanyName, c.WebsiteDomain, c.Postcode, s.inwardLen)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, company_name, postcode, website_domain, registration_number, norm_domain, norm_name, outward_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompanyName, c.Postcode, c.WebsiteDomain, c.RegistrationNumber,
		normDomain, normName, outward, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert customer")
}

func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]model.CustomerRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_name, postcode, website_domain, registration_number FROM customers ORDER BY company_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list customers")
	}
	defer rows.Close()

	var out []model.CustomerRef
	for rows.Next() {
		var c model.CustomerRef
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Postcode, &c.WebsiteDomain, &c.RegistrationNumber); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: customer rows")
}

func requireRows(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf(format, args...)
	}
	return nil
}

// sqlRow is satisfied by both *sql.Row and *sql.Rows.
type sqlRow interface {
	Scan(dest ...any) error
}

func scanCampaignSQL(row sqlRow) (*model.Campaign, error) {
	var c model.Campaign
	var includeJSON, excludeJSON sql.NullString
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

	if includeJSON.Valid && includeJSON.String != "" {
		if err := json.Unmarshal([]byte(includeJSON.String), &c.IncludeSectors); err != nil {
			return nil, eris.Wrap(err, "unmarshal include sectors")
		}
	}
	if excludeJSON.Valid && excludeJSON.String != "" {
		if err := json.Unmarshal([]byte(excludeJSON.String), &c.ExcludeSectors); err != nil {
			return nil, eris.Wrap(err, "unmarshal exclude sectors")
		}
	}
	return &c, nil
}

func scanLeadSQL(row sqlRow) (*model.Lead, error) {
	var l model.Lead
	var status string
	var registryJSON, sourceJSON sql.NullString

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
	if registryJSON.Valid && registryJSON.String != "" {
		l.RegistryData = json.RawMessage(registryJSON.String)
	}
	if sourceJSON.Valid && sourceJSON.String != "" {
		if err := json.Unmarshal([]byte(sourceJSON.String), &l.SourceURLs); err != nil {
			return nil, eris.Wrap(err, "unmarshal source urls")
		}
	}
	return &l, nil
}
