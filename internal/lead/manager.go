// Package lead owns the lead lifecycle: materializing validated candidates
// into persisted leads, qualification and rejection, idempotent conversion,
// and out-of-band registry enrichment.
package lead

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/geo"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
	"github.com/ccs-group/leadgen-cli/pkg/companieshouse"
	"github.com/ccs-group/leadgen-cli/pkg/postcodes"
)

// ValueBands maps the qualitative project value reported by discovery onto
// configured GBP midpoints.
type ValueBands struct {
	SmallGBP  float64
	MediumGBP float64
	LargeGBP  float64
}

// Manager coordinates lead creation and status changes on top of the store.
type Manager struct {
	store     store.Store
	geocoder  postcodes.Client
	registry  companieshouse.Client
	bands     ValueBands
	inwardLen int
}

// Option configures a Manager.
type Option func(*Manager)

// WithGeocoder enables distance-from-campaign-center computation.
func WithGeocoder(c postcodes.Client) Option {
	return func(m *Manager) { m.geocoder = c }
}

// WithRegistry enables Companies House enrichment.
func WithRegistry(c companieshouse.Client) Option {
	return func(m *Manager) { m.registry = c }
}

// WithValueBands sets the GBP midpoints for project value estimation.
func WithValueBands(b ValueBands) Option {
	return func(m *Manager) { m.bands = b }
}

// WithInwardCodeLen overrides the inward code length used when deriving
// outward codes from unspaced postcodes.
func WithInwardCodeLen(n int) Option {
	return func(m *Manager) { m.inwardLen = n }
}

// New builds a Manager. Geocoding and registry enrichment are optional; a
// Manager without them still creates and transitions leads.
func New(st store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: st,
		bands: ValueBands{SmallGBP: 5000, MediumGBP: 25000, LargeGBP: 75000},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Origin geocodes a campaign's center postcode. Returns nil without error
// when no geocoder is configured or the postcode is unknown; distance is an
// optional annotation, not a gate.
func (m *Manager) Origin(ctx context.Context, postcode string) (*geom.Point, error) {
	if m.geocoder == nil {
		return nil, nil
	}
	pc, err := m.geocoder.Lookup(ctx, postcode)
	if err != nil {
		if eris.Is(err, postcodes.ErrNotFound) {
			zap.L().Warn("campaign center postcode not found, distances skipped",
				zap.String("postcode", postcode))
			return nil, nil
		}
		return nil, eris.Wrap(err, "lead: geocode campaign center")
	}
	return geo.Point(pc.Latitude, pc.Longitude), nil
}

// CreateFromCandidate materializes a validated candidate as a lead in status
// New. The created flag is false when an equivalent lead already existed, in
// which case the survivor is returned instead.
func (m *Manager) CreateFromCandidate(ctx context.Context, campaignID string, c model.Candidate, origin *geom.Point) (bool, *model.Lead, error) {
	normDomain, normName, outward := dedup.Keys(c.CompanyName, c.Website, c.Postcode, m.inwardLen)

	l := &model.Lead{
		CampaignID:      campaignID,
		CompanyName:     c.CompanyName,
		Website:         c.Website,
		Description:     c.Description,
		Address:         c.Address,
		Postcode:        c.Postcode,
		Sector:          c.Sector,
		CompanySize:     c.CompanySize,
		ContactName:     c.ContactName,
		ContactEmail:    c.ContactEmail,
		ContactPhone:    c.ContactPhone,
		LeadScore:       c.LeadScore,
		ProjectValueGBP: m.projectValueGBP(c.ProjectValue),
		Timeline:        c.Timeline,
		NormDomain:      normDomain,
		NormName:        normName,
		OutwardCode:     outward,
		SourceURLs:      c.SourceURLs,
	}

	if origin != nil {
		l.DistanceMiles = m.distanceFrom(ctx, origin, c.Postcode)
	}

	created, existing, err := m.store.CreateLead(ctx, l)
	if err != nil {
		return false, nil, eris.Wrap(err, "lead: create")
	}
	if !created {
		return false, existing, nil
	}
	return true, l, nil
}

// distanceFrom geocodes the candidate postcode and measures straight-line
// miles from the campaign center. Geocoding failures are logged and ignored.
func (m *Manager) distanceFrom(ctx context.Context, origin *geom.Point, postcode string) *float64 {
	if m.geocoder == nil {
		return nil
	}
	pc, err := m.geocoder.Lookup(ctx, postcode)
	if err != nil {
		zap.L().Debug("lead postcode geocode failed",
			zap.String("postcode", postcode),
			zap.Error(err))
		return nil
	}
	d := geo.DistanceMiles(origin, geo.Point(pc.Latitude, pc.Longitude))
	return &d
}

// projectValueGBP maps the free-text band to a configured midpoint. Unknown
// or unrecognized bands produce no estimate.
func (m *Manager) projectValueGBP(band string) *float64 {
	var v float64
	switch {
	case strings.Contains(strings.ToLower(band), "small"):
		v = m.bands.SmallGBP
	case strings.Contains(strings.ToLower(band), "medium"):
		v = m.bands.MediumGBP
	case strings.Contains(strings.ToLower(band), "large"):
		v = m.bands.LargeGBP
	default:
		return nil
	}
	return &v
}

// Qualify moves a lead into the qualified state.
func (m *Manager) Qualify(ctx context.Context, leadID string) error {
	return m.transition(ctx, leadID, model.LeadQualified)
}

// Reject marks a lead rejected. Rejected leads are kept so the deduplicator
// still sees them in future campaigns. The reason is recorded in the audit
// log, not on the row.
func (m *Manager) Reject(ctx context.Context, leadID, reason string) error {
	if err := m.transition(ctx, leadID, model.LeadRejected); err != nil {
		return err
	}
	zap.L().Info("lead rejected",
		zap.String("lead_id", leadID),
		zap.String("reason", reason))
	return nil
}

func (m *Manager) transition(ctx context.Context, leadID string, to model.LeadStatus) error {
	l, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return eris.Wrap(err, "lead: get")
	}
	if l == nil {
		return eris.Errorf("lead: %s not found", leadID)
	}
	if !model.CanTransitionLead(l.Status, to) {
		return eris.Errorf("lead: illegal transition %s -> %s for %s", l.Status, to, leadID)
	}
	return m.store.UpdateLeadStatus(ctx, leadID, l.Status, to)
}

// Convert links a lead to a customer record. Converting an already-converted
// lead is a no-op that returns the existing linkage.
func (m *Manager) Convert(ctx context.Context, leadID, customerID string) (*model.Lead, error) {
	l, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, eris.Wrap(err, "lead: get")
	}
	if l == nil {
		return nil, eris.Errorf("lead: %s not found", leadID)
	}
	if l.Status == model.LeadConverted {
		zap.L().Info("lead already converted",
			zap.String("lead_id", leadID),
			zap.String("customer_id", l.CustomerID))
		return l, nil
	}
	if !model.CanTransitionLead(l.Status, model.LeadConverted) {
		return nil, eris.Errorf("lead: cannot convert a %s lead", l.Status)
	}
	converted, err := m.store.ConvertLead(ctx, leadID, customerID)
	if err != nil {
		return nil, eris.Wrap(err, "lead: convert")
	}
	return converted, nil
}

// AttachRegistryData stores an enrichment blob against a lead. The blob must
// be valid JSON; writers own its schema.
func (m *Manager) AttachRegistryData(ctx context.Context, leadID string, blob []byte) error {
	if !json.Valid(blob) {
		return eris.New("lead: registry blob is not valid JSON")
	}
	return m.store.AttachRegistryData(ctx, leadID, blob)
}

// Enrich looks the lead's company up in the Companies House register and
// attaches the full profile. The best match is the search hit whose
// normalized title equals the lead's normalized name, falling back to the
// top hit.
func (m *Manager) Enrich(ctx context.Context, leadID string) (*companieshouse.CompanyProfile, error) {
	if m.registry == nil {
		return nil, eris.New("lead: no registry client configured")
	}
	l, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, eris.Wrap(err, "lead: get")
	}
	if l == nil {
		return nil, eris.Errorf("lead: %s not found", leadID)
	}

	res, err := m.registry.SearchCompanies(ctx, l.CompanyName, 5)
	if err != nil {
		return nil, eris.Wrap(err, "lead: registry search")
	}
	if len(res.Items) == 0 {
		return nil, eris.Errorf("lead: no registry match for %q", l.CompanyName)
	}

	item := res.Items[0]
	for _, it := range res.Items {
		if dedup.NormalizeName(it.Title) == l.NormName {
			item = it
			break
		}
	}

	profile, err := m.registry.GetCompany(ctx, item.CompanyNumber)
	if err != nil {
		return nil, eris.Wrap(err, "lead: registry profile")
	}

	blob, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "lead: marshal registry profile")
	}
	if err := m.store.AttachRegistryData(ctx, leadID, blob); err != nil {
		return nil, err
	}

	zap.L().Info("lead enriched from registry",
		zap.String("lead_id", leadID),
		zap.String("company_number", profile.CompanyNumber),
		zap.String("company_status", profile.CompanyStatus))
	return profile, nil
}
