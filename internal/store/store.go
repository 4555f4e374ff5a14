package store

import (
	"context"
	"time"

	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/model"
)

// CampaignFilter specifies criteria for listing campaigns.
type CampaignFilter struct {
	Status model.CampaignStatus `json:"status,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
	Offset int                  `json:"offset,omitempty"`
}

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	CampaignID string           `json:"campaign_id,omitempty"`
	Status     model.LeadStatus `json:"status,omitempty"`
	MinScore   float64          `json:"min_score,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Offset     int              `json:"offset,omitempty"`
}

// CampaignResult carries everything written when a campaign reaches a
// terminal state. The status guard and the counter write happen in one
// statement so a crash can never leave a terminal campaign with stale
// counters.
type CampaignResult struct {
	Status            model.CampaignStatus
	Counters          model.CampaignCounters
	FailureReason     string
	ModeUsed          model.DiscoveryMode
	LowConfidenceNote string
	RawOutput         string
}

// Store defines the persistence interface for campaigns, leads, and the
// customer population used for deduplication.
type Store interface {
	// Campaigns
	CreateCampaign(ctx context.Context, c *model.Campaign) error
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error)
	// StartCampaign moves Created → Running, guarded on current status.
	StartCampaign(ctx context.Context, id string) error
	// FinishCampaign moves Running → terminal, guarded on current status.
	// FailCreatedCampaign covers the Created → Failed edge (dispatch never
	// happened).
	FinishCampaign(ctx context.Context, id string, result CampaignResult) error
	FailCreatedCampaign(ctx context.Context, id string, reason string) error
	// FindStuckCampaigns returns campaigns left Running longer than the
	// given duration, for operator repair.
	FindStuckCampaigns(ctx context.Context, runningLongerThan time.Duration) ([]model.Campaign, error)

	// Leads. CreateLead is conflict-guarded on the identity keys: when a
	// concurrent writer got there first it reports created=false along
	// with the surviving record.
	CreateLead(ctx context.Context, lead *model.Lead) (created bool, existing *model.Lead, err error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, from, to model.LeadStatus) error
	// ConvertLead is idempotent: converting an already-converted lead
	// returns the existing linkage without error.
	ConvertLead(ctx context.Context, leadID, customerID string) (*model.Lead, error)
	AttachRegistryData(ctx context.Context, leadID string, data []byte) error

	// Identity population
	ListIdentityEntries(ctx context.Context) ([]dedup.Entry, error)
	CreateCustomer(ctx context.Context, c *model.CustomerRef) error
	ListCustomers(ctx context.Context) ([]model.CustomerRef, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
