package model

import "time"

// CampaignStatus is the lifecycle state of a discovery campaign.
type CampaignStatus string

const (
	CampaignCreated            CampaignStatus = "created"
	CampaignRunning            CampaignStatus = "running"
	CampaignCompleted          CampaignStatus = "completed"
	CampaignPartiallyCompleted CampaignStatus = "partially_completed"
	CampaignFailed             CampaignStatus = "failed"
)

// campaignTransitions is the closed set of legal status transitions. A
// campaign never leaves a terminal state; corrective re-runs create a new
// campaign instead.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignCreated: {CampaignRunning, CampaignFailed},
	CampaignRunning: {CampaignCompleted, CampaignPartiallyCompleted, CampaignFailed},
}

// CanTransition reports whether moving from one campaign status to another is
// legal.
func CanTransition(from, to CampaignStatus) bool {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s CampaignStatus) IsTerminal() bool {
	return len(campaignTransitions[s]) == 0
}

// DiscoveryMode identifies which discovery tier produced a payload.
type DiscoveryMode string

const (
	ModeSearchAugmented DiscoveryMode = "search_augmented"
	ModeKnowledgeOnly   DiscoveryMode = "knowledge_only"
)

// CampaignCounters tallies per-candidate outcomes for a single run. Counters
// only ever increase during a run, and together they account for every
// candidate discovery returned:
//
//	TotalCandidates == LeadsCreated + DuplicatesSkipped + ValidationRejects + PersistenceFailures
type CampaignCounters struct {
	TotalCandidates     int `json:"total_candidates" db:"total_candidates"`
	LeadsCreated        int `json:"leads_created" db:"leads_created"`
	DuplicatesSkipped   int `json:"duplicates_skipped" db:"duplicates_skipped"`
	ValidationRejects   int `json:"validation_rejects" db:"validation_rejects"`
	PersistenceFailures int `json:"persistence_failures" db:"persistence_failures"`
}

// Consistent reports whether the counter identity holds.
func (c CampaignCounters) Consistent() bool {
	return c.TotalCandidates == c.LeadsCreated+c.DuplicatesSkipped+c.ValidationRejects+c.PersistenceFailures
}

// Campaign is one configured, bounded invocation of the discovery pipeline.
type Campaign struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	// Search intent.
	PromptType     string   `json:"prompt_type" db:"prompt_type"`
	CustomCriteria string   `json:"custom_criteria,omitempty" db:"custom_criteria"`
	Postcode       string   `json:"postcode" db:"postcode"`
	RadiusMiles    int      `json:"radius_miles" db:"radius_miles"`
	MaxResults     int      `json:"max_results" db:"max_results"`
	IncludeSectors []string `json:"include_sectors,omitempty" db:"include_sectors"`
	ExcludeSectors []string `json:"exclude_sectors,omitempty" db:"exclude_sectors"`

	// Behavior toggles.
	IncludeExistingCustomers bool          `json:"include_existing_customers" db:"include_existing_customers"`
	MinCompanySize           int           `json:"min_company_size,omitempty" db:"min_company_size"`
	ModePreference           DiscoveryMode `json:"mode_preference,omitempty" db:"mode_preference"`

	// Outcome.
	Status        CampaignStatus   `json:"status" db:"status"`
	FailureReason string           `json:"failure_reason,omitempty" db:"failure_reason"`
	Counters      CampaignCounters `json:"counters"`

	// Discovery provenance, retained verbatim for post-hoc debugging.
	ModeUsed          DiscoveryMode `json:"mode_used,omitempty" db:"mode_used"`
	LowConfidenceNote string        `json:"low_confidence_note,omitempty" db:"low_confidence_note"`
	RawOutput         string        `json:"raw_output,omitempty" db:"raw_output"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
