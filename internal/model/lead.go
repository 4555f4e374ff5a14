package model

import (
	"encoding/json"
	"time"
)

// LeadStatus is the qualification state of a persisted lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadRejected  LeadStatus = "rejected"
)

// leadTransitions lists legal status moves. Converted is terminal except that
// converting an already-converted lead is treated as an idempotent no-op by
// the lead manager, not as a transition.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:       {LeadQualified, LeadConverted, LeadRejected},
	LeadQualified: {LeadConverted, LeadRejected},
	LeadRejected:  {LeadQualified},
}

// CanTransitionLead reports whether a lead status change is legal.
func CanTransitionLead(from, to LeadStatus) bool {
	for _, next := range leadTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lead is a persisted, deduplicated business entity awaiting qualification or
// conversion. Leads are never hard-deleted, only marked rejected.
type Lead struct {
	ID         string `json:"id" db:"id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`

	CompanyName  string  `json:"company_name" db:"company_name"`
	Website      string  `json:"website,omitempty" db:"website"`
	Description  string  `json:"description,omitempty" db:"description"`
	Address      string  `json:"address,omitempty" db:"address"`
	Postcode     string  `json:"postcode" db:"postcode"`
	Sector       string  `json:"business_sector,omitempty" db:"business_sector"`
	CompanySize  string  `json:"company_size,omitempty" db:"company_size"`
	ContactName  string  `json:"contact_name,omitempty" db:"contact_name"`
	ContactEmail string  `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone string  `json:"contact_phone,omitempty" db:"contact_phone"`
	LeadScore    float64 `json:"lead_score" db:"lead_score"`

	// Derived at creation time.
	ProjectValueGBP *float64 `json:"project_value_gbp,omitempty" db:"project_value_gbp"`
	Timeline        string   `json:"timeline,omitempty" db:"timeline"`
	DistanceMiles   *float64 `json:"distance_miles,omitempty" db:"distance_miles"`

	// Identity keys used by the deduplicator, stored so the population index
	// can be rebuilt without re-normalizing every record.
	NormDomain  string `json:"-" db:"norm_domain"`
	NormName    string `json:"-" db:"norm_name"`
	OutwardCode string `json:"-" db:"outward_code"`

	Status LeadStatus `json:"status" db:"status"`

	// Conversion linkage. CustomerID is set once by Convert and never changes.
	CustomerID  string     `json:"customer_id,omitempty" db:"customer_id"`
	ConvertedAt *time.Time `json:"converted_at,omitempty" db:"converted_at"`

	// Enrichment blob attached asynchronously by registry writers.
	RegistryData json.RawMessage `json:"registry_data,omitempty" db:"registry_data"`

	SourceURLs []string `json:"source_urls,omitempty" db:"source_urls"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
