package model

// Candidate is an unvalidated, unresolved business entity extracted from raw
// discovery output. Candidates live only for the duration of a single campaign
// run; each one is consumed into a Lead or discarded with a recorded reason.
type Candidate struct {
	CompanyName  string   `json:"company_name"`
	Website      string   `json:"website,omitempty"`
	Description  string   `json:"description,omitempty"`
	Address      string   `json:"address,omitempty"`
	Postcode     string   `json:"postcode"`
	Sector       string   `json:"business_sector,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	ContactName  string   `json:"contact_name,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
	LeadScore    float64  `json:"lead_score"`
	ProjectValue string   `json:"project_value,omitempty"`
	Timeline     string   `json:"timeline,omitempty"`
	SourceURLs   []string `json:"source_urls,omitempty"`
}
