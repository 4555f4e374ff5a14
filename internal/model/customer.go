package model

// CustomerRef is the minimal read-only projection of an existing CRM customer
// that the deduplicator matches candidates against. The pipeline never writes
// customer records; conversion is a separate explicit operation.
type CustomerRef struct {
	ID                 string `json:"id" db:"id"`
	CompanyName        string `json:"company_name" db:"company_name"`
	Postcode           string `json:"postcode" db:"postcode"`
	WebsiteDomain      string `json:"website_domain,omitempty" db:"website_domain"`
	RegistrationNumber string `json:"registration_number,omitempty" db:"registration_number"`
}
