// Package campaign owns the campaign lifecycle: composing discovery requests
// from campaign parameters, running the discover → extract → validate →
// resolve → materialize pipeline, and repairing campaigns abandoned mid-run.
package campaign

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ccs-group/leadgen-cli/internal/discovery"
	"github.com/ccs-group/leadgen-cli/internal/model"
)

// ErrInvalidCampaignSpec is returned when a campaign's search parameters
// cannot produce a meaningful discovery request.
var ErrInvalidCampaignSpec = eris.New("campaign: invalid campaign spec")

const systemPrompt = `You are a B2B lead researcher for a UK structured cabling and IT infrastructure installer. You find real, verifiable UK businesses that are likely to need cabling or network infrastructure work. You only report businesses you can verify exist, and you respond with a single JSON object and nothing else.`

// promptProfiles holds the per-prompt-type instruction bodies. The custom
// type is handled separately because it carries its own criteria text.
var promptProfiles = map[string]string{
	"it_msp_expansion": `Find established IT service providers and MSPs in the area that currently offer IT support but not structured cabling, have technical staff, serve business customers, and would plausibly add cabling work to their portfolio.`,

	"it_msp_gaps": `Find IT/MSP businesses in the area with gaps in their service portfolio: they offer IT support but not infrastructure installation, may be turning away cabling projects, and could refer or subcontract cabling work.`,

	"similar_business": `Find businesses similar to the reference company named in the criteria: similar business model, customer base, company size, and comparable IT infrastructure needs.`,

	"competitor_verification": `Do not find new companies. Verify the specific competitor companies named in the criteria: confirm each exists and is active, and collect its current website, contact details, address and postcode, registration details, and services offered.`,

	"education": `Find educational institutions in the area: schools, colleges, universities, and training centers that may need network upgrades, are planning technology improvements, or are expanding or renovating facilities.`,

	"healthcare": `Find healthcare facilities in the area: hospitals, clinics, medical and dental practices, and veterinary clinics that may need secure network upgrades, are expanding or renovating, or are adopting new healthcare technologies.`,

	"new_businesses": `Find businesses that opened in the area within the last six to twelve months, are setting up new offices or expanding operations, are in technology-reliant industries, and are unlikely to have an established IT provider.`,

	"planning_applications": `Find businesses in the area that have recently submitted planning applications or are otherwise planning construction, renovation, or facility expansion and will need new IT infrastructure fitted.`,

	"manufacturing": `Find manufacturing companies in the area that are modernizing operations, implementing industrial IoT or Industry 4.0 technologies, or expanding facilities, and need industrial-grade networking.`,

	"retail_office": `Find retail and office businesses in the area that are renovating, expanding, or operating multiple locations and need modern networking: point-of-sale connectivity, customer-facing technology, or infrastructure upgrades.`,
}

const outputContract = `Respond with exactly one JSON object, no prose before or after it, in this shape:

{
  "query_area": "<outward postcode area searched>",
  "results": [
    {
      "company_name": "Real Company Name Ltd",
      "website": "https://realcompany.co.uk",
      "description": "Why they would need cabling or network work",
      "address": "Registered or trading address",
      "postcode": "LE1 1AA",
      "business_sector": "IT Services",
      "company_size": "Small (1-10 employees)",
      "contact_name": "Contact person if known",
      "contact_email": "contact@realcompany.co.uk",
      "contact_phone": "01162 345678",
      "lead_score": 75,
      "project_value": "Small | Medium | Large",
      "timeline": "e.g. Within 3 months",
      "source_urls": ["https://source.example"]
    }
  ]
}

Rules:
1. Only include REAL, VERIFIABLE businesses registered in the UK. Never invent companies.
2. Every result must have company_name and a real UK postcode.
3. lead_score is 0-100, your estimate of how likely they are to need services.
4. project_value bands: Small under 10k GBP, Medium 10k-50k GBP, Large over 50k GBP.
5. If you find nothing that qualifies, return an empty results array.`

// Compose turns campaign parameters into a discovery request. Pure: no I/O,
// and the only failure mode is an invalid spec.
func Compose(c model.Campaign) (discovery.Request, error) {
	if err := validateSpec(c); err != nil {
		return discovery.Request{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search criteria:\n- Location: within %d miles of %s\n- Maximum results: %d\n\n",
		c.RadiusMiles, c.Postcode, c.MaxResults)

	b.WriteString(profileFor(c))
	b.WriteString("\n")

	if len(c.IncludeSectors) > 0 {
		fmt.Fprintf(&b, "\nONLY include businesses in these sectors: %s.\n",
			strings.Join(c.IncludeSectors, ", "))
	}
	if len(c.ExcludeSectors) > 0 {
		fmt.Fprintf(&b, "\nNEVER include businesses in these sectors, even if they otherwise match: %s.\n",
			strings.Join(c.ExcludeSectors, ", "))
	}
	if c.MinCompanySize > 0 {
		fmt.Fprintf(&b, "\nOnly include companies with at least %d employees.\n", c.MinCompanySize)
	}

	b.WriteString("\n")
	b.WriteString(outputContract)

	return discovery.Request{
		System: systemPrompt,
		Prompt: b.String(),
		Mode:   c.ModePreference,
	}, nil
}

func validateSpec(c model.Campaign) error {
	if strings.TrimSpace(c.Postcode) == "" {
		return eris.Wrap(ErrInvalidCampaignSpec, "postcode is required")
	}
	if c.RadiusMiles <= 0 {
		return eris.Wrap(ErrInvalidCampaignSpec, "radius must be positive")
	}
	if c.MaxResults <= 0 {
		return eris.Wrap(ErrInvalidCampaignSpec, "max results must be positive")
	}
	if _, ok := promptProfiles[c.PromptType]; !ok {
		if c.PromptType != "custom" && c.PromptType != "" {
			return eris.Wrapf(ErrInvalidCampaignSpec, "unknown prompt type %q", c.PromptType)
		}
		if strings.TrimSpace(c.CustomCriteria) == "" {
			return eris.Wrap(ErrInvalidCampaignSpec, "custom campaigns need custom criteria")
		}
	}
	switch c.ModePreference {
	case "", model.ModeSearchAugmented, model.ModeKnowledgeOnly:
	default:
		return eris.Wrapf(ErrInvalidCampaignSpec, "unknown discovery mode %q", c.ModePreference)
	}
	return nil
}

func profileFor(c model.Campaign) string {
	if body, ok := promptProfiles[c.PromptType]; ok {
		if c.CustomCriteria != "" {
			return body + "\n\nAdditional criteria:\n" + c.CustomCriteria
		}
		return body
	}
	return "Custom search criteria:\n" + c.CustomCriteria
}

// PromptTypes lists the known prompt-type profiles plus custom, for CLI help
// and spec-file validation.
func PromptTypes() []string {
	out := make([]string, 0, len(promptProfiles)+1)
	for name := range promptProfiles {
		out = append(out, name)
	}
	out = append(out, "custom")
	sort.Strings(out)
	return out
}
