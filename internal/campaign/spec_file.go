package campaign

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// SpecFile is a YAML campaign definition for repeatable runs. Zero radius
// and max-results fall back to the supplied defaults before validation.
type SpecFile struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description,omitempty"`
	PromptType     string   `yaml:"prompt_type"`
	CustomCriteria string   `yaml:"custom_criteria,omitempty"`
	Postcode       string   `yaml:"postcode"`
	RadiusMiles    int      `yaml:"radius_miles,omitempty"`
	MaxResults     int      `yaml:"max_results,omitempty"`
	IncludeSectors []string `yaml:"include_sectors,omitempty"`
	ExcludeSectors []string `yaml:"exclude_sectors,omitempty"`

	IncludeExistingCustomers bool   `yaml:"include_existing_customers,omitempty"`
	MinCompanySize           int    `yaml:"min_company_size,omitempty"`
	ModePreference           string `yaml:"mode_preference,omitempty"`
}

// Defaults fills campaign fields a spec file may omit.
type Defaults struct {
	RadiusMiles int
	MaxResults  int
}

// LoadSpecFile reads a campaign definition and validates it the same way the
// composer will, so a bad file fails at load time rather than mid-run.
func LoadSpecFile(path string, defaults Defaults) (*model.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "campaign: read spec file %s", path)
	}

	var sf SpecFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, eris.Wrapf(err, "campaign: parse spec file %s", path)
	}

	c := sf.Campaign()
	if c.RadiusMiles == 0 {
		c.RadiusMiles = defaults.RadiusMiles
	}
	if c.MaxResults == 0 {
		c.MaxResults = defaults.MaxResults
	}
	if c.Name == "" {
		return nil, eris.Wrap(ErrInvalidCampaignSpec, "name is required")
	}
	if _, err := Compose(*c); err != nil {
		return nil, err
	}
	return c, nil
}

// Campaign converts the file representation to the domain model.
func (sf SpecFile) Campaign() *model.Campaign {
	return &model.Campaign{
		Name:                     sf.Name,
		Description:              sf.Description,
		PromptType:               sf.PromptType,
		CustomCriteria:           sf.CustomCriteria,
		Postcode:                 sf.Postcode,
		RadiusMiles:              sf.RadiusMiles,
		MaxResults:               sf.MaxResults,
		IncludeSectors:           sf.IncludeSectors,
		ExcludeSectors:           sf.ExcludeSectors,
		IncludeExistingCustomers: sf.IncludeExistingCustomers,
		MinCompanySize:           sf.MinCompanySize,
		ModePreference:           model.DiscoveryMode(sf.ModePreference),
	}
}
