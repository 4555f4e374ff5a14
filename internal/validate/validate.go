// Package validate enforces the candidate schema before identity resolution.
// Validation either accepts a cleaned candidate or rejects it with a reason;
// soft problems (bad email, messy phone, out-of-range score) are repaired
// rather than rejected.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/config"
	"github.com/ccs-group/leadgen-cli/internal/model"
)

// RejectReason identifies why a candidate was rejected.
type RejectReason string

const (
	// RejectNone means the candidate was accepted.
	RejectNone RejectReason = ""
	// RejectNameTooShort means the company name is missing or under two characters.
	RejectNameTooShort RejectReason = "company_name_too_short"
	// RejectInvalidPostcode means the postcode does not match the target
	// country's postal-code shape.
	RejectInvalidPostcode RejectReason = "invalid_postcode"
	// RejectNotAURL means the website field does not parse as a URL with a
	// host. Street addresses showing up in the website field is a known
	// producer failure this guards against.
	RejectNotAURL RejectReason = "not_a_url"
	// RejectExcludedCategory means the sector matches a campaign exclude.
	RejectExcludedCategory RejectReason = "excluded_category"
)

// ukPostcodePattern matches full UK postcodes such as "LE1 1AA" or "SW1A 2AA".
const ukPostcodePattern = `^[A-Z]{1,2}[0-9][A-Z0-9]?\s*[0-9][A-Z]{2}$`

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var nonPhoneRe = regexp.MustCompile(`[^\d+]`)

// Validator checks candidates against the schema rules.
type Validator struct {
	scoreMin   float64
	scoreMax   float64
	postcodeRe *regexp.Regexp
}

// New creates a Validator from configuration. An empty postcode pattern
// selects the UK default.
func New(cfg config.ValidateConfig) (*Validator, error) {
	pattern := cfg.PostcodePattern
	if pattern == "" {
		pattern = ukPostcodePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "validate: compile postcode pattern %q", pattern)
	}

	scoreMin, scoreMax := cfg.ScoreMin, cfg.ScoreMax
	if scoreMax <= scoreMin {
		scoreMin, scoreMax = 0, 100
	}

	return &Validator{
		scoreMin:   scoreMin,
		scoreMax:   scoreMax,
		postcodeRe: re,
	}, nil
}

// Validate checks one candidate against the schema and the campaign's
// exclude list. On acceptance it returns the cleaned candidate and
// RejectNone; otherwise the zero candidate and the reject reason.
func (v *Validator) Validate(c model.Candidate, excludeSectors []string) (model.Candidate, RejectReason) {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if len(c.CompanyName) < 2 {
		return model.Candidate{}, RejectNameTooShort
	}

	c.Postcode = strings.ToUpper(strings.TrimSpace(c.Postcode))
	if !v.postcodeRe.MatchString(c.Postcode) {
		return model.Candidate{}, RejectInvalidPostcode
	}

	c.Website = strings.TrimSpace(c.Website)
	if c.Website != "" {
		if _, ok := websiteHost(c.Website); !ok {
			return model.Candidate{}, RejectNotAURL
		}
	}

	for _, excl := range excludeSectors {
		if sectorMatches(c.Sector, excl) {
			return model.Candidate{}, RejectExcludedCategory
		}
	}

	// Out-of-range scores are clamped, not rejected.
	if c.LeadScore < v.scoreMin {
		c.LeadScore = v.scoreMin
	} else if c.LeadScore > v.scoreMax {
		c.LeadScore = v.scoreMax
	}

	c.ContactEmail = cleanEmail(c.ContactEmail)
	c.ContactPhone = cleanPhone(c.ContactPhone)

	if c.Timeline == "" {
		c.Timeline = "Unknown"
	}
	if c.ProjectValue == "" {
		c.ProjectValue = "Unknown"
	}

	return c, RejectNone
}

// websiteHost reports whether raw parses as a URL with a real host. Bare
// domains without a scheme are accepted; anything with spaces or commas
// (street addresses) is not.
func websiteHost(raw string) (string, bool) {
	if strings.ContainsAny(raw, " \t,") {
		return "", false
	}
	probe := raw
	if !strings.Contains(probe, "://") {
		probe = "https://" + probe
	}
	u, err := url.Parse(probe)
	if err != nil || u.Host == "" {
		return "", false
	}
	// A host must have at least one dot (e.g. acme.co.uk); single tokens
	// like "Leicester" are not websites.
	if !strings.Contains(u.Host, ".") {
		return "", false
	}
	return u.Host, true
}

func sectorMatches(sector, exclude string) bool {
	s := strings.ToLower(strings.TrimSpace(sector))
	e := strings.ToLower(strings.TrimSpace(exclude))
	if s == "" || e == "" {
		return false
	}
	return s == e || strings.Contains(s, e)
}

// cleanEmail nulls out emails that fail shape validation rather than
// rejecting the whole candidate.
func cleanEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	if !emailRe.MatchString(email) {
		zap.L().Debug("validate: dropping malformed contact email", zap.String("email", email))
		return ""
	}
	return email
}

// cleanPhone strips formatting and prefixes +44 onto bare national numbers.
func cleanPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	cleaned := nonPhoneRe.ReplaceAllString(phone, "")
	if !strings.HasPrefix(cleaned, "+") && !strings.HasPrefix(cleaned, "0") {
		cleaned = "+44" + cleaned
	}
	return cleaned
}
