package dedup

import (
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// MatchLayer names which layer of the chain produced a duplicate match.
type MatchLayer string

const (
	MatchDomain   MatchLayer = "domain"
	MatchNameArea MatchLayer = "name_area"
)

// Resolution is the outcome of resolving one candidate.
type Resolution struct {
	// Duplicate is false when the candidate is new to the population.
	Duplicate bool
	// OfID and OfSource identify the matched record when Duplicate.
	OfID     string
	OfSource Source
	// MatchedBy records which layer short-circuited the chain.
	MatchedBy MatchLayer
}

// Keys computes the identity keys for a candidate. The same derivation is
// used when persisting a lead so index entries and stored keys agree.
func Keys(companyName, website, postcode string, inwardLen int) (normDomain, normName, outwardCode string) {
	return NormalizeDomain(website), NormalizeName(companyName), OutwardCode(postcode, inwardLen)
}

// Resolver runs the layered identity chain against an index of the
// existing population. Layers short-circuit in order: a shared website
// domain is near-certain proof of identity; name plus outward code trades
// a few false positives for not flooding the pipeline with near-duplicates.
type Resolver struct {
	index     *Index
	inwardLen int
}

// NewResolver wraps an index. inwardLen is the trailing inward-code length
// used when deriving outward codes (3 for UK postcodes).
func NewResolver(index *Index, inwardLen int) *Resolver {
	return &Resolver{index: index, inwardLen: inwardLen}
}

// Resolve decides whether a validated candidate is new or a duplicate of an
// existing lead or customer.
func (r *Resolver) Resolve(c model.Candidate) Resolution {
	normDomain, normName, outward := Keys(c.CompanyName, c.Website, c.Postcode, r.inwardLen)

	// Layer 1: exact normalized domain.
	if normDomain != "" {
		if e, ok := r.index.lookupDomain(normDomain); ok {
			zap.L().Debug("dedup: matched by domain",
				zap.String("domain", normDomain),
				zap.String("matched_id", e.ID),
				zap.String("source", string(e.Source)),
			)
			return Resolution{Duplicate: true, OfID: e.ID, OfSource: e.Source, MatchedBy: MatchDomain}
		}
	}

	// Layer 2: normalized name + outward code.
	if key := NameAreaKey(normName, outward); key != "" {
		if e, ok := r.index.lookupNameArea(key); ok {
			zap.L().Debug("dedup: matched by name and area",
				zap.String("name", normName),
				zap.String("outward_code", outward),
				zap.String("matched_id", e.ID),
				zap.String("source", string(e.Source)),
			)
			return Resolution{Duplicate: true, OfID: e.ID, OfSource: e.Source, MatchedBy: MatchNameArea}
		}
	}

	return Resolution{}
}

// Observe records a newly created lead's keys so later candidates in the
// same run resolve against it.
func (r *Resolver) Observe(leadID string, companyName, website, postcode string) {
	normDomain, normName, outward := Keys(companyName, website, postcode, r.inwardLen)
	r.index.Add(Entry{
		ID:          leadID,
		Source:      SourceLead,
		NormDomain:  normDomain,
		NormName:    normName,
		OutwardCode: outward,
	})
}
