package dedup

import "sync"

// Source identifies which population a matched record came from.
type Source string

const (
	SourceLead     Source = "lead"
	SourceCustomer Source = "customer"
)

// Entry is one record's identity keys in the index.
type Entry struct {
	ID          string
	Source      Source
	NormDomain  string
	NormName    string
	OutwardCode string
}

// Index holds identity keys for the existing population. Lookups are keyed
// by normalized domain and by (normalized name, outward code) so resolution
// never scans the full population. Safe for concurrent use: campaign
// workers add newly created leads while others resolve.
type Index struct {
	mu         sync.RWMutex
	byDomain   map[string]Entry
	byNameArea map[string]Entry
}

// NewIndex creates an empty identity index.
func NewIndex() *Index {
	return &Index{
		byDomain:   make(map[string]Entry),
		byNameArea: make(map[string]Entry),
	}
}

// Add inserts a record's identity keys. First writer wins on key collision,
// matching the first-match-wins resolution order.
func (x *Index) Add(e Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if e.NormDomain != "" {
		if _, ok := x.byDomain[e.NormDomain]; !ok {
			x.byDomain[e.NormDomain] = e
		}
	}
	if key := NameAreaKey(e.NormName, e.OutwardCode); key != "" {
		if _, ok := x.byNameArea[key]; !ok {
			x.byNameArea[key] = e
		}
	}
}

// Len returns the number of distinct domain and name-area keys held.
func (x *Index) Len() (domains, nameAreas int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byDomain), len(x.byNameArea)
}

func (x *Index) lookupDomain(domain string) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.byDomain[domain]
	return e, ok
}

func (x *Index) lookupNameArea(key string) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.byNameArea[key]
	return e, ok
}
