// Package dedup resolves candidate identity against the existing lead and
// customer population. No single key is reliable on its own, so matching
// layers a near-certain domain check over a name+area heuristic.
package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing company-name tokens that carry no identity.
var legalSuffixes = map[string]bool{
	"ltd":          true,
	"limited":      true,
	"plc":          true,
	"llp":          true,
	"llc":          true,
	"inc":          true,
	"incorporated": true,
	"co":           true,
	"company":      true,
	"group":        true,
	"holdings":     true,
	"uk":           true,
}

// stripMarks builds a transform that removes diacritics after NFD
// decomposition. transform.Chain values carry internal state, so a fresh
// one is built per call rather than shared.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeDomain reduces a website URL to its bare host: scheme, "www."
// prefix, path, and port stripped, lowercased. Returns "" when no usable
// host remains.
func NormalizeDomain(rawURL string) string {
	d := strings.ToLower(strings.TrimSpace(rawURL))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	if !strings.Contains(d, ".") {
		return ""
	}
	return d
}

// NormalizeName case-folds a company name, strips diacritics and
// punctuation, and drops trailing legal suffixes ("Ltd", "Limited", ...).
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks(), name)
	if err != nil {
		folded = name
	}
	// cases.Caser is stateful; never share one across goroutines.
	folded = cases.Fold().String(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '&' || r == '/':
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for len(tokens) > 1 && legalSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}

// OutwardCode returns the leading outward portion of a UK postcode, with
// inwardLen the length of the trailing inward code (3 for standard UK
// postcodes). A postcode too short to carry an inward code is returned
// whole.
func OutwardCode(postcode string, inwardLen int) string {
	pc := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
	if inwardLen <= 0 {
		inwardLen = 3
	}
	if len(pc) <= inwardLen {
		return pc
	}
	return pc[:len(pc)-inwardLen]
}

// NameAreaKey combines a normalized name and outward code into a single
// index key. Empty when the name is empty.
func NameAreaKey(normName, outwardCode string) string {
	if normName == "" {
		return ""
	}
	return normName + "|" + outwardCode
}
