// Package extract pulls structured candidate records out of raw discovery
// output. The producer is instructed to emit JSON but routinely wraps it in
// prose or markdown fences, truncates on token limits, or legitimately
// returns an empty set, so parsing is layered and forgiving.
package extract

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// Outcome classifies an extraction result.
type Outcome int

const (
	// Parsed means the payload yielded one or more candidates.
	Parsed Outcome = iota
	// EmptyResult means the payload was readable but contained no
	// businesses. Legitimate, not an error.
	EmptyResult
	// HardFailure means the payload structure was unrecoverable.
	HardFailure
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case EmptyResult:
		return "empty_result"
	case HardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of extracting one raw payload.
type Result struct {
	Outcome    Outcome
	QueryArea  string
	Candidates []model.Candidate
	// Dropped counts result entries discarded for missing mandatory fields.
	Dropped int
}

// envelope is the expected response shape.
type envelope struct {
	QueryArea string            `json:"query_area"`
	Results   []json.RawMessage `json:"results"`
}

// Extract parses raw discovery output into candidates. Re-extracting the
// same input always yields the same result.
func Extract(raw string) Result {
	text := stripFences(raw)
	if strings.TrimSpace(text) == "" {
		return Result{Outcome: HardFailure}
	}

	// Fast path: the whole cleaned text is the envelope.
	if env, ok := parseEnvelope(text); ok {
		return buildResult(env)
	}

	// Recovery: find the largest balanced brace region that mentions a
	// results key; this handles payloads surrounded by commentary.
	if region, ok := findResultsRegion(text); ok {
		if env, ok := parseEnvelope(region); ok {
			return buildResult(env)
		}
	}

	// A bare JSON array of result entries, without the envelope.
	if arr, ok := findBareArray(text); ok {
		env := envelope{Results: arr}
		return buildResult(env)
	}

	// Valid JSON with no results key anywhere: the producer answered in a
	// shape we recognize as structured but found nothing. Treat as empty,
	// not malformed.
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err == nil {
		zap.L().Warn("extract: payload parsed but carried no results key")
		return Result{Outcome: EmptyResult}
	}

	return Result{Outcome: HardFailure}
}

func buildResult(env envelope) Result {
	res := Result{QueryArea: env.QueryArea}

	for i, raw := range env.Results {
		var c model.Candidate
		if err := json.Unmarshal(raw, &c); err != nil {
			zap.L().Warn("extract: dropping malformed result entry",
				zap.Int("index", i), zap.Error(err))
			res.Dropped++
			continue
		}
		if strings.TrimSpace(c.CompanyName) == "" || strings.TrimSpace(c.Postcode) == "" {
			zap.L().Warn("extract: dropping entry missing mandatory field",
				zap.Int("index", i),
				zap.String("company_name", c.CompanyName),
				zap.String("postcode", c.Postcode))
			res.Dropped++
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}

	if len(res.Candidates) == 0 {
		res.Outcome = EmptyResult
		return res
	}
	res.Outcome = Parsed
	return res
}

// parseEnvelope attempts a strict envelope parse. A parse that succeeds but
// has no results key at all is rejected so the caller can keep scanning.
func parseEnvelope(text string) (envelope, bool) {
	probe := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return envelope{}, false
	}
	if _, hasResults := probe["results"]; !hasResults {
		return envelope{}, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return envelope{}, false
	}
	return env, true
}

// stripFences removes surrounding markdown code-fence delimiters.
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	return strings.TrimSpace(text)
}

// findResultsRegion scans for the largest balanced {...} region whose body
// contains a "results" key.
func findResultsRegion(text string) (string, bool) {
	var best string

	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end, ok := matchBrace(text, start)
		if !ok {
			continue
		}
		region := text[start : end+1]
		if strings.Contains(region, `"results"`) && len(region) > len(best) {
			best = region
		}
		// Skip past this balanced region; nested opens were covered by it.
		start = end
	}

	return best, best != ""
}

// matchBrace returns the index of the brace closing the one at start,
// ignoring braces inside JSON string literals.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// findBareArray handles producers that skip the envelope and emit the
// results array directly.
func findBareArray(text string) ([]json.RawMessage, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &arr); err != nil {
		return nil, false
	}
	return arr, true
}
