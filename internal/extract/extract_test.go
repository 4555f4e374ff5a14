package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FencedPayloadWithProse(t *testing.T) {
	raw := "Here are the results:\n```json\n{\"query_area\":\"LE1\",\"results\":[{\"company_name\":\"Acme Ltd\",\"postcode\":\"LE1 1AA\",\"website\":\"https://acme.co.uk\",\"lead_score\":80}]}\n```"

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, "LE1", res.QueryArea)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Acme Ltd", res.Candidates[0].CompanyName)
	assert.Equal(t, "LE1 1AA", res.Candidates[0].Postcode)
	assert.Equal(t, float64(80), res.Candidates[0].LeadScore)
}

func TestExtract_CleanEmptyEnvelope(t *testing.T) {
	res := Extract(`{"query_area":"LE1","results":[]}`)
	assert.Equal(t, EmptyResult, res.Outcome)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "LE1", res.QueryArea)
}

func TestExtract_NoJSONAtAll(t *testing.T) {
	res := Extract("I could not find any businesses.")
	assert.Equal(t, HardFailure, res.Outcome)
}

func TestExtract_EmptyInput(t *testing.T) {
	assert.Equal(t, HardFailure, Extract("").Outcome)
	assert.Equal(t, HardFailure, Extract("   \n  ").Outcome)
}

func TestExtract_PayloadBuriedInCommentary(t *testing.T) {
	raw := `I searched the area and found some candidates. Note that {"irrelevant": true} below is the data:

{"query_area":"NR1","results":[{"company_name":"Broadland IT","postcode":"NR1 1AA"},{"company_name":"Fine City Networks","postcode":"NR2 2BB"}]}

Let me know if you need anything else.`

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, "NR1", res.QueryArea)
}

func TestExtract_BareArray(t *testing.T) {
	raw := `[{"company_name":"Acme Ltd","postcode":"LE1 1AA"},{"company_name":"Beta Ltd","postcode":"LE2 2BB"}]`

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	assert.Len(t, res.Candidates, 2)
	assert.Empty(t, res.QueryArea)
}

func TestExtract_DropsEntriesMissingMandatoryFields(t *testing.T) {
	raw := `{"query_area":"LE1","results":[
		{"company_name":"Acme Ltd","postcode":"LE1 1AA"},
		{"company_name":"","postcode":"LE1 2AB"},
		{"company_name":"No Postcode Ltd"},
		{"company_name":"Beta Ltd","postcode":"LE3 3CC"}
	]}`

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, 2, res.Dropped)
}

func TestExtract_AllEntriesDroppedIsEmpty(t *testing.T) {
	raw := `{"query_area":"LE1","results":[{"company_name":"","postcode":""}]}`

	res := Extract(raw)
	assert.Equal(t, EmptyResult, res.Outcome)
	assert.Equal(t, 1, res.Dropped)
}

func TestExtract_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"query_area\":\"LE1\",\"results\":[{\"company_name\":\"Acme Ltd\",\"postcode\":\"LE1 1AA\"}]}\n```"

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	assert.Len(t, res.Candidates, 1)
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	raw := `Some chatter. {"query_area":"LE1","results":[{"company_name":"Curly {Brace} Ltd","postcode":"LE1 1AA","description":"uses } and { freely"}]} Done.`

	res := Extract(raw)
	require.Equal(t, Parsed, res.Outcome)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Curly {Brace} Ltd", res.Candidates[0].CompanyName)
}

func TestExtract_Idempotent(t *testing.T) {
	raw := `{"query_area":"LE1","results":[{"company_name":"Acme Ltd","postcode":"LE1 1AA","lead_score":55}]}`

	first := Extract(raw)
	second := Extract(raw)
	assert.Equal(t, first, second)
}

func TestExtract_MissingResultsKeyIsEmpty(t *testing.T) {
	// Parseable JSON but no results key anywhere: empty, not malformed.
	res := Extract(`{"query_area":"LE1","businesses":[]}`)
	assert.Equal(t, EmptyResult, res.Outcome)
	assert.Empty(t, res.Candidates)
}
