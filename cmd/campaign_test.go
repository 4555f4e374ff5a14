package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccs-group/leadgen-cli/internal/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Campaign: config.CampaignConfig{
			DefaultRadiusMiles: 20,
			DefaultMaxResults:  100,
		},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestCampaignFromFlags(t *testing.T) {
	setTestConfig(t)
	createName = "norwich msps"
	createPromptType = "it_msp_expansion"
	createPostcode = "NR1 1AA"
	createRadius = 0
	createMax = 0
	createFile = ""
	t.Cleanup(func() { createName, createPostcode = "", "" })

	c, err := campaignFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "norwich msps", c.Name)
	assert.Equal(t, 20, c.RadiusMiles)
	assert.Equal(t, 100, c.MaxResults)
}

func TestCampaignFromFlags_MissingName(t *testing.T) {
	setTestConfig(t)
	createName = ""
	createFile = ""

	_, err := campaignFromFlags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")
}

func TestCampaignFromFlags_InvalidSpec(t *testing.T) {
	setTestConfig(t)
	createName = "no postcode"
	createPromptType = "education"
	createPostcode = ""
	createFile = ""
	t.Cleanup(func() { createName = "" })

	_, err := campaignFromFlags()
	require.Error(t, err)
}

func TestStuckCutoff(t *testing.T) {
	assert.Equal(t, 30*time.Minute, stuckCutoff(config.CampaignConfig{StuckAfterMins: 30}))
	assert.Equal(t, time.Hour, stuckCutoff(config.CampaignConfig{}))
}
