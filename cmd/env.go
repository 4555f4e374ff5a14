package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/campaign"
	"github.com/ccs-group/leadgen-cli/internal/config"
	"github.com/ccs-group/leadgen-cli/internal/discovery"
	"github.com/ccs-group/leadgen-cli/internal/lead"
	"github.com/ccs-group/leadgen-cli/internal/store"
	"github.com/ccs-group/leadgen-cli/internal/validate"
	anthropicpkg "github.com/ccs-group/leadgen-cli/pkg/anthropic"
	"github.com/ccs-group/leadgen-cli/pkg/companieshouse"
	"github.com/ccs-group/leadgen-cli/pkg/perplexity"
	"github.com/ccs-group/leadgen-cli/pkg/postcodes"
)

// appEnv holds the initialized store and services shared by the campaign,
// leads, and serve commands.
type appEnv struct {
	Store  store.Store
	Runner *campaign.Runner
	Leads  *lead.Manager
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, API clients, and pipeline services. Callers
// should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	disc, err := initDiscovery()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	validator, err := validate.New(cfg.Validate)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	leadOpts := []lead.Option{
		lead.WithGeocoder(postcodes.NewClient(postcodes.WithBaseURL(cfg.Postcodes.BaseURL))),
		lead.WithInwardCodeLen(cfg.Dedup.InwardCodeLen),
		lead.WithValueBands(lead.ValueBands{
			SmallGBP:  cfg.Campaign.ProjectValueSmallGBP,
			MediumGBP: cfg.Campaign.ProjectValueMediumGBP,
			LargeGBP:  cfg.Campaign.ProjectValueLargeGBP,
		}),
	}
	if cfg.CompaniesHouse.Key != "" {
		chOpts := []companieshouse.Option{companieshouse.WithBaseURL(cfg.CompaniesHouse.BaseURL)}
		if cfg.CompaniesHouse.RatePerSec > 0 {
			chOpts = append(chOpts, companieshouse.WithRateLimit(cfg.CompaniesHouse.RatePerSec, cfg.CompaniesHouse.RateBurst))
		}
		leadOpts = append(leadOpts, lead.WithRegistry(companieshouse.NewClient(cfg.CompaniesHouse.Key, chOpts...)))
	} else {
		zap.L().Debug("LEADGEN_COMPANIES_HOUSE_KEY not set, registry enrichment disabled")
	}
	leads := lead.New(st, leadOpts...)

	runner := campaign.NewRunner(st, disc, validator, leads, cfg.Campaign,
		campaign.WithInwardCodeLen(cfg.Dedup.InwardCodeLen))

	return &appEnv{Store: st, Runner: runner, Leads: leads}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadgen.db"
		}
		s, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		s.SetInwardCodeLen(cfg.Dedup.InwardCodeLen)
		st = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		s.SetInwardCodeLen(cfg.Dedup.InwardCodeLen)
		st = s
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	return st, nil
}

// initDiscovery builds the tiered discovery client: search-augmented first,
// knowledge-only fallback. A missing Perplexity key degrades to a single
// knowledge-only tier rather than failing startup.
func initDiscovery() (*discovery.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (LEADGEN_ANTHROPIC_KEY)")
	}

	var tiers []discovery.Tier

	if cfg.Perplexity.Key != "" {
		perplexityClient := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model))
		tiers = append(tiers, discovery.Tier{
			Provider: discovery.NewSearchProvider(perplexityClient, cfg.Perplexity.Model),
			Timeout:  cfg.Discovery.SearchTimeout(),
		})
	} else {
		zap.L().Warn("LEADGEN_PERPLEXITY_KEY not set, search-augmented discovery disabled")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	tiers = append(tiers, discovery.Tier{
		Provider: discovery.NewKnowledgeProvider(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens),
		Timeout:  cfg.Discovery.KnowledgeTimeout(),
	})

	return discovery.NewClient(tiers...), nil
}

// stuckCutoff converts the configured stuck-campaign age to a duration.
func stuckCutoff(c config.CampaignConfig) time.Duration {
	if c.StuckAfterMins <= 0 {
		return time.Hour
	}
	return time.Duration(c.StuckAfterMins) * time.Minute
}
