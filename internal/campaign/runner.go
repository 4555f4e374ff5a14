package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccs-group/leadgen-cli/internal/config"
	"github.com/ccs-group/leadgen-cli/internal/dedup"
	"github.com/ccs-group/leadgen-cli/internal/discovery"
	"github.com/ccs-group/leadgen-cli/internal/extract"
	"github.com/ccs-group/leadgen-cli/internal/lead"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/resilience"
	"github.com/ccs-group/leadgen-cli/internal/store"
	"github.com/ccs-group/leadgen-cli/internal/validate"
)

// Discoverer is the discovery client surface the runner needs.
type Discoverer interface {
	Discover(ctx context.Context, req discovery.Request) (*discovery.RawOutput, error)
}

// Runner executes one campaign from Created to a terminal state.
type Runner struct {
	store     store.Store
	disc      Discoverer
	validator *validate.Validator
	leads     *lead.Manager
	cfg       config.CampaignConfig
	inwardLen int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInwardCodeLen overrides the inward code length used when building the
// in-run identity index.
func WithInwardCodeLen(n int) RunnerOption {
	return func(r *Runner) { r.inwardLen = n }
}

// NewRunner builds a campaign runner.
func NewRunner(st store.Store, disc Discoverer, v *validate.Validator, leads *lead.Manager, cfg config.CampaignConfig, opts ...RunnerOption) *Runner {
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 5
	}
	r := &Runner{store: st, disc: disc, validator: v, leads: leads, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const lowConfidenceNote = "search-augmented mode unavailable; results produced by knowledge-only model"

// Run executes the campaign synchronously and returns its terminal status.
// Re-running a terminal campaign is an error; corrective re-runs are new
// campaigns.
func (r *Runner) Run(ctx context.Context, campaignID string) (model.CampaignStatus, error) {
	c, err := r.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return "", eris.Wrap(err, "campaign: load")
	}
	if c == nil {
		return "", eris.Errorf("campaign: %s not found", campaignID)
	}
	if c.Status != model.CampaignCreated {
		return c.Status, eris.Errorf("campaign: %s is %s, only created campaigns can run", campaignID, c.Status)
	}

	// A spec that cannot compose never dispatches, so the campaign fails
	// from Created rather than Running.
	req, err := Compose(*c)
	if err != nil {
		if failErr := r.store.FailCreatedCampaign(ctx, campaignID, err.Error()); failErr != nil {
			zap.L().Error("failed to record invalid spec", zap.Error(failErr))
		}
		return model.CampaignFailed, err
	}

	// The Running transition is persisted before any external call so a
	// crash mid-discovery is observable as a stuck campaign.
	if err := r.store.StartCampaign(ctx, campaignID); err != nil {
		return c.Status, eris.Wrap(err, "campaign: start")
	}

	log := zap.L().With(zap.String("campaign_id", campaignID), zap.String("prompt_type", c.PromptType))
	log.Info("campaign started",
		zap.String("postcode", c.Postcode),
		zap.Int("radius_miles", c.RadiusMiles),
		zap.Int("max_results", c.MaxResults))

	raw, err := r.disc.Discover(ctx, req)
	if err != nil {
		reason := "discovery failed: " + eris.Cause(err).Error()
		if ctx.Err() != nil {
			reason = "cancelled during discovery"
		}
		return r.fail(ctx, campaignID, reason, model.CampaignCounters{}, nil)
	}

	res := extract.Extract(raw.Text)
	if res.Outcome == extract.HardFailure {
		return r.fail(ctx, campaignID, "discovery output could not be parsed", model.CampaignCounters{}, raw)
	}
	if res.Dropped > 0 {
		log.Warn("discovery entries dropped during extraction", zap.Int("dropped", res.Dropped))
	}

	counters, err := r.consume(ctx, c, res.Candidates)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return r.fail(ctx, campaignID, "cancelled mid-run", counters, raw)
	}

	status := model.CampaignCompleted
	if counters.PersistenceFailures > 0 {
		status = model.CampaignPartiallyCompleted
	}

	result := store.CampaignResult{
		Status:    status,
		Counters:  counters,
		ModeUsed:  raw.ModeUsed,
		RawOutput: raw.Text,
	}
	if raw.LowConfidence {
		result.LowConfidenceNote = lowConfidenceNote
	}
	if err := r.store.FinishCampaign(ctx, campaignID, result); err != nil {
		return "", eris.Wrap(err, "campaign: finish")
	}

	log.Info("campaign finished",
		zap.String("status", string(status)),
		zap.String("mode_used", string(raw.ModeUsed)),
		zap.Int("total_candidates", counters.TotalCandidates),
		zap.Int("leads_created", counters.LeadsCreated),
		zap.Int("duplicates_skipped", counters.DuplicatesSkipped),
		zap.Int("validation_rejects", counters.ValidationRejects),
		zap.Int("persistence_failures", counters.PersistenceFailures))
	return status, nil
}

// consume fans candidates out across workers: validate, resolve against the
// identity population, and materialize new ones as leads. Per-candidate
// failures are counted, never fatal.
func (r *Runner) consume(ctx context.Context, c *model.Campaign, candidates []model.Candidate) (model.CampaignCounters, error) {
	counters := model.CampaignCounters{TotalCandidates: len(candidates)}
	if len(candidates) == 0 {
		return counters, nil
	}

	resolver, err := r.buildResolver(ctx, c)
	if err != nil {
		return counters, err
	}

	// Distance annotation is best-effort; a geocoder outage never blocks
	// lead creation.
	origin, err := r.leads.Origin(ctx, c.Postcode)
	if err != nil {
		zap.L().Warn("campaign center geocode failed, distances skipped", zap.Error(err))
	}

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    r.cfg.PersistRetries,
		InitialBackoff: time.Duration(r.cfg.PersistBackoffMS) * time.Millisecond,
		ShouldRetry:    func(error) bool { return true },
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.cfg.WorkerConcurrency)

	for _, cand := range candidates {
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				counters.PersistenceFailures++
				mu.Unlock()
				return nil
			}

			valid, reason := r.validator.Validate(cand, c.ExcludeSectors)
			if reason != validate.RejectNone {
				zap.L().Info("candidate rejected",
					zap.String("company", cand.CompanyName),
					zap.String("reason", string(reason)))
				mu.Lock()
				counters.ValidationRejects++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			resolution := resolver.Resolve(valid)
			mu.Unlock()
			if resolution.Duplicate {
				mu.Lock()
				counters.DuplicatesSkipped++
				mu.Unlock()
				return nil
			}

			var created bool
			var persisted *model.Lead
			err := resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
				var err error
				created, persisted, err = r.leads.CreateFromCandidate(ctx, c.ID, valid, origin)
				return err
			})
			if err != nil {
				zap.L().Error("lead persistence failed after retries",
					zap.String("company", valid.CompanyName),
					zap.Error(err))
				mu.Lock()
				counters.PersistenceFailures++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			if created {
				counters.LeadsCreated++
				resolver.Observe(persisted.ID, valid.CompanyName, valid.Website, valid.Postcode)
			} else {
				// Conflict-guarded insert lost a race with a concurrent
				// campaign; the survivor stands.
				counters.DuplicatesSkipped++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return counters, nil
}

// buildResolver snapshots the lead and customer population into an in-memory
// identity index. Customers are excluded from the index when the campaign
// explicitly allows rediscovering existing customers.
func (r *Runner) buildResolver(ctx context.Context, c *model.Campaign) (*dedup.Resolver, error) {
	entries, err := r.store.ListIdentityEntries(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "campaign: load identity population")
	}

	idx := dedup.NewIndex()
	for _, e := range entries {
		if c.IncludeExistingCustomers && e.Source == dedup.SourceCustomer {
			continue
		}
		idx.Add(e)
	}
	return dedup.NewResolver(idx, r.inwardLen), nil
}

// fail records a terminal failure, preserving counters accumulated so far
// and the raw payload when discovery produced one.
func (r *Runner) fail(ctx context.Context, campaignID, reason string, counters model.CampaignCounters, raw *discovery.RawOutput) (model.CampaignStatus, error) {
	result := store.CampaignResult{
		Status:        model.CampaignFailed,
		Counters:      counters,
		FailureReason: reason,
	}
	if raw != nil {
		result.ModeUsed = raw.ModeUsed
		result.RawOutput = raw.Text
		if raw.LowConfidence {
			result.LowConfidenceNote = lowConfidenceNote
		}
	}

	// The terminal write must land even when the run context is already
	// cancelled.
	finishCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		finishCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	if err := r.store.FinishCampaign(finishCtx, campaignID, result); err != nil {
		return "", eris.Wrap(err, "campaign: record failure")
	}

	zap.L().Warn("campaign failed",
		zap.String("campaign_id", campaignID),
		zap.String("reason", reason))
	return model.CampaignFailed, nil
}
