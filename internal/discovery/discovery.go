// Package discovery executes the external discovery call for a campaign.
// Search-augmented mode runs first with a long timeout; on failure the
// client fails over exactly once to knowledge-only mode. The payload is
// never interpreted here — extraction is a separate concern.
package discovery

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// ErrUnavailable is returned when every discovery tier has failed. Callers
// must not retry automatically: discovery is a paid, non-idempotent call.
var ErrUnavailable = eris.New("discovery: all modes unavailable")

// Request is the composed instruction set sent to a discovery provider.
type Request struct {
	// System frames the provider's role and output contract.
	System string
	// Prompt carries the campaign-specific instruction set.
	Prompt string
	// MaxTokens bounds the response size.
	MaxTokens int
	// Mode pins discovery to tiers of one mode. Empty means the full
	// configured tier order.
	Mode model.DiscoveryMode
}

// RawOutput is the opaque result of one discovery call.
type RawOutput struct {
	Text     string
	ModeUsed model.DiscoveryMode
	// LowConfidence is set when a fallback tier produced the output.
	LowConfidence bool
	// Citations are source URLs reported by search-augmented providers.
	Citations []string

	PromptTokens     int
	CompletionTokens int
}

// Provider executes a single discovery mode.
type Provider interface {
	Mode() model.DiscoveryMode
	Generate(ctx context.Context, req Request) (*RawOutput, error)
}

// Tier pairs a provider with its timeout. Failover policy is the ordered
// tier list itself: new fallback tiers slot in without touching call sites.
type Tier struct {
	Provider Provider
	Timeout  time.Duration
}

// Client walks the tier list until one provider succeeds.
type Client struct {
	tiers []Tier
}

// NewClient creates a discovery client over an ordered tier list.
func NewClient(tiers ...Tier) *Client {
	return &Client{tiers: tiers}
}

// Discover attempts each tier in order and returns the first success.
// Output from any tier after the first is marked low-confidence. Caller
// cancellation stops the walk immediately; it is never treated as a tier
// failure to fail over from.
func (c *Client) Discover(ctx context.Context, req Request) (*RawOutput, error) {
	if len(c.tiers) == 0 {
		return nil, eris.New("discovery: no tiers configured")
	}

	tiers := c.tiersFor(req.Mode)

	var tierErrs []error

	for i, tier := range tiers {
		mode := tier.Provider.Mode()

		tctx, cancel := context.WithTimeout(ctx, tier.Timeout)
		start := time.Now()
		out, err := tier.Provider.Generate(tctx, req)
		cancel()

		if err == nil {
			out.ModeUsed = mode
			out.LowConfidence = i > 0
			zap.L().Info("discovery: mode succeeded",
				zap.String("mode", string(mode)),
				zap.Bool("low_confidence", out.LowConfidence),
				zap.Duration("elapsed", time.Since(start)),
			)
			return out, nil
		}

		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "discovery: cancelled")
		}

		zap.L().Warn("discovery: mode failed",
			zap.String("mode", string(mode)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		tierErrs = append(tierErrs, eris.Wrapf(err, "mode %s", mode))
	}

	err := ErrUnavailable
	for _, te := range tierErrs {
		err = eris.Wrap(err, te.Error())
	}
	return nil, err
}

// tiersFor narrows the walk to tiers of the requested mode. A preference
// with no configured tier degrades to the full order rather than failing a
// campaign over deployment shape.
func (c *Client) tiersFor(mode model.DiscoveryMode) []Tier {
	if mode == "" {
		return c.tiers
	}
	var matched []Tier
	for _, tier := range c.tiers {
		if tier.Provider.Mode() == mode {
			matched = append(matched, tier)
		}
	}
	if len(matched) == 0 {
		zap.L().Warn("discovery: no tier for preferred mode, using configured order",
			zap.String("mode", string(mode)))
		return c.tiers
	}
	return matched
}
