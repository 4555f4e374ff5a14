package campaign

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
)

const stuckReason = "worker crashed or was interrupted mid-run"

// RepairStuck fails campaigns left in Running longer than olderThan. A
// campaign only stays Running when its worker died between the start
// transition and the terminal write, so there is nothing to resume; the
// operator re-creates the campaign instead.
func (r *Runner) RepairStuck(ctx context.Context, olderThan time.Duration) ([]model.Campaign, error) {
	stuck, err := r.store.FindStuckCampaigns(ctx, olderThan)
	if err != nil {
		return nil, eris.Wrap(err, "campaign: find stuck")
	}

	var repaired []model.Campaign
	for _, c := range stuck {
		result := store.CampaignResult{
			Status:        model.CampaignFailed,
			FailureReason: stuckReason,
			ModeUsed:      c.ModeUsed,
			RawOutput:     c.RawOutput,
		}
		if err := r.store.FinishCampaign(ctx, c.ID, result); err != nil {
			// Another repairer may have won the guard; skip, don't abort.
			zap.L().Warn("stuck campaign repair skipped",
				zap.String("campaign_id", c.ID),
				zap.Error(err))
			continue
		}
		zap.L().Info("stuck campaign failed by repair",
			zap.String("campaign_id", c.ID),
			zap.Duration("older_than", olderThan))
		repaired = append(repaired, c)
	}
	return repaired, nil
}
