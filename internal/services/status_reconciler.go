package services

import (
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"golang.org/x/exp/slog"
)

// StatusReconciler decides the new lifecycle status of a campaign from its
// freshly calculated progress and its currently persisted state. It never
// guesses: callers must only invoke it with a successfully computed result,
// and on calculation failure the persisted status stays untouched.
type StatusReconciler struct{}

// NewStatusReconciler creates a new StatusReconciler
func NewStatusReconciler() *StatusReconciler {
	return &StatusReconciler{}
}

// Reconcile produces the progress update to persist. Transition rules, in
// priority order:
//
//  1. Not accepted: status is left as-is, no completion or cancellation.
//  2. All criteria satisfied: COMPLETED, stamping achievedAt/achievedValue
//     on the first transition. Window expiry is irrelevant once satisfied.
//  3. Not satisfied and the window has closed: CANCELLED.
//  4. Not satisfied, window open: ACTIVE. A campaign persisted as
//     COMPLETED that no longer satisfies its criteria takes this path too,
//     reverting to ACTIVE with achievedAt/achievedValue cleared. This is
//     the repair route for erroneous completions.
func (r *StatusReconciler) Reconcile(campaign *models.Campaign, result *models.ProgressResult, now time.Time) models.ProgressUpdate {
	update := models.ProgressUpdate{
		CurrentValue:       result.CurrentValue,
		ProgressPercentage: result.ProgressPercentage,
		Status:             campaign.Status,
		AchievedAt:         campaign.AchievedAt,
		AchievedValue:      campaign.AchievedValue,
		LastUpdated:        now,
	}

	if !campaign.IsAccepted() {
		return update
	}

	switch {
	case result.IsCompleted:
		update.Status = models.CampaignStatusCompleted
		if campaign.Status != models.CampaignStatusCompleted {
			achievedAt := now
			update.AchievedAt = &achievedAt
			update.AchievedValue = result.CurrentValue
		}

	case campaign.WindowExpired(now):
		update.Status = models.CampaignStatusCancelled
		if campaign.Status == models.CampaignStatusCompleted {
			// Leaving COMPLETED in any direction invalidates the
			// achievement stamp.
			update.AchievedAt = nil
			update.AchievedValue = 0
		}

	default:
		update.Status = models.CampaignStatusActive
		if campaign.Status == models.CampaignStatusCompleted {
			slog.Warn("Reverting erroneously completed campaign to active",
				"campaignId", campaign.ID.Hex(),
				"progressPercentage", result.ProgressPercentage)
			update.AchievedAt = nil
			update.AchievedValue = 0
		}
	}

	return update
}
