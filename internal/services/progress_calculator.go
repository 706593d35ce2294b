package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// DisplayAggregation selects how the aggregate display percentage is
// derived from per-criterion percentages. Completion is always the AND of
// per-criterion satisfaction; this only affects the number shown.
type DisplayAggregation string

const (
	DisplayAverage DisplayAggregation = "average"
	DisplayMinimum DisplayAggregation = "minimum"
)

// ProgressOptions tunes display-only behavior of the calculator
type ProgressOptions struct {
	DisplayAggregation DisplayAggregation
}

// ProgressCalculator computes campaign progress from the campaign
// configuration and its active policy links. The calculation is a pure
// function of persisted state, so recalculating twice with unchanged data
// yields identical results and concurrent triggers can safely race.
type ProgressCalculator struct {
	linkRepo repositories.PolicyLinkRepository
	opts     ProgressOptions
}

// NewProgressCalculator creates a new ProgressCalculator
func NewProgressCalculator(linkRepo repositories.PolicyLinkRepository, opts ProgressOptions) *ProgressCalculator {
	if opts.DisplayAggregation == "" {
		opts.DisplayAggregation = DisplayAverage
	}
	return &ProgressCalculator{linkRepo: linkRepo, opts: opts}
}

// CalculateProgress evaluates every criterion of the campaign (or the
// implicit criterion derived from its target/type) against the eligible
// policy set and aggregates the outcome.
//
// Policies linked before the campaign was accepted never count, and a
// campaign that has not been accepted reports zero progress regardless of
// what is linked to it.
func (c *ProgressCalculator) CalculateProgress(ctx context.Context, campaign *models.Campaign) (*models.ProgressResult, error) {
	result := &models.ProgressResult{
		CampaignID:   campaign.ID,
		Criteria:     []models.CriterionResult{},
		CalculatedAt: time.Now(),
	}

	if !campaign.IsAccepted() {
		return result, nil
	}

	linked, err := c.linkRepo.FindActiveByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy links for campaign %s: %w", campaign.ID.Hex(), err)
	}

	eligible := filterEligible(linked, campaign.AcceptedAt)

	criteria := campaign.Criteria
	if len(criteria) == 0 {
		criteria = []models.Criterion{campaign.ImplicitCriterion()}
	}

	allSatisfied := true
	matched := make(map[primitive.ObjectID]models.Policy)
	for i, criterion := range criteria {
		cr := evaluateSafely(campaign.ID, i, criterion, eligible)
		if !cr.IsSatisfied {
			allSatisfied = false
		}
		for _, lp := range eligible {
			if criterionMatches(criterion, lp.Policy) {
				matched[lp.Policy.ID] = lp.Policy
			}
		}
		cr.Percentage = clampPercentage(cr.Percentage)
		result.Criteria = append(result.Criteria, cr)
	}

	result.IsCompleted = allSatisfied
	result.ProgressPercentage = clampPercentage(c.aggregatePercentage(result.Criteria))
	result.TotalPolicies = len(matched)
	for _, p := range matched {
		result.CurrentValue += p.PremiumValue
	}

	return result, nil
}

// evaluateSafely shields sibling criteria from a panic in one evaluation.
// A criterion that blows up degrades to zero progress instead of taking the
// whole campaign's calculation down.
func evaluateSafely(campaignID primitive.ObjectID, index int, criterion models.Criterion, eligible []models.LinkedPolicy) (cr models.CriterionResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Criterion evaluation panicked, falling back to zero progress",
				"campaignId", campaignID.Hex(), "criterionIndex", index, "panic", r)
			cr = models.CriterionResult{
				Criterion:        criterion,
				TargetValue:      criterion.TargetValue,
				MatchingPolicies: []primitive.ObjectID{},
			}
		}
	}()
	return EvaluateCriterion(criterion, eligible)
}

// filterEligible drops links created before the acceptance instant. This is
// the backdating guard: registering policies and accepting the campaign
// afterwards must not inflate progress.
func filterEligible(linked []models.LinkedPolicy, acceptedAt time.Time) []models.LinkedPolicy {
	eligible := make([]models.LinkedPolicy, 0, len(linked))
	for _, lp := range linked {
		if lp.Link.LinkedAt.Before(acceptedAt) {
			continue
		}
		eligible = append(eligible, lp)
	}
	return eligible
}

func (c *ProgressCalculator) aggregatePercentage(criteria []models.CriterionResult) float64 {
	if len(criteria) == 0 {
		return 0
	}
	if c.opts.DisplayAggregation == DisplayMinimum {
		min := criteria[0].Percentage
		for _, cr := range criteria[1:] {
			if cr.Percentage < min {
				min = cr.Percentage
			}
		}
		return min
	}
	var sum float64
	for _, cr := range criteria {
		sum += cr.Percentage
	}
	return sum / float64(len(criteria))
}

func clampPercentage(p float64) float64 {
	if p > models.MaxDisplayPercentage {
		return models.MaxDisplayPercentage
	}
	return p
}
