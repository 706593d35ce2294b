package services

import (
	"github.com/brokerhub/campaigns-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// criterionMatches reports whether a single policy counts toward a
// criterion. Unset filters match anything; MinValuePerPolicy excludes
// policies below the minimum premium entirely.
func criterionMatches(criterion models.Criterion, policy models.Policy) bool {
	if criterion.PolicyType != models.PolicyTypeAny && criterion.PolicyType != policy.PolicyType {
		return false
	}
	if criterion.ContractType != models.ContractTypeBoth && criterion.ContractType != policy.ContractType {
		return false
	}
	if criterion.MinValuePerPolicy > 0 && policy.PremiumValue < criterion.MinValuePerPolicy {
		return false
	}
	return true
}

// EvaluateCriterion filters the candidate policies through the criterion
// and computes its progress ratio. An unknown target type contributes zero
// progress and is never satisfied, so a misconfigured criterion cannot
// complete a campaign.
func EvaluateCriterion(criterion models.Criterion, candidates []models.LinkedPolicy) models.CriterionResult {
	result := models.CriterionResult{
		Criterion:        criterion,
		TargetValue:      criterion.TargetValue,
		MatchingPolicies: []primitive.ObjectID{},
	}

	var matching []models.Policy
	for _, lp := range candidates {
		if criterionMatches(criterion, lp.Policy) {
			matching = append(matching, lp.Policy)
			result.MatchingPolicies = append(result.MatchingPolicies, lp.Policy.ID)
		}
	}

	switch criterion.TargetType {
	case models.TargetTypeQuantity:
		result.CurrentProgress = float64(len(matching))
	case models.TargetTypeValue:
		for _, p := range matching {
			result.CurrentProgress += p.PremiumValue
		}
	default:
		slog.Warn("Criterion has unknown target type, contributing zero progress",
			"targetType", string(criterion.TargetType))
		return result
	}

	if criterion.TargetValue > 0 {
		result.Percentage = result.CurrentProgress / criterion.TargetValue * 100
	}
	result.IsSatisfied = result.CurrentProgress >= criterion.TargetValue

	return result
}
