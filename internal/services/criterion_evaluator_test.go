package services

import (
	"testing"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func candidates(policies ...models.Policy) []models.LinkedPolicy {
	out := make([]models.LinkedPolicy, 0, len(policies))
	for _, p := range policies {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		out = append(out, models.LinkedPolicy{
			Link:   models.PolicyLink{PolicyID: p.ID, LinkedAt: time.Now(), IsActive: true},
			Policy: p,
		})
	}
	return out
}

func TestEvaluateCriterion_QuantityTarget(t *testing.T) {
	criterion := models.Criterion{
		PolicyType:  models.PolicyTypeAuto,
		TargetType:  models.TargetTypeQuantity,
		TargetValue: 2,
	}
	pool := candidates(
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 1000},
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 2000},
		models.Policy{PolicyType: models.PolicyTypeResidential, PremiumValue: 3000},
	)

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 2.0, result.CurrentProgress)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.IsSatisfied)
	assert.Len(t, result.MatchingPolicies, 2)
}

func TestEvaluateCriterion_ValueTarget(t *testing.T) {
	criterion := models.Criterion{
		TargetType:  models.TargetTypeValue,
		TargetValue: 10000,
	}
	pool := candidates(
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 4000},
		models.Policy{PolicyType: models.PolicyTypeLife, PremiumValue: 3000},
	)

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 7000.0, result.CurrentProgress)
	assert.Equal(t, 70.0, result.Percentage)
	assert.False(t, result.IsSatisfied)
}

func TestEvaluateCriterion_ContractTypeFilter(t *testing.T) {
	criterion := models.Criterion{
		ContractType: models.ContractTypeNew,
		TargetType:   models.TargetTypeQuantity,
		TargetValue:  1,
	}
	pool := candidates(
		models.Policy{PolicyType: models.PolicyTypeAuto, ContractType: models.ContractTypeRenewal, PremiumValue: 500},
	)

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 0.0, result.CurrentProgress)
	assert.False(t, result.IsSatisfied)
	assert.Empty(t, result.MatchingPolicies)
}

func TestEvaluateCriterion_MinValuePerPolicy(t *testing.T) {
	criterion := models.Criterion{
		MinValuePerPolicy: 1000,
		TargetType:        models.TargetTypeQuantity,
		TargetValue:       2,
	}
	pool := candidates(
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 999},
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 1000},
		models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 5000},
	)

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 2.0, result.CurrentProgress)
	assert.True(t, result.IsSatisfied)
}

func TestEvaluateCriterion_EmptyCandidates(t *testing.T) {
	criterion := models.Criterion{
		TargetType:  models.TargetTypeQuantity,
		TargetValue: 5,
	}

	result := EvaluateCriterion(criterion, nil)

	assert.Equal(t, 0.0, result.CurrentProgress)
	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, result.IsSatisfied)
	require.NotNil(t, result.MatchingPolicies)
	assert.Empty(t, result.MatchingPolicies)
}

func TestEvaluateCriterion_ZeroTargetNoDivideByZero(t *testing.T) {
	criterion := models.Criterion{
		TargetType:  models.TargetTypeValue,
		TargetValue: 0,
	}
	pool := candidates(models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 100})

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 0.0, result.Percentage)
}

func TestEvaluateCriterion_UnknownTargetType(t *testing.T) {
	criterion := models.Criterion{
		TargetType:  models.TargetType("PERCENTAGE"),
		TargetValue: 10,
	}
	pool := candidates(models.Policy{PolicyType: models.PolicyTypeAuto, PremiumValue: 100})

	result := EvaluateCriterion(criterion, pool)

	assert.Equal(t, 0.0, result.CurrentProgress)
	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, result.IsSatisfied, "a misconfigured criterion must never be satisfied")
}

func TestParseTargetType(t *testing.T) {
	assert.Equal(t, models.TargetTypeQuantity, models.ParseTargetType("quantity"))
	assert.Equal(t, models.TargetTypeValue, models.ParseTargetType("VALUE"))
	assert.Equal(t, models.TargetTypeUnknown, models.ParseTargetType("bogus"))
}
