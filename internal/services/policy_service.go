package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PolicyServiceImpl implements PolicyService
var _ PolicyService = (*PolicyServiceImpl)(nil)

// PolicyServiceImpl handles policy registration and campaign linking.
// Policy writes always commit even when the follow-up recalculation fails;
// the periodic sweep reconciles progress later.
type PolicyServiceImpl struct {
	policyRepo   repositories.PolicyRepository
	linkRepo     repositories.PolicyLinkRepository
	campaignRepo repositories.CampaignRepository
	recalc       RecalculationService
}

// NewPolicyService creates a new PolicyServiceImpl
func NewPolicyService(
	policyRepo repositories.PolicyRepository,
	linkRepo repositories.PolicyLinkRepository,
	campaignRepo repositories.CampaignRepository,
	recalc RecalculationService,
) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		policyRepo:   policyRepo,
		linkRepo:     linkRepo,
		campaignRepo: campaignRepo,
		recalc:       recalc,
	}
}

// RegisterPolicy stores a new policy, links it to the broker's open
// accepted campaigns it can count toward, and triggers recalculation of
// those campaigns.
func (s *PolicyServiceImpl) RegisterPolicy(ctx context.Context, policy *models.Policy) (*models.Policy, error) {
	if policy.PolicyNumber == "" {
		return nil, errors.New("policy number is required")
	}
	if policy.UserID.IsZero() {
		return nil, errors.New("policy must belong to a broker")
	}
	if policy.PremiumValue < 0 {
		return nil, errors.New("premium value cannot be negative")
	}
	if policy.Status == "" {
		policy.Status = models.PolicyStatusActive
	}
	if policy.IssuedAt.IsZero() {
		policy.IssuedAt = time.Now()
	}

	existing, err := s.policyRepo.FindByPolicyNumber(ctx, policy.PolicyNumber)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing policy: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("policy %s is already registered", policy.PolicyNumber)
	}

	if err := s.policyRepo.Create(ctx, policy); err != nil {
		slog.Error("Failed to create policy", "error", err, "policyNumber", policy.PolicyNumber)
		return nil, fmt.Errorf("failed to create policy: %w", err)
	}

	linked := s.linkToOpenCampaigns(ctx, policy)

	// Recalculation is decoupled from the policy write: failures here are
	// logged, not returned, and the sweep picks them up.
	for _, campaignID := range linked {
		if _, err := s.recalc.Recalculate(ctx, campaignID); err != nil {
			slog.Warn("Recalculation after policy registration failed",
				"error", err, "campaignId", campaignID.Hex(), "policyId", policy.ID.Hex())
		}
	}

	slog.Info("Policy registered",
		"policyId", policy.ID.Hex(), "policyNumber", policy.PolicyNumber,
		"linkedCampaigns", len(linked))
	return policy, nil
}

// linkToOpenCampaigns creates links for every accepted, still-open
// campaign of the broker that the policy can count toward. Returns the
// campaign IDs that got a new link.
func (s *PolicyServiceImpl) linkToOpenCampaigns(ctx context.Context, policy *models.Policy) []primitive.ObjectID {
	campaigns, err := s.campaignRepo.FindByUserID(ctx, policy.UserID, models.CampaignFilter{
		AcceptanceStatus: models.AcceptanceAccepted,
	})
	if err != nil {
		slog.Error("Failed to list campaigns for policy linking", "error", err, "userId", policy.UserID.Hex())
		return nil
	}

	now := time.Now()
	var linked []primitive.ObjectID
	for _, campaign := range campaigns {
		if campaign.Status != models.CampaignStatusActive {
			continue
		}
		if campaign.WindowExpired(now) || now.Before(campaign.StartDate) {
			continue
		}
		if !policyCanCount(campaign, *policy) {
			continue
		}

		link := &models.PolicyLink{
			PolicyID:   policy.ID,
			CampaignID: campaign.ID,
			UserID:     policy.UserID,
			LinkedAt:   now,
			IsActive:   true,
		}
		if err := s.linkRepo.Create(ctx, link); err != nil {
			slog.Error("Failed to link policy to campaign",
				"error", err, "policyId", policy.ID.Hex(), "campaignId", campaign.ID.Hex())
			continue
		}
		linked = append(linked, campaign.ID)
	}
	return linked
}

// policyCanCount reports whether the policy matches at least one of the
// campaign's criteria (or the implicit criterion when none are
// configured). Linking an unmatchable policy would only add noise.
func policyCanCount(campaign *models.Campaign, policy models.Policy) bool {
	if len(campaign.Criteria) == 0 {
		return criterionMatches(campaign.ImplicitCriterion(), policy)
	}
	for _, criterion := range campaign.Criteria {
		if criterionMatches(criterion, policy) {
			return true
		}
	}
	return false
}

// GetPoliciesForUser lists a broker's policies with pagination
func (s *PolicyServiceImpl) GetPoliciesForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Policy, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	policies, err := s.policyRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return policies, nil
}

// UnlinkPolicy soft-deletes a policy link and recalculates the campaign it
// pointed at
func (s *PolicyServiceImpl) UnlinkPolicy(ctx context.Context, linkID primitive.ObjectID, campaignID primitive.ObjectID) error {
	if err := s.linkRepo.Deactivate(ctx, linkID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPolicyNotFound
		}
		return fmt.Errorf("failed to deactivate policy link: %w", err)
	}
	if _, err := s.recalc.Recalculate(ctx, campaignID); err != nil {
		slog.Warn("Recalculation after unlink failed", "error", err, "campaignId", campaignID.Hex())
	}
	return nil
}
