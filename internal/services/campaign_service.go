package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"github.com/brokerhub/campaigns-backend/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CampaignServiceImpl implements CampaignService
var _ CampaignService = (*CampaignServiceImpl)(nil)

// CampaignServiceImpl handles campaign lifecycle operations
type CampaignServiceImpl struct {
	campaignRepo  repositories.CampaignRepository
	recalc        RecalculationService
	progressCache *cache.Cache
}

// NewCampaignService creates a new CampaignServiceImpl
func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	recalc RecalculationService,
	progressCache *cache.Cache,
) *CampaignServiceImpl {
	return &CampaignServiceImpl{
		campaignRepo:  campaignRepo,
		recalc:        recalc,
		progressCache: progressCache,
	}
}

// CreateCampaign validates and stores a new campaign. New campaigns start
// ACTIVE with acceptance PENDING; nothing accrues until the broker accepts.
func (s *CampaignServiceImpl) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if campaign.Name == "" {
		return errors.New("name is required")
	}
	if campaign.UserID.IsZero() {
		return errors.New("campaign must be assigned to a broker")
	}
	if campaign.StartDate.After(campaign.EndDate) {
		return errors.New("start date cannot be after end date")
	}
	if len(campaign.Criteria) == 0 && campaign.Target <= 0 {
		return errors.New("target must be positive when no criteria are configured")
	}
	for i, criterion := range campaign.Criteria {
		if criterion.TargetValue <= 0 {
			return fmt.Errorf("criterion %d: target value must be positive", i)
		}
	}

	campaign.Status = models.CampaignStatusActive
	if campaign.AcceptanceStatus == "" {
		campaign.AcceptanceStatus = models.AcceptancePending
	}
	campaign.CurrentValue = 0
	campaign.ProgressPercentage = 0
	campaign.AchievedAt = nil
	campaign.AchievedValue = 0

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		slog.Error("Failed to create campaign", "error", err, "name", campaign.Name)
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	slog.Info("Campaign created", "campaignId", campaign.ID.Hex(), "name", campaign.Name, "userId", campaign.UserID.Hex())
	return nil
}

// GetCampaign retrieves a campaign by ID
func (s *CampaignServiceImpl) GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to retrieve campaign: %w", err)
	}
	return campaign, nil
}

// GetCampaignsForUser lists a broker's campaigns with optional filters
func (s *CampaignServiceImpl) GetCampaignsForUser(ctx context.Context, userID primitive.ObjectID, filter models.CampaignFilter) ([]*models.Campaign, error) {
	campaigns, err := s.campaignRepo.FindByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// AcceptCampaign flips a pending campaign to accepted and stamps the
// acceptance instant. Policies linked before this instant never count
// toward progress. Acceptance can only happen once.
func (s *CampaignServiceImpl) AcceptCampaign(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*models.Campaign, error) {
	return s.decideAcceptance(ctx, id, userID, models.AcceptanceAccepted)
}

// RejectCampaign flips a pending campaign to rejected
func (s *CampaignServiceImpl) RejectCampaign(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*models.Campaign, error) {
	return s.decideAcceptance(ctx, id, userID, models.AcceptanceRejected)
}

func (s *CampaignServiceImpl) decideAcceptance(ctx context.Context, id, userID primitive.ObjectID, decision models.AcceptanceStatus) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, ErrCampaignNotFound
	}
	if campaign.AcceptanceStatus != models.AcceptancePending {
		return campaign, ErrAcceptanceDecided
	}

	campaign.AcceptanceStatus = decision
	if decision == models.AcceptanceAccepted {
		campaign.AcceptedAt = time.Now()
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign acceptance: %w", err)
	}
	slog.Info("Campaign acceptance decided",
		"campaignId", id.Hex(), "decision", string(decision), "userId", userID.Hex())

	if decision == models.AcceptanceAccepted {
		// Best-effort initial calculation; the sweep reconciles later if
		// this fails.
		if _, err := s.recalc.Recalculate(ctx, id); err != nil {
			slog.Warn("Initial recalculation after acceptance failed", "error", err, "campaignId", id.Hex())
		}
	}
	return campaign, nil
}

// GetProgress returns the campaign's progress with per-criterion detail.
// Results are served from the TTL cache when fresh; a miss triggers a full
// recalculation, which also repersists the campaign's cached display
// fields. When recalculation fails for a campaign that still exists, the
// last persisted display values are returned instead of an error so the
// dashboard never shows a crash for a transient failure.
func (s *CampaignServiceImpl) GetProgress(ctx context.Context, id primitive.ObjectID) (*models.ProgressResult, error) {
	if cached, ok := s.progressCache.Get(id.Hex()); ok {
		if result, ok := cached.(*models.ProgressResult); ok {
			return result, nil
		}
	}

	result, err := s.recalc.Recalculate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return nil, err
		}
		campaign, readErr := s.campaignRepo.FindByID(ctx, id)
		if readErr != nil {
			return nil, err
		}
		slog.Warn("Recalculation failed, serving last persisted progress",
			"error", err, "campaignId", id.Hex())
		return &models.ProgressResult{
			CampaignID:         campaign.ID,
			CurrentValue:       campaign.CurrentValue,
			ProgressPercentage: campaign.ProgressPercentage,
			IsCompleted:        campaign.Status == models.CampaignStatusCompleted,
			Criteria:           []models.CriterionResult{},
			CalculatedAt:       campaign.UpdatedAt,
		}, nil
	}
	s.progressCache.Set(id.Hex(), result)
	return result, nil
}

// DeleteCampaign removes a campaign
func (s *CampaignServiceImpl) DeleteCampaign(ctx context.Context, id primitive.ObjectID) error {
	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	s.progressCache.Invalidate(id.Hex())
	return nil
}
