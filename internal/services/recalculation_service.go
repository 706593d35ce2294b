package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"github.com/brokerhub/campaigns-backend/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RecalculationServiceImpl implements RecalculationService
var _ RecalculationService = (*RecalculationServiceImpl)(nil)

// defaultBatchConcurrency bounds the per-campaign fan-out in
// RecalculateAll. Campaigns are independent units, so there is no ordering
// guarantee between them.
const defaultBatchConcurrency = 8

// RecalculationServiceImpl is the shared recalculation pipeline: load the
// campaign, calculate progress, reconcile status, persist. Policy
// registration, the periodic sweep and the admin correction tool all go
// through this one implementation.
type RecalculationServiceImpl struct {
	campaignRepo  repositories.CampaignRepository
	calculator    *ProgressCalculator
	reconciler    *StatusReconciler
	progressCache *cache.Cache
	concurrency   int
	now           func() time.Time
}

// NewRecalculationService creates a new RecalculationServiceImpl
func NewRecalculationService(
	campaignRepo repositories.CampaignRepository,
	calculator *ProgressCalculator,
	reconciler *StatusReconciler,
	progressCache *cache.Cache,
) *RecalculationServiceImpl {
	return &RecalculationServiceImpl{
		campaignRepo:  campaignRepo,
		calculator:    calculator,
		reconciler:    reconciler,
		progressCache: progressCache,
		concurrency:   defaultBatchConcurrency,
		now:           time.Now,
	}
}

// Recalculate recomputes one campaign's progress and persists the
// reconciled status. On any read failure the persisted status is left
// untouched and the error is reported upward.
func (s *RecalculationServiceImpl) Recalculate(ctx context.Context, campaignID primitive.ObjectID) (*models.ProgressResult, error) {
	result, _, err := s.recalculate(ctx, campaignID)
	return result, err
}

func (s *RecalculationServiceImpl) recalculate(ctx context.Context, campaignID primitive.ObjectID) (*models.ProgressResult, bool, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %s", ErrCampaignNotFound, campaignID.Hex())
		}
		return nil, false, fmt.Errorf("failed to read campaign %s: %w", campaignID.Hex(), err)
	}

	result, err := s.calculator.CalculateProgress(ctx, campaign)
	if err != nil {
		return nil, false, err
	}

	update := s.reconciler.Reconcile(campaign, result, s.now())

	if err := s.campaignRepo.UpdateProgress(ctx, campaignID, update); err != nil {
		return nil, false, fmt.Errorf("failed to persist progress for campaign %s: %w", campaignID.Hex(), err)
	}
	s.progressCache.Invalidate(campaignID.Hex())

	statusChanged := update.Status != campaign.Status
	if statusChanged {
		slog.Info("Campaign status changed on recalculation",
			"campaignId", campaignID.Hex(),
			"from", string(campaign.Status),
			"to", string(update.Status),
			"progressPercentage", result.ProgressPercentage)
	}

	return result, statusChanged, nil
}

// RecalculateAll recalculates every campaign (or only one broker's when
// userID is non-nil). Campaigns are processed independently: one failure is
// recorded in the summary and never aborts the rest.
func (s *RecalculationServiceImpl) RecalculateAll(ctx context.Context, userID *primitive.ObjectID) (*models.RecalculationSummary, error) {
	var campaigns []*models.Campaign
	var err error
	if userID != nil {
		campaigns, err = s.campaignRepo.FindByUserID(ctx, *userID, models.CampaignFilter{})
	} else {
		campaigns, err = s.campaignRepo.FindAll(ctx, models.CampaignFilter{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns for recalculation: %w", err)
	}

	summary := &models.RecalculationSummary{
		Total:     len(campaigns),
		Errors:    []models.RecalculationError{},
		StartedAt: s.now(),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for _, campaign := range campaigns {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id primitive.ObjectID) {
			defer wg.Done()
			defer func() { <-sem }()

			_, changed, err := s.recalculate(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors = append(summary.Errors, models.RecalculationError{
					CampaignID: id,
					Message:    err.Error(),
				})
				return
			}
			if changed {
				summary.CorrectedCount++
			}
		}(campaign.ID)
	}
	wg.Wait()

	summary.FinishedAt = s.now()
	slog.Info("Batch recalculation finished",
		"total", summary.Total,
		"corrected", summary.CorrectedCount,
		"errors", len(summary.Errors))
	return summary, nil
}
