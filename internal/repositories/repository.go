package repositories

import (
	"context"
	"errors"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by Find methods when no document matches.
// Mongo implementations translate mongo.ErrNoDocuments into this so
// services never depend on the driver.
var ErrNotFound = errors.New("record not found")

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, filter models.CampaignFilter) ([]*models.Campaign, error)
	FindAll(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	UpdateProgress(ctx context.Context, id primitive.ObjectID, update models.ProgressUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// PolicyRepository defines the interface for policy data operations
type PolicyRepository interface {
	Create(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Policy, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Policy, error)
	FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error)
	Update(ctx context.Context, policy *models.Policy) error
	Count(ctx context.Context) (int64, error)
}

// PolicyLinkRepository defines the interface for policy-to-campaign link
// operations. FindActiveByCampaignID joins each active link with its
// underlying policy and only returns links whose policy is still active.
type PolicyLinkRepository interface {
	Create(ctx context.Context, link *models.PolicyLink) error
	FindActiveByCampaignID(ctx context.Context, campaignID primitive.ObjectID) ([]models.LinkedPolicy, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
