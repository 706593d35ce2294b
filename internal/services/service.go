package services

import (
	"context"
	"errors"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service-level error kinds. Handlers map these to HTTP statuses with
// errors.Is; everything else is treated as an internal failure.
var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrAcceptanceDecided  = errors.New("campaign acceptance has already been decided")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CampaignService defines the interface for campaign lifecycle operations
type CampaignService interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	GetCampaignsForUser(ctx context.Context, userID primitive.ObjectID, filter models.CampaignFilter) ([]*models.Campaign, error)
	AcceptCampaign(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*models.Campaign, error)
	RejectCampaign(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*models.Campaign, error)
	GetProgress(ctx context.Context, id primitive.ObjectID) (*models.ProgressResult, error)
	DeleteCampaign(ctx context.Context, id primitive.ObjectID) error
}

// PolicyService defines the interface for policy registration operations
type PolicyService interface {
	RegisterPolicy(ctx context.Context, policy *models.Policy) (*models.Policy, error)
	GetPoliciesForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Policy, error)
	UnlinkPolicy(ctx context.Context, linkID primitive.ObjectID, campaignID primitive.ObjectID) error
}

// RecalculationService is the single entry point for progress
// recalculation. Every trigger site (policy registration, the periodic
// sweep, the admin correction tool) calls through here so they cannot
// diverge.
type RecalculationService interface {
	Recalculate(ctx context.Context, campaignID primitive.ObjectID) (*models.ProgressResult, error)
	RecalculateAll(ctx context.Context, userID *primitive.ObjectID) (*models.RecalculationSummary, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
