package services

import (
	"context"
	"sync"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeLinkRepo serves a fixed set of linked policies per campaign
type fakeLinkRepo struct {
	mu      sync.Mutex
	links   map[primitive.ObjectID][]models.LinkedPolicy
	findErr error
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[primitive.ObjectID][]models.LinkedPolicy)}
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *models.PolicyLink) error {
	return nil
}

func (f *fakeLinkRepo) FindActiveByCampaignID(ctx context.Context, campaignID primitive.ObjectID) ([]models.LinkedPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.links[campaignID], nil
}

func (f *fakeLinkRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

// fakeCampaignRepo keeps campaigns in memory and records progress writes
type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[primitive.ObjectID]*models.Campaign
	updates   map[primitive.ObjectID]models.ProgressUpdate
	readErr   error
	writeErr  error
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns: make(map[primitive.ObjectID]*models.Campaign),
		updates:   make(map[primitive.ObjectID]models.ProgressUpdate),
	}
}

func (f *fakeCampaignRepo) add(c *models.Campaign) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[c.ID] = c
}

func (f *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	f.add(campaign)
	return nil
}

func (f *fakeCampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	c, ok := f.campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCampaignRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID, filter models.CampaignFilter) ([]*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*models.Campaign
	for _, c := range f.campaigns {
		if c.UserID != userID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.AcceptanceStatus != "" && c.AcceptanceStatus != filter.AcceptanceStatus {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeCampaignRepo) FindAll(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*models.Campaign
	for _, c := range f.campaigns {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeCampaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.campaigns[campaign.ID] = campaign
	return nil
}

func (f *fakeCampaignRepo) UpdateProgress(ctx context.Context, id primitive.ObjectID, update models.ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	c, ok := f.campaigns[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.updates[id] = update
	c.CurrentValue = update.CurrentValue
	c.ProgressPercentage = update.ProgressPercentage
	c.Status = update.Status
	c.AchievedAt = update.AchievedAt
	c.AchievedValue = update.AchievedValue
	return nil
}

func (f *fakeCampaignRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.campaigns, id)
	return nil
}

func (f *fakeCampaignRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.campaigns)), nil
}

// fakePolicyRepo keeps policies in memory
type fakePolicyRepo struct {
	mu       sync.Mutex
	policies map[primitive.ObjectID]*models.Policy
}

func newFakePolicyRepo() *fakePolicyRepo {
	return &fakePolicyRepo{policies: make(map[primitive.ObjectID]*models.Policy)}
}

func (f *fakePolicyRepo) Create(ctx context.Context, policy *models.Policy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
	}
	f.policies[policy.ID] = policy
	return nil
}

func (f *fakePolicyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return p, nil
}

func (f *fakePolicyRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Policy
	for _, p := range f.policies {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicyRepo) FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.PolicyNumber == number {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePolicyRepo) Update(ctx context.Context, policy *models.Policy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[policy.ID] = policy
	return nil
}

func (f *fakePolicyRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.policies)), nil
}

// recordingLinkRepo records created links on top of fakeLinkRepo
type recordingLinkRepo struct {
	fakeLinkRepo
	created []models.PolicyLink
}

func (r *recordingLinkRepo) Create(ctx context.Context, link *models.PolicyLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *link)
	return nil
}

// fakeRecalcService records recalculation calls
type fakeRecalcService struct {
	mu       sync.Mutex
	calls    []primitive.ObjectID
	allCalls int
	err      error
	block    chan struct{} // when set, RecalculateAll waits on it
}

func (f *fakeRecalcService) Recalculate(ctx context.Context, campaignID primitive.ObjectID) (*models.ProgressResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, campaignID)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProgressResult{CampaignID: campaignID, CalculatedAt: time.Now()}, nil
}

func (f *fakeRecalcService) RecalculateAll(ctx context.Context, userID *primitive.ObjectID) (*models.RecalculationSummary, error) {
	f.mu.Lock()
	f.allCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.RecalculationSummary{}, nil
}

func (f *fakeRecalcService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRecalcService) allCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allCalls
}

// linkedPolicy builds a LinkedPolicy for tests
func linkedPolicy(campaignID primitive.ObjectID, linkedAt time.Time, policyType models.PolicyType, contractType models.ContractType, premium float64) models.LinkedPolicy {
	policyID := primitive.NewObjectID()
	return models.LinkedPolicy{
		Link: models.PolicyLink{
			ID:         primitive.NewObjectID(),
			PolicyID:   policyID,
			CampaignID: campaignID,
			LinkedAt:   linkedAt,
			IsActive:   true,
		},
		Policy: models.Policy{
			ID:           policyID,
			PolicyType:   policyType,
			ContractType: contractType,
			PremiumValue: premium,
			Status:       models.PolicyStatusActive,
		},
	}
}
