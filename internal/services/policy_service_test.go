package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPolicyService(policyRepo *fakePolicyRepo, linkRepo *recordingLinkRepo, campaignRepo *fakeCampaignRepo, recalc RecalculationService) *PolicyServiceImpl {
	return NewPolicyService(policyRepo, linkRepo, campaignRepo, recalc)
}

func autoPolicy(userID primitive.ObjectID, number string) *models.Policy {
	return &models.Policy{
		PolicyNumber: number,
		UserID:       userID,
		PolicyType:   models.PolicyTypeAuto,
		ContractType: models.ContractTypeNew,
		PremiumValue: 2500,
	}
}

func TestRegisterPolicy_LinksToMatchingAcceptedCampaigns(t *testing.T) {
	userID := primitive.NewObjectID()
	acceptedAt := time.Now().AddDate(0, 0, -10)

	matching := acceptedCampaign(acceptedAt)
	matching.UserID = userID
	matching.Criteria = []models.Criterion{
		{PolicyType: models.PolicyTypeAuto, TargetType: models.TargetTypeQuantity, TargetValue: 3},
	}

	pending := acceptedCampaign(acceptedAt)
	pending.UserID = userID
	pending.AcceptanceStatus = models.AcceptancePending

	mismatched := acceptedCampaign(acceptedAt)
	mismatched.UserID = userID
	mismatched.Criteria = []models.Criterion{
		{PolicyType: models.PolicyTypeResidential, TargetType: models.TargetTypeQuantity, TargetValue: 3},
	}

	campaignRepo := newFakeCampaignRepo()
	campaignRepo.add(matching)
	campaignRepo.add(pending)
	campaignRepo.add(mismatched)

	linkRepo := &recordingLinkRepo{}
	recalc := &fakeRecalcService{}
	svc := newTestPolicyService(newFakePolicyRepo(), linkRepo, campaignRepo, recalc)

	_, err := svc.RegisterPolicy(context.Background(), autoPolicy(userID, "AP-001"))
	require.NoError(t, err)

	require.Len(t, linkRepo.created, 1)
	assert.Equal(t, matching.ID, linkRepo.created[0].CampaignID)
	assert.True(t, linkRepo.created[0].IsActive)
	assert.Equal(t, 1, recalc.callCount())
}

func TestRegisterPolicy_SkipsExpiredCampaigns(t *testing.T) {
	userID := primitive.NewObjectID()
	expired := acceptedCampaign(time.Now().AddDate(0, -6, 0))
	expired.UserID = userID
	expired.EndDate = time.Now().AddDate(0, 0, -1)

	campaignRepo := newFakeCampaignRepo()
	campaignRepo.add(expired)

	linkRepo := &recordingLinkRepo{}
	svc := newTestPolicyService(newFakePolicyRepo(), linkRepo, campaignRepo, &fakeRecalcService{})

	_, err := svc.RegisterPolicy(context.Background(), autoPolicy(userID, "AP-002"))
	require.NoError(t, err)
	assert.Empty(t, linkRepo.created)
}

// The policy write commits even when the follow-up recalculation fails;
// the periodic sweep converges the campaign later.
func TestRegisterPolicy_SurvivesRecalculationFailure(t *testing.T) {
	userID := primitive.NewObjectID()
	campaign := acceptedCampaign(time.Now().AddDate(0, 0, -10))
	campaign.UserID = userID

	campaignRepo := newFakeCampaignRepo()
	campaignRepo.add(campaign)

	policyRepo := newFakePolicyRepo()
	recalc := &fakeRecalcService{err: errors.New("mongo timeout")}
	svc := newTestPolicyService(policyRepo, &recordingLinkRepo{}, campaignRepo, recalc)

	policy, err := svc.RegisterPolicy(context.Background(), autoPolicy(userID, "AP-003"))
	require.NoError(t, err)

	stored, err := policyRepo.FindByID(context.Background(), policy.ID)
	require.NoError(t, err)
	assert.Equal(t, "AP-003", stored.PolicyNumber)
}

func TestRegisterPolicy_DuplicateNumberRejected(t *testing.T) {
	userID := primitive.NewObjectID()
	policyRepo := newFakePolicyRepo()
	svc := newTestPolicyService(policyRepo, &recordingLinkRepo{}, newFakeCampaignRepo(), &fakeRecalcService{})

	_, err := svc.RegisterPolicy(context.Background(), autoPolicy(userID, "AP-004"))
	require.NoError(t, err)

	_, err = svc.RegisterPolicy(context.Background(), autoPolicy(userID, "AP-004"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterPolicy_ValidatesInput(t *testing.T) {
	svc := newTestPolicyService(newFakePolicyRepo(), &recordingLinkRepo{}, newFakeCampaignRepo(), &fakeRecalcService{})

	_, err := svc.RegisterPolicy(context.Background(), &models.Policy{UserID: primitive.NewObjectID()})
	assert.Error(t, err, "policy number is required")

	p := autoPolicy(primitive.NewObjectID(), "AP-005")
	p.PremiumValue = -10
	_, err = svc.RegisterPolicy(context.Background(), p)
	assert.Error(t, err)
}

func TestUnlinkPolicy_TriggersRecalculation(t *testing.T) {
	recalc := &fakeRecalcService{}
	svc := newTestPolicyService(newFakePolicyRepo(), &recordingLinkRepo{}, newFakeCampaignRepo(), recalc)

	campaignID := primitive.NewObjectID()
	require.NoError(t, svc.UnlinkPolicy(context.Background(), primitive.NewObjectID(), campaignID))

	require.Equal(t, 1, recalc.callCount())
	assert.Equal(t, campaignID, recalc.calls[0])
}
