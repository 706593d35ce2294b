package mongodb

import (
	"context"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PolicyLinkRepository implements the repositories.PolicyLinkRepository interface
type PolicyLinkRepository struct {
	collection *mongo.Collection
}

// NewPolicyLinkRepository creates a new PolicyLinkRepository
func NewPolicyLinkRepository(db *mongo.Database) repositories.PolicyLinkRepository {
	return &PolicyLinkRepository{
		collection: db.Collection("policy_links"),
	}
}

// Create creates a new policy link
func (r *PolicyLinkRepository) Create(ctx context.Context, link *models.PolicyLink) error {
	link.CreatedAt = time.Now()
	if link.LinkedAt.IsZero() {
		link.LinkedAt = link.CreatedAt
	}
	res, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		link.ID = oid
	}
	return nil
}

// FindActiveByCampaignID returns active links for a campaign joined with
// their underlying policy, keeping only links whose policy is still active.
func (r *PolicyLinkRepository) FindActiveByCampaignID(ctx context.Context, campaignID primitive.ObjectID) ([]models.LinkedPolicy, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"campaignId": campaignID, "isActive": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "policies",
			"localField":   "policyId",
			"foreignField": "_id",
			"as":           "policy",
		}}},
		{{Key: "$unwind", Value: "$policy"}},
		{{Key: "$match", Value: bson.M{"policy.status": models.PolicyStatusActive}}},
		{{Key: "$project", Value: bson.M{
			"link": bson.M{
				"_id":        "$_id",
				"policyId":   "$policyId",
				"campaignId": "$campaignId",
				"userId":     "$userId",
				"linkedAt":   "$linkedAt",
				"isActive":   "$isActive",
				"createdAt":  "$createdAt",
			},
			"policy": "$policy",
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var linked []models.LinkedPolicy
	if err := cursor.All(ctx, &linked); err != nil {
		return nil, err
	}
	if linked == nil {
		linked = []models.LinkedPolicy{}
	}
	return linked, nil
}

// Deactivate soft-deletes a link. Inactive links never count toward
// progress.
func (r *PolicyLinkRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
