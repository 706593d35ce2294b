package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/brokerhub/campaigns-backend/internal/models"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	collection *mongo.Collection
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) repositories.CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection("campaigns"),
	}
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// FindByUserID finds campaigns assigned to a broker, optionally narrowed by
// lifecycle and acceptance status
func (r *CampaignRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, filter models.CampaignFilter) ([]*models.Campaign, error) {
	query := bson.M{"userId": userID}
	applyCampaignFilter(query, filter)

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []*models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}

// FindAll finds all campaigns matching the filter
func (r *CampaignRepository) FindAll(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error) {
	query := bson.M{}
	applyCampaignFilter(query, filter)

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []*models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, campaign)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		campaign.ID = oid
	}
	return nil
}

// Update replaces a campaign document
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": campaign.ID}, campaign)
	return err
}

// UpdateProgress writes only the computed progress fields. A nil AchievedAt
// unsets the field so the completed-to-active repair path clears it.
func (r *CampaignRepository) UpdateProgress(ctx context.Context, id primitive.ObjectID, update models.ProgressUpdate) error {
	set := bson.M{
		"currentValue":       update.CurrentValue,
		"progressPercentage": update.ProgressPercentage,
		"status":             update.Status,
		"achievedValue":      update.AchievedValue,
		"updatedAt":          update.LastUpdated,
	}
	unset := bson.M{}
	if update.AchievedAt != nil {
		set["achievedAt"] = *update.AchievedAt
	} else {
		unset["achievedAt"] = ""
	}

	ops := bson.M{"$set": set}
	if len(unset) > 0 {
		ops["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, ops)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count counts all campaigns
func (r *CampaignRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func applyCampaignFilter(query bson.M, filter models.CampaignFilter) {
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AcceptanceStatus != "" {
		query["acceptanceStatus"] = filter.AcceptanceStatus
	}
}
