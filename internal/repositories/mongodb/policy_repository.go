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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PolicyRepository implements the repositories.PolicyRepository interface
type PolicyRepository struct {
	collection *mongo.Collection
}

// NewPolicyRepository creates a new PolicyRepository
func NewPolicyRepository(db *mongo.Database) repositories.PolicyRepository {
	return &PolicyRepository{
		collection: db.Collection("policies"),
	}
}

// Create creates a new policy
func (r *PolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	policy.CreatedAt = time.Now()
	policy.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, policy)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		policy.ID = oid
	}
	return nil
}

// FindByID finds a policy by ID
func (r *PolicyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Policy, error) {
	var policy models.Policy
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &policy, nil
}

// FindByUserID finds a broker's policies with pagination
func (r *PolicyRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Policy, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"issuedAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var policies []*models.Policy
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, err
	}
	if policies == nil {
		policies = []*models.Policy{}
	}
	return policies, nil
}

// FindByPolicyNumber finds a policy by its external policy number
func (r *PolicyRepository) FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error) {
	var policy models.Policy
	err := r.collection.FindOne(ctx, bson.M{"policyNumber": number}).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &policy, nil
}

// Update replaces a policy document
func (r *PolicyRepository) Update(ctx context.Context, policy *models.Policy) error {
	policy.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": policy.ID}, policy)
	return err
}

// Count counts all policies
func (r *PolicyRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
