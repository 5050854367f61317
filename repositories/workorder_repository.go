package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/source1pro/source1_backend/models"
)

type WorkOrderRepository struct {
	collection *mongo.Collection
}

func (r *WorkOrderRepository) Insert(ctx context.Context, order *models.WorkOrder) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, order)
	return err
}

func (r *WorkOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *WorkOrderRepository) FindByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

func (r *WorkOrderRepository) FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{"assignedVendorId": vendorID})
}

func (r *WorkOrderRepository) FindByStatus(ctx context.Context, status string) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *WorkOrderRepository) FindAll(ctx context.Context) ([]models.WorkOrder, error) {
	return r.find(ctx, bson.M{})
}

func (r *WorkOrderRepository) find(ctx context.Context, filter bson.M) ([]models.WorkOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition moves an order from one status to another, applying extra field
// updates in the same write. The filter on the expected current status makes
// concurrent transitions race-safe: only one update can match.
func (r *WorkOrderRepository) Transition(ctx context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error) {
	update := bson.M{
		"status":    to,
		"updatedAt": time.Now(),
	}
	for key, value := range set {
		update[key] = value
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// SetServiceFee updates the fee percentage for any non-terminal order.
func (r *WorkOrderRepository) SetServiceFee(ctx context.Context, id primitive.ObjectID, pct float64) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.WorkOrderStatusPaid}},
		bson.M{"$set": bson.M{
			"serviceFeePercentage": pct,
			"updatedAt":            time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}
