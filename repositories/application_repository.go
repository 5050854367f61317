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

type ApplicationRepository struct {
	collection *mongo.Collection
}

func (r *ApplicationRepository) Insert(ctx context.Context, app *models.VendorApplication) error {
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, app)
	return err
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorApplication, error) {
	var app models.VendorApplication
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) FindByWorkOrder(ctx context.Context, workOrderID primitive.ObjectID) ([]models.VendorApplication, error) {
	return r.find(ctx, bson.M{"workOrderId": workOrderID})
}

func (r *ApplicationRepository) FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.VendorApplication, error) {
	return r.find(ctx, bson.M{"vendorId": vendorID})
}

func (r *ApplicationRepository) find(ctx context.Context, filter bson.M) ([]models.VendorApplication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []models.VendorApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// SetStatus moves an application from one status to another. The filter on
// the expected current status keeps concurrent accept attempts race-safe.
func (r *ApplicationRepository) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":    to,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RejectOthers marks every other pending application on the work order rejected.
func (r *ApplicationRepository) RejectOthers(ctx context.Context, workOrderID, exceptID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"workOrderId": workOrderID,
			"_id":         bson.M{"$ne": exceptID},
			"status":      models.ApplicationStatusPending,
		},
		bson.M{"$set": bson.M{
			"status":    models.ApplicationStatusRejected,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
