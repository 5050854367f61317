// repositories/mongo.go
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/config"
)

// NewMongoStores wires every store to collections of the configured database.
func NewMongoStores(client *mongo.Client) *Stores {
	return &Stores{
		Users:         &UserRepository{collection: config.GetCollection(client, "users")},
		WorkOrders:    &WorkOrderRepository{collection: config.GetCollection(client, "workOrders")},
		Applications:  &ApplicationRepository{collection: config.GetCollection(client, "vendorApplications")},
		Payments:      &PaymentRepository{collection: config.GetCollection(client, "payments")},
		Notifications: &NotificationRepository{collection: config.GetCollection(client, "notifications")},
		Tx:            &mongoTxRunner{client: client},
	}
}

// mongoTxRunner runs a function inside one MongoDB session transaction.
type mongoTxRunner struct {
	client *mongo.Client
}

func (r *mongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
