// repositories/store.go
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/source1pro/source1_backend/models"
)

// TxRunner executes a function inside a single transaction. Every store call
// made with the context passed to fn joins that transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore persists accounts.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
}

// WorkOrderStore persists work orders. Transition applies a conditional
// status move: the update matches only while the order is still in the
// `from` status, so a concurrent loser observes matched == false.
type WorkOrderStore interface {
	Insert(ctx context.Context, order *models.WorkOrder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WorkOrder, error)
	FindByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.WorkOrder, error)
	FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.WorkOrder, error)
	FindByStatus(ctx context.Context, status string) ([]models.WorkOrder, error)
	FindAll(ctx context.Context) ([]models.WorkOrder, error)
	Transition(ctx context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error)
	SetServiceFee(ctx context.Context, id primitive.ObjectID, pct float64) (bool, error)
}

// ApplicationStore persists vendor applications.
type ApplicationStore interface {
	Insert(ctx context.Context, app *models.VendorApplication) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorApplication, error)
	FindByWorkOrder(ctx context.Context, workOrderID primitive.ObjectID) ([]models.VendorApplication, error)
	FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.VendorApplication, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	RejectOthers(ctx context.Context, workOrderID, exceptID primitive.ObjectID) (int64, error)
}

// PaymentStore persists settlement records.
type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	FindByWorkOrder(ctx context.Context, workOrderID primitive.ObjectID) (*models.Payment, error)
	FindAll(ctx context.Context) ([]models.Payment, error)
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Save(ctx context.Context, userID primitive.ObjectID, title, message, notifType string, data interface{}) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
}

// Stores bundles every store over one backing database.
type Stores struct {
	Users         UserStore
	WorkOrders    WorkOrderStore
	Applications  ApplicationStore
	Payments      PaymentStore
	Notifications NotificationStore
	Tx            TxRunner
}
