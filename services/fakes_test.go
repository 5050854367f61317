package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
)

// duplicateKeyError mimics a unique-index violation from the driver.
func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key error"}},
	}
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *fakeUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return duplicateKeyError()
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeUserStore) FindAll(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeUserStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.Status = status
	return true, nil
}

type fakeWorkOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.WorkOrder
}

func newFakeWorkOrderStore() *fakeWorkOrderStore {
	return &fakeWorkOrderStore{orders: make(map[primitive.ObjectID]*models.WorkOrder)}
}

func (s *fakeWorkOrderStore) Insert(_ context.Context, order *models.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *fakeWorkOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *o
	return &copied, nil
}

func (s *fakeWorkOrderStore) FindByClient(_ context.Context, clientID primitive.ObjectID) ([]models.WorkOrder, error) {
	return s.filter(func(o *models.WorkOrder) bool { return o.ClientID == clientID })
}

func (s *fakeWorkOrderStore) FindByVendor(_ context.Context, vendorID primitive.ObjectID) ([]models.WorkOrder, error) {
	return s.filter(func(o *models.WorkOrder) bool {
		return o.AssignedVendorID != nil && *o.AssignedVendorID == vendorID
	})
}

func (s *fakeWorkOrderStore) FindByStatus(_ context.Context, status string) ([]models.WorkOrder, error) {
	return s.filter(func(o *models.WorkOrder) bool { return o.Status == status })
}

func (s *fakeWorkOrderStore) FindAll(_ context.Context) ([]models.WorkOrder, error) {
	return s.filter(func(*models.WorkOrder) bool { return true })
}

func (s *fakeWorkOrderStore) filter(keep func(*models.WorkOrder) bool) ([]models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.WorkOrder{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeWorkOrderStore) Transition(_ context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	for key, value := range set {
		switch key {
		case "assignedVendorId":
			vendorID := value.(primitive.ObjectID)
			o.AssignedVendorID = &vendorID
		case "totalAmount":
			amount := value.(float64)
			o.TotalAmount = &amount
		case "vendorAmount":
			amount := value.(float64)
			o.VendorAmount = &amount
		case "serviceFeePercentage":
			o.ServiceFeePercentage = value.(float64)
		case "completionNotes":
			o.CompletionNotes = value.(string)
		}
	}
	return true, nil
}

func (s *fakeWorkOrderStore) SetServiceFee(_ context.Context, id primitive.ObjectID, pct float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status == models.WorkOrderStatusPaid {
		return false, nil
	}
	o.ServiceFeePercentage = pct
	return true, nil
}

type fakeApplicationStore struct {
	mu   sync.Mutex
	apps map[primitive.ObjectID]*models.VendorApplication
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{apps: make(map[primitive.ObjectID]*models.VendorApplication)}
}

func (s *fakeApplicationStore) Insert(_ context.Context, app *models.VendorApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.WorkOrderID == app.WorkOrderID && a.VendorID == app.VendorID {
			return duplicateKeyError()
		}
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	copied := *app
	s.apps[app.ID] = &copied
	return nil
}

func (s *fakeApplicationStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.VendorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *a
	return &copied, nil
}

func (s *fakeApplicationStore) FindByWorkOrder(_ context.Context, workOrderID primitive.ObjectID) ([]models.VendorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VendorApplication{}
	for _, a := range s.apps {
		if a.WorkOrderID == workOrderID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeApplicationStore) FindByVendor(_ context.Context, vendorID primitive.ObjectID) ([]models.VendorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VendorApplication{}
	for _, a := range s.apps {
		if a.VendorID == vendorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeApplicationStore) SetStatus(_ context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return true, nil
}

func (s *fakeApplicationStore) RejectOthers(_ context.Context, workOrderID, exceptID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rejected int64
	for _, a := range s.apps {
		if a.WorkOrderID == workOrderID && a.ID != exceptID && a.Status == models.ApplicationStatusPending {
			a.Status = models.ApplicationStatusRejected
			rejected++
		}
	}
	return rejected, nil
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[primitive.ObjectID]*models.Payment)}
}

func (s *fakePaymentStore) Insert(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payments[payment.WorkOrderID]; exists {
		return duplicateKeyError()
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = time.Now()
	copied := *payment
	s.payments[payment.WorkOrderID] = &copied
	return nil
}

func (s *fakePaymentStore) FindByWorkOrder(_ context.Context, workOrderID primitive.ObjectID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[workOrderID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (s *fakePaymentStore) FindAll(_ context.Context) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Payment{}
	for _, p := range s.payments {
		out = append(out, *p)
	}
	return out, nil
}

type fakeNotificationStore struct {
	mu    sync.Mutex
	saved []models.Notification
}

func (s *fakeNotificationStore) Save(_ context.Context, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *fakeNotificationStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.saved {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.saved {
		if s.saved[i].ID == id && s.saved[i].UserID == userID {
			s.saved[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

// fakeTxRunner applies the function directly; the fakes commit immediately.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newFakeStores() *repositories.Stores {
	return &repositories.Stores{
		Users:         newFakeUserStore(),
		WorkOrders:    newFakeWorkOrderStore(),
		Applications:  newFakeApplicationStore(),
		Payments:      newFakePaymentStore(),
		Notifications: &fakeNotificationStore{},
		Tx:            fakeTxRunner{},
	}
}

func newTestUser(userType string) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		FullName: "Test User",
		UserType: userType,
		Status:   models.UserStatusActive,
	}
}
