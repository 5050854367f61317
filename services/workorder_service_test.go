package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
)

func float64Ptr(v float64) *float64 { return &v }

func seedOrder(t *testing.T, svc *WorkOrderService, client *models.User) *models.WorkOrder {
	t.Helper()
	order, err := svc.Create(context.Background(), client, &models.CreateWorkOrderRequest{
		Title:       "Replace HVAC filters",
		Description: "Quarterly filter replacement across the building",
		Category:    "hvac",
		Priority:    models.PriorityHigh,
		Location:    "Springfield, IL",
		BudgetMin:   float64Ptr(500),
		BudgetMax:   float64Ptr(1500),
	})
	require.NoError(t, err)
	return order
}

func TestCreateWorkOrder(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)

	t.Run("valid request opens the order", func(t *testing.T) {
		order := seedOrder(t, svc, client)
		assert.Equal(t, models.WorkOrderStatusOpen, order.Status)
		assert.Equal(t, client.ID, order.ClientID)
		assert.Equal(t, models.DefaultServiceFeePercentage, order.ServiceFeePercentage)
		assert.False(t, order.ID.IsZero())
	})

	t.Run("priority defaults to medium", func(t *testing.T) {
		order, err := svc.Create(ctx, client, &models.CreateWorkOrderRequest{
			Title:       "Fix leaking faucet",
			Description: "Unit 4B kitchen faucet drips constantly",
			Category:    "plumbing",
			Location:    "Springfield, IL",
		})
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, order.Priority)
	})

	t.Run("vendor cannot open orders", func(t *testing.T) {
		_, err := svc.Create(ctx, vendor, &models.CreateWorkOrderRequest{
			Title: "x", Description: "x", Category: "x", Location: "x",
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		_, err := svc.Create(ctx, client, &models.CreateWorkOrderRequest{Title: "only a title"})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown priority fails validation", func(t *testing.T) {
		_, err := svc.Create(ctx, client, &models.CreateWorkOrderRequest{
			Title: "x", Description: "x", Category: "x", Location: "x", Priority: "asap",
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("budget minimum above maximum fails validation", func(t *testing.T) {
		_, err := svc.Create(ctx, client, &models.CreateWorkOrderRequest{
			Title: "x", Description: "x", Category: "x", Location: "x",
			BudgetMin: float64Ptr(2000), BudgetMax: float64Ptr(100),
		})
		assert.True(t, IsValidation(err))
	})
}

func TestApply(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)
	order := seedOrder(t, svc, client)

	t.Run("vendor can bid on an open order", func(t *testing.T) {
		app, err := svc.Apply(ctx, vendor, order.ID, &models.ApplyRequest{ProposalAmount: 900})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusPending, app.Status)
		assert.Equal(t, vendor.ID, app.VendorID)
	})

	t.Run("second bid by the same vendor fails validation", func(t *testing.T) {
		_, err := svc.Apply(ctx, vendor, order.ID, &models.ApplyRequest{ProposalAmount: 800})
		assert.True(t, IsValidation(err))
	})

	t.Run("client cannot bid", func(t *testing.T) {
		_, err := svc.Apply(ctx, client, order.ID, &models.ApplyRequest{ProposalAmount: 900})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("pending vendor cannot bid until activated", func(t *testing.T) {
		pending := newTestUser(models.RoleVendor)
		pending.Status = models.UserStatusPending
		_, err := svc.Apply(ctx, pending, order.ID, &models.ApplyRequest{ProposalAmount: 900})
		assert.ErrorIs(t, err, ErrForbidden)

		apps, findErr := stores.Applications.FindByVendor(ctx, pending.ID)
		require.NoError(t, findErr)
		assert.Empty(t, apps)
	})

	t.Run("non-positive amount fails validation", func(t *testing.T) {
		other := newTestUser(models.RoleVendor)
		_, err := svc.Apply(ctx, other, order.ID, &models.ApplyRequest{ProposalAmount: 0})
		assert.True(t, IsValidation(err))
	})

	t.Run("bidding on an assigned order is a state conflict", func(t *testing.T) {
		app, err := stores.Applications.FindByVendor(ctx, vendor.ID)
		require.NoError(t, err)
		require.Len(t, app, 1)
		_, _, err = svc.Accept(ctx, client, app[0].ID)
		require.NoError(t, err)

		late := newTestUser(models.RoleVendor)
		_, err = svc.Apply(ctx, late, order.ID, &models.ApplyRequest{ProposalAmount: 700})
		assert.True(t, IsInvalidState(err))
	})
}

func TestAcceptExclusivity(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	client := newTestUser(models.RoleClient)
	order := seedOrder(t, svc, client)

	vendors := []*models.User{
		newTestUser(models.RoleVendor),
		newTestUser(models.RoleVendor),
		newTestUser(models.RoleVendor),
	}
	apps := make([]*models.VendorApplication, len(vendors))
	for i, v := range vendors {
		app, err := svc.Apply(ctx, v, order.ID, &models.ApplyRequest{ProposalAmount: 1000 + float64(i)*100})
		require.NoError(t, err)
		apps[i] = app
	}

	t.Run("only the order's client can accept", func(t *testing.T) {
		stranger := newTestUser(models.RoleClient)
		_, _, err := svc.Accept(ctx, stranger, apps[1].ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("accepting one rejects the rest and assigns the vendor", func(t *testing.T) {
		accepted, updated, err := svc.Accept(ctx, client, apps[1].ID)
		require.NoError(t, err)

		assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)
		assert.Equal(t, models.WorkOrderStatusAssigned, updated.Status)
		require.NotNil(t, updated.AssignedVendorID)
		assert.Equal(t, vendors[1].ID, *updated.AssignedVendorID)
		require.NotNil(t, updated.TotalAmount)
		assert.Equal(t, 1100.0, *updated.TotalAmount)

		remaining, err := stores.Applications.FindByWorkOrder(ctx, order.ID)
		require.NoError(t, err)
		acceptedCount, rejectedCount := 0, 0
		for _, a := range remaining {
			switch a.Status {
			case models.ApplicationStatusAccepted:
				acceptedCount++
			case models.ApplicationStatusRejected:
				rejectedCount++
			}
		}
		assert.Equal(t, 1, acceptedCount)
		assert.Equal(t, len(vendors)-1, rejectedCount)
	})

	t.Run("accepting a second application is a state conflict", func(t *testing.T) {
		_, _, err := svc.Accept(ctx, client, apps[2].ID)
		assert.True(t, IsInvalidState(err))
	})
}

func TestLifecycleTransitions(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)
	otherVendor := newTestUser(models.RoleVendor)

	order := seedOrder(t, svc, client)
	app, err := svc.Apply(ctx, vendor, order.ID, &models.ApplyRequest{ProposalAmount: 1000})
	require.NoError(t, err)
	_, _, err = svc.Accept(ctx, client, app.ID)
	require.NoError(t, err)

	t.Run("only the assigned vendor can start", func(t *testing.T) {
		_, err := svc.StartWork(ctx, otherVendor, order.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("completing before starting is a state conflict", func(t *testing.T) {
		_, err := svc.Complete(ctx, vendor, order.ID, "done")
		assert.True(t, IsInvalidState(err))
	})

	t.Run("assigned vendor starts work", func(t *testing.T) {
		updated, err := svc.StartWork(ctx, vendor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WorkOrderStatusInProgress, updated.Status)
	})

	t.Run("starting twice is a state conflict", func(t *testing.T) {
		_, err := svc.StartWork(ctx, vendor, order.ID)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("vendor completes with notes", func(t *testing.T) {
		updated, err := svc.Complete(ctx, vendor, order.ID, "Filters replaced, system tested")
		require.NoError(t, err)
		assert.Equal(t, models.WorkOrderStatusCompleted, updated.Status)

		stored, err := stores.WorkOrders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "Filters replaced, system tested", stored.CompletionNotes)
	})

	t.Run("vendor cannot approve", func(t *testing.T) {
		_, err := svc.Approve(ctx, vendor, order.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("client approves", func(t *testing.T) {
		updated, err := svc.Approve(ctx, client, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WorkOrderStatusApproved, updated.Status)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		missing := newTestUser(models.RoleVendor)
		_, err := svc.StartWork(ctx, missing, newTestUser(models.RoleClient).ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func approvedOrder(t *testing.T, svc *WorkOrderService, client, vendor *models.User, amount float64) *models.WorkOrder {
	t.Helper()
	ctx := context.Background()
	order := seedOrder(t, svc, client)
	app, err := svc.Apply(ctx, vendor, order.ID, &models.ApplyRequest{ProposalAmount: amount})
	require.NoError(t, err)
	_, _, err = svc.Accept(ctx, client, app.ID)
	require.NoError(t, err)
	_, err = svc.StartWork(ctx, vendor, order.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, vendor, order.ID, "done")
	require.NoError(t, err)
	updated, err := svc.Approve(ctx, client, order.ID)
	require.NoError(t, err)
	return updated
}

func TestSettle(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	manager := newTestUser(models.RoleManager)
	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)

	t.Run("default percentage splits the total", func(t *testing.T) {
		order := approvedOrder(t, svc, client, vendor, 1000)

		payment, updated, err := svc.Settle(ctx, manager, order.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, 1000.0, payment.TotalAmount)
		assert.Equal(t, 150.0, payment.ServiceFee)
		assert.Equal(t, 850.0, payment.VendorAmount)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		assert.NotEmpty(t, payment.TransactionID)
		assert.Equal(t, vendor.ID, payment.VendorID)
		assert.Equal(t, client.ID, payment.ClientID)

		assert.Equal(t, models.WorkOrderStatusPaid, updated.Status)
		require.NotNil(t, updated.VendorAmount)
		assert.Equal(t, 850.0, *updated.VendorAmount)
	})

	t.Run("fee and vendor amount always sum to the total", func(t *testing.T) {
		for _, pct := range []float64{0, 7.5, 15, 50, 100} {
			order := approvedOrder(t, svc, client, vendor, 1234.56)
			payment, _, err := svc.Settle(ctx, manager, order.ID, &pct)
			require.NoError(t, err)
			assert.InDelta(t, payment.TotalAmount, payment.ServiceFee+payment.VendorAmount, 1e-9)
			assert.InDelta(t, payment.TotalAmount*pct/100, payment.ServiceFee, 1e-9)
		}
	})

	t.Run("percentage outside the range fails validation", func(t *testing.T) {
		order := approvedOrder(t, svc, client, vendor, 500)
		for _, pct := range []float64{-1, 100.01} {
			_, _, err := svc.Settle(ctx, manager, order.ID, &pct)
			assert.True(t, IsValidation(err))
		}
	})

	t.Run("only the manager can settle", func(t *testing.T) {
		order := approvedOrder(t, svc, client, vendor, 500)
		_, _, err := svc.Settle(ctx, client, order.ID, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("settling an unapproved order is a state conflict", func(t *testing.T) {
		order := seedOrder(t, svc, client)
		_, _, err := svc.Settle(ctx, manager, order.ID, nil)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("settling twice is a state conflict", func(t *testing.T) {
		order := approvedOrder(t, svc, client, vendor, 800)
		_, _, err := svc.Settle(ctx, manager, order.ID, nil)
		require.NoError(t, err)
		_, _, err = svc.Settle(ctx, manager, order.ID, nil)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("fee adjusted just before the transaction is honored", func(t *testing.T) {
		order := approvedOrder(t, svc, client, vendor, 1000)

		racing := &repositories.Stores{
			Users:         stores.Users,
			WorkOrders:    stores.WorkOrders,
			Applications:  stores.Applications,
			Payments:      stores.Payments,
			Notifications: stores.Notifications,
			Tx:            feeChangingTxRunner{orders: stores.WorkOrders, orderID: order.ID, pct: 30},
		}
		racingSvc := NewWorkOrderService(racing)

		payment, updated, err := racingSvc.Settle(ctx, manager, order.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 300.0, payment.ServiceFee)
		assert.Equal(t, 700.0, payment.VendorAmount)
		assert.Equal(t, 30.0, updated.ServiceFeePercentage)
	})
}

// feeChangingTxRunner adjusts the stored fee right before the transaction
// body runs, standing in for a concurrent SetServiceFeePercentage call.
type feeChangingTxRunner struct {
	orders  repositories.WorkOrderStore
	orderID primitive.ObjectID
	pct     float64
}

func (r feeChangingTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, err := r.orders.SetServiceFee(ctx, r.orderID, r.pct); err != nil {
		return err
	}
	return fn(ctx)
}

func TestSetServiceFeePercentage(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	manager := newTestUser(models.RoleManager)
	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)
	order := seedOrder(t, svc, client)

	t.Run("manager adjusts the fee", func(t *testing.T) {
		updated, err := svc.SetServiceFeePercentage(ctx, manager, order.ID, 20)
		require.NoError(t, err)
		assert.Equal(t, 20.0, updated.ServiceFeePercentage)
	})

	t.Run("client cannot adjust the fee", func(t *testing.T) {
		_, err := svc.SetServiceFeePercentage(ctx, client, order.ID, 10)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("out-of-range percentage fails validation", func(t *testing.T) {
		_, err := svc.SetServiceFeePercentage(ctx, manager, order.ID, 120)
		assert.True(t, IsValidation(err))
	})

	t.Run("stored fee drives a later settlement", func(t *testing.T) {
		fresh := approvedOrder(t, svc, client, vendor, 1000)
		_, err := svc.SetServiceFeePercentage(ctx, manager, fresh.ID, 10)
		require.NoError(t, err)

		payment, _, err := svc.Settle(ctx, manager, fresh.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, payment.ServiceFee)
		assert.Equal(t, 900.0, payment.VendorAmount)
	})

	t.Run("paid orders cannot be adjusted", func(t *testing.T) {
		paid := approvedOrder(t, svc, client, vendor, 1000)
		_, _, err := svc.Settle(ctx, manager, paid.ID, nil)
		require.NoError(t, err)
		_, err = svc.SetServiceFeePercentage(ctx, manager, paid.ID, 5)
		assert.True(t, IsInvalidState(err))
	})
}

func TestAccountSuspension(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	manager := newTestUser(models.RoleManager)
	vendor := newTestUser(models.RoleVendor)
	require.NoError(t, stores.Users.Insert(ctx, vendor))

	t.Run("manager suspends and reactivates", func(t *testing.T) {
		suspended, err := svc.SuspendAccount(ctx, manager, vendor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusSuspended, suspended.Status)

		active, err := svc.ReactivateAccount(ctx, manager, vendor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, active.Status)
	})

	t.Run("non-manager cannot suspend", func(t *testing.T) {
		_, err := svc.SuspendAccount(ctx, vendor, vendor.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := svc.SuspendAccount(ctx, manager, newTestUser(models.RoleClient).ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// failingPaymentStore simulates a storage outage during settlement.
type failingPaymentStore struct{}

func (failingPaymentStore) Insert(context.Context, *models.Payment) error {
	return errors.New("connection reset by peer")
}

func (failingPaymentStore) FindByWorkOrder(context.Context, primitive.ObjectID) (*models.Payment, error) {
	return nil, mongo.ErrNoDocuments
}

func (failingPaymentStore) FindAll(context.Context) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

func TestSettleDependencyFailure(t *testing.T) {
	stores := newFakeStores()
	svc := NewWorkOrderService(stores)
	ctx := context.Background()

	manager := newTestUser(models.RoleManager)
	client := newTestUser(models.RoleClient)
	vendor := newTestUser(models.RoleVendor)
	order := approvedOrder(t, svc, client, vendor, 1000)

	broken := &repositories.Stores{
		Users:         stores.Users,
		WorkOrders:    stores.WorkOrders,
		Applications:  stores.Applications,
		Payments:      failingPaymentStore{},
		Notifications: stores.Notifications,
		Tx:            fakeTxRunner{},
	}
	brokenSvc := NewWorkOrderService(broken)

	_, _, err := brokenSvc.Settle(ctx, manager, order.ID, nil)
	assert.True(t, IsDependency(err))
}
