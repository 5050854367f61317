// services/workorder_service.go
package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
	"github.com/source1pro/source1_backend/utils"
)

// WorkOrderService owns the work-order lifecycle: the status state machine,
// the single-acceptance rule for vendor applications, and payment settlement.
// Every operation is gated by the caller's role and, where relevant, by
// ownership of the record being touched.
type WorkOrderService struct {
	stores        *repositories.Stores
	defaultFeePct float64
}

// NewWorkOrderService creates a new work order service. The platform default
// service-fee percentage can be overridden with SERVICE_FEE_PERCENT.
func NewWorkOrderService(stores *repositories.Stores) *WorkOrderService {
	feePct := models.DefaultServiceFeePercentage
	if pctStr := os.Getenv("SERVICE_FEE_PERCENT"); pctStr != "" {
		if pct, err := strconv.ParseFloat(pctStr, 64); err == nil && pct >= 0 && pct <= 100 {
			feePct = pct
		}
	}
	return &WorkOrderService{stores: stores, defaultFeePct: feePct}
}

// Create opens a new work order for the calling client.
func (s *WorkOrderService) Create(ctx context.Context, caller *models.User, req *models.CreateWorkOrderRequest) (*models.WorkOrder, error) {
	if !caller.IsClient() {
		return nil, ErrForbidden
	}

	title := utils.SanitizeInput(req.Title)
	description := utils.SanitizeInput(req.Description)
	category := utils.SanitizeInput(req.Category)
	location := utils.SanitizeInput(req.Location)

	if title == "" || description == "" || category == "" || location == "" {
		return nil, NewValidationError("title, description, category and location are required")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, NewValidationError("invalid priority %q", priority)
	}

	if req.BudgetMin != nil && *req.BudgetMin < 0 {
		return nil, NewValidationError("budget minimum cannot be negative")
	}
	if req.BudgetMax != nil && *req.BudgetMax < 0 {
		return nil, NewValidationError("budget maximum cannot be negative")
	}
	if req.BudgetMin != nil && req.BudgetMax != nil && *req.BudgetMin > *req.BudgetMax {
		return nil, NewValidationError("budget minimum cannot exceed budget maximum")
	}

	order := &models.WorkOrder{
		ClientID:             caller.ID,
		Title:                title,
		Description:          description,
		Category:             category,
		Priority:             priority,
		Status:               models.WorkOrderStatusOpen,
		BudgetMin:            req.BudgetMin,
		BudgetMax:            req.BudgetMax,
		Location:             location,
		ServiceFeePercentage: s.defaultFeePct,
	}

	if err := s.stores.WorkOrders.Insert(ctx, order); err != nil {
		return nil, NewDependencyError("create work order", err)
	}
	return order, nil
}

// Apply submits the calling vendor's bid against an open work order.
func (s *WorkOrderService) Apply(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID, req *models.ApplyRequest) (*models.VendorApplication, error) {
	if !caller.IsVendor() {
		return nil, ErrForbidden
	}
	// Vendor accounts bid only once the manager has activated them
	if caller.Status != models.UserStatusActive {
		return nil, ErrForbidden
	}
	if req.ProposalAmount <= 0 {
		return nil, NewValidationError("proposal amount must be positive")
	}

	order, err := s.findOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.WorkOrderStatusOpen {
		return nil, NewInvalidStateError("work order is %s, applications are only accepted while it is open", order.Status)
	}

	app := &models.VendorApplication{
		WorkOrderID:         workOrderID,
		VendorID:            caller.ID,
		ProposalAmount:      req.ProposalAmount,
		EstimatedCompletion: req.EstimatedCompletion,
		ProposalNotes:       utils.SanitizeInput(req.ProposalNotes),
		Status:              models.ApplicationStatusPending,
	}

	if err := s.stores.Applications.Insert(ctx, app); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, NewValidationError("you have already applied to this work order")
		}
		return nil, NewDependencyError("create application", err)
	}
	return app, nil
}

// Accept picks one application for the caller's open work order. The accepted
// application's vendor becomes the assigned vendor, the proposal amount
// becomes the order's total amount, and every other pending application is
// rejected. The whole effect is applied in one transaction.
func (s *WorkOrderService) Accept(ctx context.Context, caller *models.User, applicationID primitive.ObjectID) (*models.VendorApplication, *models.WorkOrder, error) {
	app, err := s.findApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}

	order, err := s.findOrder(ctx, app.WorkOrderID)
	if err != nil {
		return nil, nil, err
	}
	if !s.ownsOrder(caller, order) {
		return nil, nil, ErrForbidden
	}
	if order.Status != models.WorkOrderStatusOpen {
		return nil, nil, NewInvalidStateError("work order is %s, a vendor can only be accepted while it is open", order.Status)
	}

	err = s.stores.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := s.stores.WorkOrders.Transition(txCtx, order.ID,
			models.WorkOrderStatusOpen, models.WorkOrderStatusAssigned,
			map[string]interface{}{
				"assignedVendorId": app.VendorID,
				"totalAmount":      app.ProposalAmount,
			})
		if err != nil {
			return err
		}
		if !moved {
			return NewInvalidStateError("work order is no longer open")
		}

		accepted, err := s.stores.Applications.SetStatus(txCtx, app.ID,
			models.ApplicationStatusPending, models.ApplicationStatusAccepted)
		if err != nil {
			return err
		}
		if !accepted {
			return NewInvalidStateError("application is no longer pending")
		}

		_, err = s.stores.Applications.RejectOthers(txCtx, order.ID, app.ID)
		return err
	})
	if err != nil {
		return nil, nil, s.wrapTxError("accept application", err)
	}

	app.Status = models.ApplicationStatusAccepted
	order.Status = models.WorkOrderStatusAssigned
	order.AssignedVendorID = &app.VendorID
	order.TotalAmount = &app.ProposalAmount
	return app, order, nil
}

// StartWork moves an assigned order into in_progress. Vendor-initiated.
func (s *WorkOrderService) StartWork(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID) (*models.WorkOrder, error) {
	return s.advance(ctx, caller, workOrderID,
		models.WorkOrderStatusAssigned, models.WorkOrderStatusInProgress, nil)
}

// Complete moves an in_progress order to completed, storing the vendor's notes.
func (s *WorkOrderService) Complete(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID, notes string) (*models.WorkOrder, error) {
	set := map[string]interface{}{
		"completionNotes": utils.SanitizeInput(notes),
	}
	order, err := s.advance(ctx, caller, workOrderID,
		models.WorkOrderStatusInProgress, models.WorkOrderStatusCompleted, set)
	if err != nil {
		return nil, err
	}
	order.CompletionNotes = utils.SanitizeInput(notes)
	return order, nil
}

// Approve lets the owning client sign off on completed work.
func (s *WorkOrderService) Approve(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID) (*models.WorkOrder, error) {
	return s.advance(ctx, caller, workOrderID,
		models.WorkOrderStatusCompleted, models.WorkOrderStatusApproved, nil)
}

// advance performs a role- and ownership-checked single-edge status move.
func (s *WorkOrderService) advance(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID, from, to string, set map[string]interface{}) (*models.WorkOrder, error) {
	if !models.CanTransition(from, to) {
		return nil, NewInvalidStateError("a work order cannot move from %s to %s", from, to)
	}

	order, err := s.findOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	switch from {
	case models.WorkOrderStatusAssigned, models.WorkOrderStatusInProgress:
		// vendor-initiated edges
		if !caller.IsVendor() || order.AssignedVendorID == nil || *order.AssignedVendorID != caller.ID {
			return nil, ErrForbidden
		}
	case models.WorkOrderStatusCompleted:
		// client approval
		if !s.ownsOrder(caller, order) {
			return nil, ErrForbidden
		}
	}

	if order.Status != from {
		return nil, NewInvalidStateError("work order is %s, expected %s", order.Status, from)
	}

	moved, err := s.stores.WorkOrders.Transition(ctx, workOrderID, from, to, set)
	if err != nil {
		return nil, NewDependencyError("update work order", err)
	}
	if !moved {
		return nil, NewInvalidStateError("work order is no longer %s", from)
	}

	order.Status = to
	return order, nil
}

// Settle computes the payment split for an approved order, records the
// payment, and marks the order paid — all in one transaction. The order is
// read inside the transaction so a fee adjustment landing concurrently is
// either observed or serialized after the settlement, never lost. The
// optional percentage overrides the order's stored service fee.
func (s *WorkOrderService) Settle(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID, pctOverride *float64) (*models.Payment, *models.WorkOrder, error) {
	if !caller.IsManager() {
		return nil, nil, ErrForbidden
	}
	if pctOverride != nil && (*pctOverride < 0 || *pctOverride > 100) {
		return nil, nil, NewValidationError("service fee percentage must be between 0 and 100")
	}

	var payment *models.Payment
	var order *models.WorkOrder
	err := s.stores.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.findOrder(txCtx, workOrderID)
		if err != nil {
			return err
		}
		if order.Status != models.WorkOrderStatusApproved {
			return NewInvalidStateError("work order is %s, only approved orders can be settled", order.Status)
		}
		if order.TotalAmount == nil || order.AssignedVendorID == nil {
			return NewInvalidStateError("work order has no total amount or assigned vendor")
		}

		pct := order.ServiceFeePercentage
		if pctOverride != nil {
			pct = *pctOverride
		}

		total := *order.TotalAmount
		serviceFee := total * pct / 100
		vendorAmount := total - serviceFee

		payment = &models.Payment{
			WorkOrderID:   order.ID,
			ClientID:      order.ClientID,
			VendorID:      *order.AssignedVendorID,
			TotalAmount:   total,
			VendorAmount:  vendorAmount,
			ServiceFee:    serviceFee,
			Status:        models.PaymentStatusCompleted,
			TransactionID: uuid.NewString(),
		}

		moved, err := s.stores.WorkOrders.Transition(txCtx, order.ID,
			models.WorkOrderStatusApproved, models.WorkOrderStatusPaid,
			map[string]interface{}{
				"vendorAmount":         vendorAmount,
				"serviceFeePercentage": pct,
			})
		if err != nil {
			return err
		}
		if !moved {
			return NewInvalidStateError("work order is no longer approved")
		}

		if err := s.stores.Payments.Insert(txCtx, payment); err != nil {
			if repositories.IsDuplicateKey(err) {
				return NewInvalidStateError("work order has already been settled")
			}
			return err
		}

		order.Status = models.WorkOrderStatusPaid
		order.VendorAmount = &vendorAmount
		order.ServiceFeePercentage = pct
		return nil
	})
	if err != nil {
		return nil, nil, s.wrapTxError("settle work order", err)
	}

	return payment, order, nil
}

// SetServiceFeePercentage overwrites the stored fee percentage for a future
// settlement. Manager-initiated, legal in any non-terminal state.
func (s *WorkOrderService) SetServiceFeePercentage(ctx context.Context, caller *models.User, workOrderID primitive.ObjectID, pct float64) (*models.WorkOrder, error) {
	if !caller.IsManager() {
		return nil, ErrForbidden
	}
	if pct < 0 || pct > 100 {
		return nil, NewValidationError("service fee percentage must be between 0 and 100")
	}

	order, err := s.findOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.WorkOrderStatusPaid {
		return nil, NewInvalidStateError("work order is already paid")
	}

	updated, err := s.stores.WorkOrders.SetServiceFee(ctx, workOrderID, pct)
	if err != nil {
		return nil, NewDependencyError("update service fee", err)
	}
	if !updated {
		return nil, NewInvalidStateError("work order is already paid")
	}

	order.ServiceFeePercentage = pct
	return order, nil
}

// SuspendAccount flips an account to suspended. In-flight work orders and
// applications are left untouched.
func (s *WorkOrderService) SuspendAccount(ctx context.Context, caller *models.User, accountID primitive.ObjectID) (*models.User, error) {
	return s.setAccountStatus(ctx, caller, accountID, models.UserStatusSuspended)
}

// ReactivateAccount flips an account back to active. Also used by the
// manager to activate pending vendor accounts.
func (s *WorkOrderService) ReactivateAccount(ctx context.Context, caller *models.User, accountID primitive.ObjectID) (*models.User, error) {
	return s.setAccountStatus(ctx, caller, accountID, models.UserStatusActive)
}

func (s *WorkOrderService) setAccountStatus(ctx context.Context, caller *models.User, accountID primitive.ObjectID, status string) (*models.User, error) {
	if !caller.IsManager() {
		return nil, ErrForbidden
	}

	user, err := s.stores.Users.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, NewDependencyError("find account", err)
	}

	updated, err := s.stores.Users.SetStatus(ctx, accountID, status)
	if err != nil {
		return nil, NewDependencyError("update account status", err)
	}
	if !updated {
		return nil, ErrNotFound
	}

	user.Status = status
	return user, nil
}

func (s *WorkOrderService) findOrder(ctx context.Context, id primitive.ObjectID) (*models.WorkOrder, error) {
	order, err := s.stores.WorkOrders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, NewDependencyError("find work order", err)
	}
	return order, nil
}

func (s *WorkOrderService) findApplication(ctx context.Context, id primitive.ObjectID) (*models.VendorApplication, error) {
	app, err := s.stores.Applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, NewDependencyError("find application", err)
	}
	return app, nil
}

func (s *WorkOrderService) ownsOrder(caller *models.User, order *models.WorkOrder) bool {
	return caller.IsClient() && order.ClientID == caller.ID
}

// wrapTxError keeps the service's own error taxonomy intact across the
// transaction boundary and classifies anything else as a dependency failure.
func (s *WorkOrderService) wrapTxError(op string, err error) error {
	if IsValidation(err) || IsInvalidState(err) || IsDependency(err) {
		return err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	if strings.Contains(err.Error(), "WriteConflict") {
		return NewInvalidStateError("work order was modified concurrently, please retry")
	}
	return NewDependencyError(op, err)
}
