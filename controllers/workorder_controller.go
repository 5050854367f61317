package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
	"github.com/source1pro/source1_backend/services"
	ws "github.com/source1pro/source1_backend/websocket"
)

// WorkOrderController handles the client- and vendor-facing work order routes
type WorkOrderController struct {
	stores *repositories.Stores
	svc    *services.WorkOrderService
	hub    *ws.Hub
}

// NewWorkOrderController creates a new work order controller
func NewWorkOrderController(stores *repositories.Stores, svc *services.WorkOrderService, hub *ws.Hub) *WorkOrderController {
	return &WorkOrderController{stores: stores, svc: svc, hub: hub}
}

// caller resolves the authenticated user and rejects suspended accounts.
func (wc *WorkOrderController) caller(c echo.Context, ctx context.Context) (*models.User, error) {
	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := wc.stores.Users.FindByID(ctx, objID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Account not found")
		}
		return nil, services.NewDependencyError("find account", err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Account is suspended")
	}
	return user, nil
}

func pathObjectID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID format")
	}
	return id, nil
}

// CreateWorkOrder opens a new work order for the calling client
func (wc *WorkOrderController) CreateWorkOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	var req models.CreateWorkOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	order, err := wc.svc.Create(ctx, user, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Work order created successfully",
		Data:    order,
	})
}

// GetMyWorkOrders lists the caller's work orders, by role
func (wc *WorkOrderController) GetMyWorkOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	var orders []models.WorkOrder
	switch {
	case user.IsClient():
		orders, err = wc.stores.WorkOrders.FindByClient(ctx, user.ID)
	case user.IsVendor():
		orders, err = wc.stores.WorkOrders.FindByVendor(ctx, user.ID)
	default:
		orders, err = wc.stores.WorkOrders.FindAll(ctx)
	}
	if err != nil {
		return respondError(c, services.NewDependencyError("list work orders", err))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Work orders retrieved successfully",
		Data:    orders,
	})
}

// GetOpenWorkOrders lists orders vendors can still bid on
func (wc *WorkOrderController) GetOpenWorkOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := wc.caller(c, ctx); err != nil {
		return err
	}

	orders, err := wc.stores.WorkOrders.FindByStatus(ctx, models.WorkOrderStatusOpen)
	if err != nil {
		return respondError(c, services.NewDependencyError("list open work orders", err))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Open work orders retrieved successfully",
		Data:    orders,
	})
}

// GetWorkOrder returns a single work order with its applications
func (wc *WorkOrderController) GetWorkOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	order, err := wc.stores.WorkOrders.FindByID(ctx, orderID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return respondError(c, services.ErrNotFound)
		}
		return respondError(c, services.NewDependencyError("find work order", err))
	}

	// Applications are only visible to the owning client and the manager
	data := map[string]interface{}{"workOrder": order}
	if user.IsManager() || (user.IsClient() && order.ClientID == user.ID) {
		apps, err := wc.stores.Applications.FindByWorkOrder(ctx, orderID)
		if err != nil {
			return respondError(c, services.NewDependencyError("list applications", err))
		}
		data["applications"] = apps
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Work order retrieved successfully",
		Data:    data,
	})
}

// Apply submits a vendor application against an open work order
func (wc *WorkOrderController) Apply(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.ApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	app, err := wc.svc.Apply(ctx, user, orderID, &req)
	if err != nil {
		return respondError(c, err)
	}

	// Let the client know, best effort
	go wc.notifyNewApplication(orderID, app)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Application submitted successfully",
		Data:    app,
	})
}

// AcceptApplication accepts one vendor application and rejects the rest
func (wc *WorkOrderController) AcceptApplication(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	appID, err := pathObjectID(c, "applicationId")
	if err != nil {
		return err
	}

	app, order, err := wc.svc.Accept(ctx, user, appID)
	if err != nil {
		return respondError(c, err)
	}

	go wc.notifyAccepted(app, order)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Vendor accepted successfully",
		Data: map[string]interface{}{
			"application": app,
			"workOrder":   order,
		},
	})
}

// StartWork marks an assigned order as in progress
func (wc *WorkOrderController) StartWork(c echo.Context) error {
	return wc.transition(c, func(ctx context.Context, user *models.User, orderID primitive.ObjectID) (*models.WorkOrder, error) {
		return wc.svc.StartWork(ctx, user, orderID)
	}, "Work started successfully", ws.NotificationTypeWorkStarted, "Work has started on your order")
}

// CompleteWork marks an in-progress order as completed
func (wc *WorkOrderController) CompleteWork(c echo.Context) error {
	var req models.CompleteWorkOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	return wc.transition(c, func(ctx context.Context, user *models.User, orderID primitive.ObjectID) (*models.WorkOrder, error) {
		return wc.svc.Complete(ctx, user, orderID, req.CompletionNotes)
	}, "Work completed successfully", ws.NotificationTypeWorkCompleted, "Work on your order is complete and awaiting your approval")
}

// ApproveWork lets the owning client approve completed work
func (wc *WorkOrderController) ApproveWork(c echo.Context) error {
	return wc.transition(c, func(ctx context.Context, user *models.User, orderID primitive.ObjectID) (*models.WorkOrder, error) {
		return wc.svc.Approve(ctx, user, orderID)
	}, "Work approved successfully", ws.NotificationTypeWorkApproved, "The client approved your work")
}

func (wc *WorkOrderController) transition(c echo.Context,
	op func(context.Context, *models.User, primitive.ObjectID) (*models.WorkOrder, error),
	successMsg, notifType, notifMsg string) error {

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := wc.caller(c, ctx)
	if err != nil {
		return err
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	order, err := op(ctx, user, orderID)
	if err != nil {
		return respondError(c, err)
	}

	go wc.notifyCounterparty(user, order, notifType, notifMsg)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: successMsg,
		Data:    order,
	})
}

// notifyNewApplication pings the order's client about a fresh vendor bid
func (wc *WorkOrderController) notifyNewApplication(orderID primitive.ObjectID, app *models.VendorApplication) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := wc.stores.WorkOrders.FindByID(ctx, orderID)
	if err != nil {
		return
	}

	if !wc.saveNotification(order.ClientID, "New Application",
		fmt.Sprintf("A vendor applied to %q", order.Title),
		ws.NotificationTypeNewApplication, app) {
		return
	}
	if wc.hub != nil {
		_ = wc.hub.NotifyNewApplication(order.ClientID, app)
	}
}

func (wc *WorkOrderController) notifyAccepted(app *models.VendorApplication, order *models.WorkOrder) {
	if !wc.saveNotification(app.VendorID, "Application Accepted",
		fmt.Sprintf("Your application for %q was accepted", order.Title),
		ws.NotificationTypeApplicationAccepted, order) {
		return
	}
	if wc.hub != nil {
		_ = wc.hub.NotifyApplicationAccepted(app.VendorID, order)
	}
}

// notifyCounterparty sends the status-change notification to the other side
// of the work order.
func (wc *WorkOrderController) notifyCounterparty(actor *models.User, order *models.WorkOrder, notifType, message string) {
	var target primitive.ObjectID
	if actor.IsVendor() {
		target = order.ClientID
	} else if order.AssignedVendorID != nil {
		target = *order.AssignedVendorID
	} else {
		return
	}

	if !wc.saveNotification(target, "Work Order Update", message, notifType, order) {
		return
	}
	if wc.hub != nil {
		_ = wc.hub.NotifyWorkOrderUpdate(target, notifType, message, order)
	}
}

// saveNotification persists the in-app copy; notifications are best effort.
func (wc *WorkOrderController) saveNotification(userID primitive.ObjectID, title, message, notifType string, data interface{}) bool {
	return wc.stores.Notifications.Save(context.Background(), userID, title, message, notifType, data) == nil
}
