package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
	"github.com/source1pro/source1_backend/services"
	ws "github.com/source1pro/source1_backend/websocket"
)

const dashboardStatsCacheKey = "dashboard:stats"

// AdminController handles the platform manager's routes
type AdminController struct {
	stores *repositories.Stores
	svc    *services.WorkOrderService
	redis  *redis.Client
	hub    *ws.Hub
}

// NewAdminController creates a new admin controller
func NewAdminController(stores *repositories.Stores, svc *services.WorkOrderService, redisClient *redis.Client, hub *ws.Hub) *AdminController {
	return &AdminController{stores: stores, svc: svc, redis: redisClient, hub: hub}
}

func (ac *AdminController) caller(c echo.Context, ctx context.Context) (*models.User, error) {
	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := ac.stores.Users.FindByID(ctx, objID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Account not found")
		}
		return nil, services.NewDependencyError("find account", err)
	}
	return user, nil
}

// GetAllUsers lists every account on the platform
func (ac *AdminController) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	users, err := ac.stores.Users.FindAll(ctx)
	if err != nil {
		return respondError(c, services.NewDependencyError("list users", err))
	}

	for i := range users {
		users[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// SuspendUser suspends an account
func (ac *AdminController) SuspendUser(c echo.Context) error {
	return ac.setUserStatus(c, ac.svc.SuspendAccount, "Account suspended successfully")
}

// ReactivateUser reactivates a suspended or pending account
func (ac *AdminController) ReactivateUser(c echo.Context) error {
	return ac.setUserStatus(c, ac.svc.ReactivateAccount, "Account reactivated successfully")
}

func (ac *AdminController) setUserStatus(c echo.Context,
	op func(context.Context, *models.User, primitive.ObjectID) (*models.User, error),
	successMsg string) error {

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	caller, err := ac.caller(c, ctx)
	if err != nil {
		return err
	}

	accountID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	user, err := op(ctx, caller, accountID)
	if err != nil {
		return respondError(c, err)
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: successMsg,
		Data:    user,
	})
}

// SetServiceFee overrides the service-fee percentage on a work order
func (ac *AdminController) SetServiceFee(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	caller, err := ac.caller(c, ctx)
	if err != nil {
		return err
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.ServiceFeeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	order, err := ac.svc.SetServiceFeePercentage(ctx, caller, orderID, req.ServiceFeePercentage)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service fee updated successfully",
		Data:    order,
	})
}

// SettleWorkOrder processes payment for an approved work order
func (ac *AdminController) SettleWorkOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	caller, err := ac.caller(c, ctx)
	if err != nil {
		return err
	}

	orderID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.SettleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	payment, order, err := ac.svc.Settle(ctx, caller, orderID, req.ServiceFeePercentage)
	if err != nil {
		return respondError(c, err)
	}

	ac.invalidateStatsCache(ctx)
	go ac.notifySettled(payment, order)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment processed successfully",
		Data: map[string]interface{}{
			"payment":   payment,
			"workOrder": order,
		},
	})
}

// GetAllPayments lists every settlement record
func (ac *AdminController) GetAllPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	payments, err := ac.stores.Payments.FindAll(ctx)
	if err != nil {
		return respondError(c, services.NewDependencyError("list payments", err))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

// DashboardStats aggregates platform totals for the manager dashboard
type DashboardStats struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalClients    int     `json:"totalClients"`
	TotalVendors    int     `json:"totalVendors"`
	TotalWorkOrders int     `json:"totalWorkOrders"`
	OpenWorkOrders  int     `json:"openWorkOrders"`
	PaidWorkOrders  int     `json:"paidWorkOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalFees       float64 `json:"totalFees"`
}

// GetDashboardStats returns platform totals, cached in Redis for a minute
func (ac *AdminController) GetDashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if ac.redis != nil {
		if cached, err := ac.redis.Get(ctx, dashboardStatsCacheKey).Result(); err == nil {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Dashboard stats retrieved successfully",
					Data:    stats,
				})
			}
		}
	}

	stats, err := ac.computeStats(ctx)
	if err != nil {
		return respondError(c, err)
	}

	if ac.redis != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			ac.redis.Set(ctx, dashboardStatsCacheKey, encoded, time.Minute)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard stats retrieved successfully",
		Data:    stats,
	})
}

func (ac *AdminController) computeStats(ctx context.Context) (*DashboardStats, error) {
	users, err := ac.stores.Users.FindAll(ctx)
	if err != nil {
		return nil, services.NewDependencyError("list users", err)
	}

	orders, err := ac.stores.WorkOrders.FindAll(ctx)
	if err != nil {
		return nil, services.NewDependencyError("list work orders", err)
	}

	payments, err := ac.stores.Payments.FindAll(ctx)
	if err != nil {
		return nil, services.NewDependencyError("list payments", err)
	}

	stats := &DashboardStats{TotalUsers: len(users), TotalWorkOrders: len(orders)}
	for _, u := range users {
		switch u.UserType {
		case models.RoleClient:
			stats.TotalClients++
		case models.RoleVendor:
			stats.TotalVendors++
		}
	}
	for _, o := range orders {
		switch o.Status {
		case models.WorkOrderStatusOpen:
			stats.OpenWorkOrders++
		case models.WorkOrderStatusPaid:
			stats.PaidWorkOrders++
		}
	}
	for _, p := range payments {
		stats.TotalRevenue += p.TotalAmount
		stats.TotalFees += p.ServiceFee
	}
	return stats, nil
}

func (ac *AdminController) invalidateStatsCache(ctx context.Context) {
	if ac.redis != nil {
		ac.redis.Del(ctx, dashboardStatsCacheKey)
	}
}

func (ac *AdminController) notifySettled(payment *models.Payment, order *models.WorkOrder) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := "Payment for your work order has been processed"
	for _, userID := range []primitive.ObjectID{payment.VendorID, payment.ClientID} {
		if err := ac.stores.Notifications.Save(ctx, userID, "Payment Processed", msg,
			ws.NotificationTypePaymentProcessed, payment); err != nil {
			continue
		}
		if ac.hub != nil {
			_ = ac.hub.NotifyWorkOrderUpdate(userID, ws.NotificationTypePaymentProcessed, msg, payment)
		}
	}
}
