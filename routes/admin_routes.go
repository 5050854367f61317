package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/source1pro/source1_backend/controllers"
	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
)

// RegisterAdminRoutes sets up the platform manager's routes
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType(models.RoleManager))

	r.GET("/users", adminController.GetAllUsers)
	r.PUT("/users/:id/suspend", adminController.SuspendUser)
	r.PUT("/users/:id/reactivate", adminController.ReactivateUser)

	r.PUT("/work-orders/:id/service-fee", adminController.SetServiceFee)
	r.POST("/work-orders/:id/settle", adminController.SettleWorkOrder)

	r.GET("/payments", adminController.GetAllPayments)
	r.GET("/dashboard/stats", adminController.GetDashboardStats)
}
