package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/source1pro/source1_backend/controllers"
	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
)

// RegisterWorkOrderRoutes sets up the client- and vendor-facing work order routes
func RegisterWorkOrderRoutes(e *echo.Echo, workOrderController *controllers.WorkOrderController) {
	r := e.Group("/api/work-orders")
	r.Use(middleware.JWTMiddleware())

	// Readable by any authenticated role; the controller scopes the result
	r.GET("", workOrderController.GetMyWorkOrders)
	r.GET("/open", workOrderController.GetOpenWorkOrders, middleware.RequireUserType(models.RoleVendor, models.RoleManager))
	r.GET("/:id", workOrderController.GetWorkOrder)

	// Client lifecycle
	r.POST("", workOrderController.CreateWorkOrder, middleware.RequireUserType(models.RoleClient))
	r.PUT("/applications/:applicationId/accept", workOrderController.AcceptApplication, middleware.RequireUserType(models.RoleClient))
	r.PUT("/:id/approve", workOrderController.ApproveWork, middleware.RequireUserType(models.RoleClient))

	// Vendor lifecycle
	r.POST("/:id/apply", workOrderController.Apply, middleware.RequireUserType(models.RoleVendor))
	r.PUT("/:id/start", workOrderController.StartWork, middleware.RequireUserType(models.RoleVendor))
	r.PUT("/:id/complete", workOrderController.CompleteWork, middleware.RequireUserType(models.RoleVendor))
}
