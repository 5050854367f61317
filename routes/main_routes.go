package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/controllers"
	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
	"github.com/source1pro/source1_backend/services"
	"github.com/source1pro/source1_backend/utils"
	"github.com/source1pro/source1_backend/websocket"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, db *mongo.Client, redisClient *redis.Client) {
	hub := websocket.NewHub()
	go hub.Run()

	stores := repositories.NewMongoStores(db)
	workOrderService := services.NewWorkOrderService(stores)
	googleAuth := services.NewGoogleAuthService(stores.Users)
	mailer := services.NewSMTPMailer()

	authController := controllers.NewAuthController(stores, googleAuth)
	userController := controllers.NewUserController(stores)
	workOrderController := controllers.NewWorkOrderController(stores, workOrderService, hub)
	adminController := controllers.NewAdminController(stores, workOrderService, redisClient, hub)
	contactController := controllers.NewContactController(mailer)

	// Public routes
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Service is healthy",
		})
	})
	e.POST("/api/contact", contactController.SubmitInquiry)

	RegisterAuthRoutes(e, authController)
	RegisterUserRoutes(e, db, userController, hub)
	RegisterWorkOrderRoutes(e, workOrderController)
	RegisterAdminRoutes(e, adminController)
}

// RegisterUserRoutes sets up profile, notification and websocket routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, userController *controllers.UserController, hub *websocket.Hub) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.GET("/users/profile", userController.GetProfile)
	r.GET("/users/notifications", userController.GetNotifications)
	r.PUT("/users/notifications/:id/read", userController.MarkNotificationRead)
	r.GET("/applications/mine", userController.GetMyApplications)

	// WebSocket route
	r.GET("/ws", func(c echo.Context) error {
		user, err := utils.GetUserFromToken(c, db)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		}
		return websocket.HandleWebSocket(c, hub, user.ID)
	})
}
