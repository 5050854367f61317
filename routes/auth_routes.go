package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/source1pro/source1_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.GET("/google/callback", authController.GoogleCallback)
	auth.POST("/google/callback", authController.GoogleCallback)
}
