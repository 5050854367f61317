package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/source1pro/source1_backend/middleware"
	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/repositories"
	"github.com/source1pro/source1_backend/services"
)

// UserController handles profile and notification routes
type UserController struct {
	stores *repositories.Stores
}

// NewUserController creates a new user controller
func NewUserController(stores *repositories.Stores) *UserController {
	return &UserController{stores: stores}
}

func (uc *UserController) callerID(c echo.Context) (primitive.ObjectID, error) {
	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return objID, nil
}

// GetProfile returns the authenticated user's account
func (uc *UserController) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := uc.callerID(c)
	if err != nil {
		return err
	}

	user, err := uc.stores.Users.FindByID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return respondError(c, services.ErrNotFound)
		}
		return respondError(c, services.NewDependencyError("find account", err))
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// GetNotifications returns the caller's in-app notifications, newest first
func (uc *UserController) GetNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := uc.callerID(c)
	if err != nil {
		return err
	}

	notifications, err := uc.stores.Notifications.FindByUser(ctx, userID)
	if err != nil {
		return respondError(c, services.NewDependencyError("list notifications", err))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    notifications,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read
func (uc *UserController) MarkNotificationRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := uc.callerID(c)
	if err != nil {
		return err
	}

	notifID, err := pathObjectID(c, "id")
	if err != nil {
		return err
	}

	updated, err := uc.stores.Notifications.MarkRead(ctx, notifID, userID)
	if err != nil {
		return respondError(c, services.NewDependencyError("update notification", err))
	}
	if !updated {
		return respondError(c, services.ErrNotFound)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// GetMyApplications lists the calling vendor's applications
func (uc *UserController) GetMyApplications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := uc.callerID(c)
	if err != nil {
		return err
	}

	applications, err := uc.stores.Applications.FindByVendor(ctx, userID)
	if err != nil {
		return respondError(c, services.NewDependencyError("list applications", err))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Applications retrieved successfully",
		Data:    applications,
	})
}
