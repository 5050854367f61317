package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/services"
)

// respondError maps service-layer errors onto HTTP status codes. Validation
// failures are the caller's fault, state conflicts mean the record moved
// underneath them, and dependency errors are retryable upstream failures.
func respondError(c echo.Context, err error) error {
	switch {
	case services.IsValidation(err):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	case services.IsInvalidState(err):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Record not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You are not allowed to perform this action",
		})
	case services.IsDependency(err):
		c.Logger().Errorf("dependency failure: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "A downstream service failed, please retry",
		})
	default:
		c.Logger().Errorf("unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
