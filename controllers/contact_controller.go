package controllers

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/source1pro/source1_backend/models"
	"github.com/source1pro/source1_backend/services"
	"github.com/source1pro/source1_backend/utils"
)

// ContactController handles the public contact form
type ContactController struct {
	mailer services.Mailer
}

// NewContactController creates a new contact controller
func NewContactController(mailer services.Mailer) *ContactController {
	return &ContactController{mailer: mailer}
}

// SubmitInquiry validates a contact-form submission and forwards it to the
// configured inbox. Nothing is persisted.
func (cc *ContactController) SubmitInquiry(c echo.Context) error {
	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	name := utils.SanitizeInput(req.Name)
	message := utils.SanitizeInput(req.Message)
	if name == "" || message == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name and message are required",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	phone := ""
	if req.Phone != "" {
		phone, err = utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number format",
			})
		}
	}

	inbox := os.Getenv("CONTACT_INBOX")
	if inbox == "" {
		inbox = os.Getenv("SMTP_USER")
	}

	body := services.ContactInquiryBody(name, email, phone, utils.SanitizeInput(req.Company), message)
	if err := cc.mailer.Send(inbox, "New contact inquiry from "+name, body); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Your inquiry has been sent. We will get back to you shortly.",
	})
}
