package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/source1pro/source1_backend/services"
)

// captureMailer records sent mail instead of dialing SMTP.
type captureMailer struct {
	to      string
	subject string
	body    string
	sends   int
	err     error
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.sends++
	m.to = to
	m.subject = subject
	m.body = body
	return m.err
}

func submitContact(t *testing.T, mailer *captureMailer, payload string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cc := NewContactController(mailer)
	require.NoError(t, cc.SubmitInquiry(c))
	return rec
}

func TestSubmitInquiry(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "inbox@source1solutions.com")

	t.Run("valid submission is forwarded", func(t *testing.T) {
		mailer := &captureMailer{}
		rec := submitContact(t, mailer, `{
			"name": "Jordan Wells",
			"email": "jordan@example.com",
			"phone": "+12175551234",
			"company": "Wells Property Group",
			"message": "We manage 40 units and need recurring maintenance."
		}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, mailer.sends)
		assert.Equal(t, "inbox@source1solutions.com", mailer.to)
		assert.Contains(t, mailer.subject, "Jordan Wells")
		assert.Contains(t, mailer.body, "jordan@example.com")
		assert.Contains(t, mailer.body, "recurring maintenance")
	})

	t.Run("invalid email fails before the sink is touched", func(t *testing.T) {
		mailer := &captureMailer{}
		rec := submitContact(t, mailer, `{
			"name": "Jordan Wells",
			"email": "not-an-email",
			"message": "hello"
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, mailer.sends)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		mailer := &captureMailer{}
		rec := submitContact(t, mailer, `{
			"name": "Jordan Wells",
			"email": "jordan@example.com"
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, mailer.sends)
	})

	t.Run("sink failure surfaces as a retryable upstream error", func(t *testing.T) {
		mailer := &captureMailer{err: services.NewDependencyError("send email", errors.New("smtp connection refused"))}
		rec := submitContact(t, mailer, `{
			"name": "Jordan Wells",
			"email": "jordan@example.com",
			"message": "hello"
		}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, 1, mailer.sends)
	})

	t.Run("invalid phone is rejected", func(t *testing.T) {
		mailer := &captureMailer{}
		rec := submitContact(t, mailer, `{
			"name": "Jordan Wells",
			"email": "jordan@example.com",
			"phone": "12",
			"message": "hello"
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, mailer.sends)
	})
}
