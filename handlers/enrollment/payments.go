package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// WebhookSecretHeader carries the shared secret of payment provider callbacks.
const WebhookSecretHeader = "X-Webhook-Secret"

// ListPayments GET /api/v1/enrollments/:id/payments
func (h *EnrollmentHandler) ListPayments(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	payments, err := h.payments.ListForEnrollment(c.UserContext(), id, handlers.Actor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, payments)
}

type PaymentStatusRequest struct {
	Status model.PaymentStatus `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

// SetPaymentStatus PATCH /api/v1/admin/payments/:id/status
func (h *EnrollmentHandler) SetPaymentStatus(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req PaymentStatusRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	payment, err := h.payments.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, payment)
}

// PaymentWebhook applies a provider status callback. The secret is checked
// before the body is looked at.
// POST /api/v1/payments/webhook
func (h *EnrollmentHandler) PaymentWebhook(c *fiber.Ctx) error {
	secret := c.Get(WebhookSecretHeader)
	if !h.payments.VerifySecret(secret) {
		return response.FromError(c, services.ErrWebhookUnauthorized)
	}

	var event services.WebhookEvent
	if err := handlers.Bind(c, h.validator, &event); err != nil {
		return response.FromError(c, err)
	}

	payment, err := h.payments.HandleWebhook(c.UserContext(), secret, event)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, payment)
}
