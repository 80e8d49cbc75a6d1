package payment

import (
	"strings"
	"time"

	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	EventID       string          `json:"eventId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=cash card transfer installment"`
	PaymentDate   *string         `json:"paymentDate"`
	Description   *string         `json:"description" validate:"omitempty,max=255"`
	Status        string          `json:"status" validate:"omitempty,oneof=pending completed failed"`
}

func (r *PaymentRequest) input(loc *time.Location) (Input, error) {
	in := Input{
		EventID:       strings.TrimSpace(r.EventID),
		Amount:        r.Amount,
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		Description:   httpx.OptionalString(r.Description),
		Status:        models.PaymentStatus(r.Status),
	}
	if raw := httpx.OptionalString(r.PaymentDate); raw != nil {
		d, err := httpx.ParseDate(*raw, loc)
		if err != nil {
			return in, err
		}
		in.PaymentDate = &d
	}
	return in, nil
}

// POST /api/payments
func CreatePaymentHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PaymentRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		p, err := s.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/payments?eventId=...
func ListPaymentsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, err := s.List(c.UserContext(), strings.TrimSpace(c.Query("eventId")))
		if err != nil {
			return err
		}
		return c.JSON(payments)
	}
}

// GET /api/payments/recent?limit=10
func RecentPaymentsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := httpx.QueryLimit(c)
		if err != nil {
			return err
		}
		payments, err := s.Recent(c.UserContext(), limit)
		if err != nil {
			return err
		}
		return c.JSON(payments)
	}
}

// GET /api/payments/:id
func GetPaymentHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := s.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// PUT /api/payments/:id
func UpdatePaymentHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PaymentRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		p, err := s.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// DELETE /api/payments/:id
func DeletePaymentHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
