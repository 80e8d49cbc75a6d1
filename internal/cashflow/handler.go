package cashflow

import (
	"strings"
	"time"

	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateEntryRequest struct {
	Type            string          `json:"type" validate:"required,oneof=income expense"`
	Description     string          `json:"description" validate:"required,max=255"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	Category        string          `json:"category" validate:"required,max=50"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,max=20"`
	TransactionDate *string         `json:"transactionDate"` // YYYY-MM-DD, empty means now
}

// -------------------------------------------------
// POST /api/cashflow
// -------------------------------------------------
func CreateEntryHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEntryRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}

		in := ManualEntryInput{
			Type:          models.CashFlowType(body.Type),
			Description:   strings.TrimSpace(body.Description),
			Amount:        body.Amount,
			Category:      strings.TrimSpace(body.Category),
			PaymentMethod: strings.TrimSpace(body.PaymentMethod),
		}
		if raw := httpx.OptionalString(body.TransactionDate); raw != nil {
			d, err := httpx.ParseDate(*raw, loc)
			if err != nil {
				return err
			}
			in.TransactionDate = &d
		}

		entry, err := s.CreateManual(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// DELETE /api/cashflow/:id
func DeleteEntryHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.DeleteManual(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
