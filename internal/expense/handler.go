package expense

import (
	"strings"
	"time"

	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	Description   string          `json:"description" validate:"required,max=255"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Category      string          `json:"category" validate:"required,max=50"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=cash card transfer check"`
	Supplier      *string         `json:"supplier" validate:"omitempty,max=150"`
	ReceiptNumber *string         `json:"receiptNumber" validate:"omitempty,max=80"`
	ExpenseDate   *string         `json:"expenseDate"`
	Status        string          `json:"status" validate:"omitempty,oneof=paid pending cancelled"`
	EventID       *string         `json:"eventId"`
}

func (r *ExpenseRequest) input(loc *time.Location) (Input, error) {
	in := Input{
		Description:   strings.TrimSpace(r.Description),
		Amount:        r.Amount,
		Category:      strings.ToLower(strings.TrimSpace(r.Category)),
		PaymentMethod: r.PaymentMethod,
		Supplier:      httpx.OptionalString(r.Supplier),
		ReceiptNumber: httpx.OptionalString(r.ReceiptNumber),
		Status:        models.ExpenseStatus(r.Status),
		EventID:       httpx.OptionalString(r.EventID),
	}
	if raw := httpx.OptionalString(r.ExpenseDate); raw != nil {
		d, err := httpx.ParseDate(*raw, loc)
		if err != nil {
			return in, err
		}
		in.ExpenseDate = &d
	}
	return in, nil
}

// POST /api/expenses
func CreateExpenseHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		e, err := s.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// -------------------------
// GET /api/expenses?from=2024-01-01&to=2024-01-31&category=supplies&status=paid
// -------------------------
func ListExpensesHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		from, err := httpx.QueryDate(c, "from", loc)
		if err != nil {
			return err
		}
		to, err := httpx.QueryDate(c, "to", loc)
		if err != nil {
			return err
		}
		if to != nil {
			next := to.AddDate(0, 0, 1)
			to = &next
		}
		f.From, f.To = from, to
		f.Category = strings.ToLower(strings.TrimSpace(c.Query("category")))
		f.Status = models.ExpenseStatus(c.Query("status"))

		expenses, err := s.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(expenses)
	}
}

// GET /api/expenses/:id
func GetExpenseHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := s.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		e, err := s.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
