package inventory

import (
	"strings"
	"time"

	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateMovementRequest struct {
	InventoryID  string           `json:"inventoryId" validate:"required"`
	MovementType string           `json:"movementType" validate:"required,oneof=in out adjustment"`
	Quantity     int              `json:"quantity" validate:"gte=0"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
	Reason       *string          `json:"reason" validate:"omitempty,max=100"`
	EventID      *string          `json:"eventId"`
	Notes        *string          `json:"notes"`
	MovementDate *string          `json:"movementDate"` // YYYY-MM-DD or RFC3339
}

type ItemRequest struct {
	Name           string           `json:"name" validate:"required,max=150"`
	Description    *string          `json:"description" validate:"omitempty,max=255"`
	Category       string           `json:"category" validate:"required,max=50"`
	MinimumStock   int              `json:"minimumStock" validate:"gte=0"`
	Unit           string           `json:"unit" validate:"required,max=20"`
	UnitCost       *decimal.Decimal `json:"unitCost"`
	Supplier       *string          `json:"supplier" validate:"omitempty,max=150"`
	ExpirationDate *string          `json:"expirationDate"`
	Location       *string          `json:"location" validate:"omitempty,max=100"`
	// only read on create
	InitialStock int `json:"initialStock" validate:"gte=0"`
}

func (r *ItemRequest) input(loc *time.Location) (ItemInput, error) {
	in := ItemInput{
		Name:         strings.TrimSpace(r.Name),
		Description:  httpx.OptionalString(r.Description),
		Category:     strings.TrimSpace(r.Category),
		MinimumStock: r.MinimumStock,
		Unit:         strings.TrimSpace(r.Unit),
		UnitCost:     r.UnitCost,
		Supplier:     httpx.OptionalString(r.Supplier),
		Location:     httpx.OptionalString(r.Location),
	}
	if raw := httpx.OptionalString(r.ExpirationDate); raw != nil {
		d, err := httpx.ParseDate(*raw, loc)
		if err != nil {
			return in, err
		}
		in.ExpirationDate = &d
	}
	return in, nil
}

// -------------------------------------------------
// POST /api/inventory/movements
// -------------------------------------------------
func CreateMovementHandler(e *Engine, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMovementRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}

		in := MovementInput{
			InventoryID:  strings.TrimSpace(body.InventoryID),
			MovementType: models.MovementType(body.MovementType),
			Quantity:     body.Quantity,
			UnitCost:     body.UnitCost,
			Reason:       httpx.OptionalString(body.Reason),
			EventID:      httpx.OptionalString(body.EventID),
			Notes:        httpx.OptionalString(body.Notes),
		}
		if raw := httpx.OptionalString(body.MovementDate); raw != nil {
			d, err := httpx.ParseDate(*raw, loc)
			if err != nil {
				return err
			}
			in.MovementDate = &d
		}

		mv, err := e.RecordMovement(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(mv)
	}
}

// -------------------------------------------------
// GET /api/inventory/movements?inventoryId=...
// -------------------------------------------------
func ListMovementsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		movements, err := e.ListMovements(c.UserContext(), strings.TrimSpace(c.Query("inventoryId")))
		if err != nil {
			return err
		}
		return c.JSON(movements)
	}
}

// POST /api/inventory
func CreateItemHandler(e *Engine, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		item, err := e.CreateItem(c.UserContext(), in, body.InitialStock)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GET /api/inventory
func ListItemsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := e.ListItems(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// GET /api/inventory/:id
func GetItemHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := e.GetItem(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// PUT /api/inventory/:id
func UpdateItemHandler(e *Engine, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}

		item, err := e.UpdateItem(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// DELETE /api/inventory/:id
func DeleteItemHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := e.DeleteItem(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
