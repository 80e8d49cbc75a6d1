// Package inventory owns the stock ledger. Every change to an item's
// current stock goes through Engine.RecordMovement, which appends a movement
// row and updates the item in the same transaction.
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/database"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReasonReturn marks goods coming back from an event. Such an "in" movement
// is not a restock.
const ReasonReturn = "return"

const reasonInitialStock = "initial_stock"

type MovementInput struct {
	InventoryID  string
	MovementType models.MovementType
	// Quantity is the amount moved for in/out and the counted stock level
	// for adjustment.
	Quantity     int
	UnitCost     *decimal.Decimal
	Reason       *string
	EventID      *string
	Notes        *string
	MovementDate *time.Time
}

type Engine struct {
	store   *database.Store
	audit   *audit.Writer
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEngine(store *database.Store, w *audit.Writer, m *metrics.Metrics) *Engine {
	return &Engine{store: store, audit: w, metrics: m, now: time.Now}
}

// WithClock replaces the clock used for default movement dates.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RecordMovement validates in and applies it atomically. On any error the
// item and the ledger are left untouched.
func (e *Engine) RecordMovement(ctx context.Context, in MovementInput) (*models.InventoryMovement, error) {
	var mv *models.InventoryMovement
	var item *models.InventoryItem
	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		mv, item, err = e.apply(tx, in)
		return err
	})
	if err != nil {
		err = apperror.FromDB(err, "inventory item not found")
		e.metrics.ObserveMovement(string(in.MovementType), resultLabel(err))
		return nil, err
	}
	e.metrics.ObserveMovement(string(mv.MovementType), "ok")
	if mv.Delta() < 0 && item.IsLowStock() {
		log.Warn().
			Str("item", item.Name).
			Int("stock", item.CurrentStock).
			Int("minimum", item.MinimumStock).
			Msg("inventory item at or below minimum stock")
	}

	e.writeAudit(ctx, audit.LogOptions{
		EntityType:  "inventory_movement",
		EntityID:    mv.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%s %d on item %s (%d -> %d, %+d)", mv.MovementType, mv.Quantity, mv.InventoryID, mv.StockBefore, mv.StockAfter, mv.Delta()),
		After:       mv,
	})
	return mv, nil
}

func validateInput(in MovementInput) error {
	if strings.TrimSpace(in.InventoryID) == "" {
		return apperror.Validation("inventoryId is required")
	}
	if !in.MovementType.Valid() {
		return apperror.Validation("movementType must be one of in, out, adjustment")
	}
	switch in.MovementType {
	case models.MovementIn, models.MovementOut:
		if in.Quantity <= 0 {
			return apperror.Validation("quantity must be greater than 0")
		}
	case models.MovementAdjustment:
		if in.Quantity < 0 {
			return apperror.Validation("adjusted stock level cannot be negative")
		}
	}
	return validateUnitCost(in.UnitCost)
}

func validateUnitCost(c *decimal.Decimal) error {
	if c == nil {
		return nil
	}
	if c.IsNegative() {
		return apperror.Validation("unitCost cannot be negative")
	}
	if !models.ValidMoney(*c) {
		return apperror.Validation("unitCost must have at most 2 decimal places")
	}
	return nil
}

// apply runs inside tx. The item row is locked first so concurrent movements
// on the same item serialize; different items do not contend. The returned
// item carries the new stock level.
func (e *Engine) apply(tx *gorm.DB, in MovementInput) (*models.InventoryMovement, *models.InventoryItem, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	var item models.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", in.InventoryID).Error
	if err != nil {
		return nil, nil, apperror.FromDB(err, fmt.Sprintf("inventory item %s not found", in.InventoryID))
	}

	if in.EventID != nil {
		var n int64
		if err := tx.Model(&models.Event{}).Where("id = ?", *in.EventID).Count(&n).Error; err != nil {
			return nil, nil, err
		}
		if n == 0 {
			return nil, nil, apperror.NotFound("event %s not found", *in.EventID)
		}
	}

	var last models.InventoryMovement
	res := tx.Where("inventory_id = ?", item.ID).
		Order("movement_date DESC").
		Limit(1).
		Find(&last)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	hasLast := res.RowsAffected > 0

	date := e.now()
	if in.MovementDate != nil {
		date = *in.MovementDate
		if hasLast && date.Before(last.MovementDate) {
			return nil, nil, apperror.Validation("movementDate %s is earlier than the item's latest movement (%s)",
				date.Format(time.RFC3339), last.MovementDate.Format(time.RFC3339))
		}
	} else if hasLast && date.Before(last.MovementDate) {
		date = last.MovementDate
	}

	var delta int
	switch in.MovementType {
	case models.MovementIn:
		delta = in.Quantity
	case models.MovementOut:
		delta = -in.Quantity
	case models.MovementAdjustment:
		delta = in.Quantity - item.CurrentStock
	}

	before := item.CurrentStock
	after := before + delta
	if after < 0 {
		return nil, nil, apperror.InsufficientStock("insufficient stock for %s: available %d, requested %d",
			item.Name, before, in.Quantity)
	}

	updates := map[string]any{
		"current_stock": gorm.Expr("current_stock + ?", delta),
	}
	if in.MovementType == models.MovementIn && !isReturn(in.Reason) {
		updates["last_restock_date"] = date
	}
	if in.MovementType == models.MovementIn && in.UnitCost != nil {
		updates["unit_cost"] = decimal.NewNullDecimal(*in.UnitCost)
	}

	res = tx.Model(&models.InventoryItem{}).
		Where("id = ? AND current_stock + ? >= 0", item.ID, delta).
		Updates(updates)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, apperror.InsufficientStock("insufficient stock for %s", item.Name)
	}

	mv := &models.InventoryMovement{
		InventoryID:  item.ID,
		MovementType: in.MovementType,
		Quantity:     in.Quantity,
		StockBefore:  before,
		StockAfter:   after,
		Reason:       in.Reason,
		EventID:      in.EventID,
		Notes:        in.Notes,
		MovementDate: date,
	}
	if in.UnitCost != nil {
		mv.UnitCost = decimal.NewNullDecimal(*in.UnitCost)
	}
	if err := tx.Create(mv).Error; err != nil {
		return nil, nil, err
	}
	item.CurrentStock = after
	return mv, &item, nil
}

func isReturn(reason *string) bool {
	return reason != nil && strings.EqualFold(strings.TrimSpace(*reason), ReasonReturn)
}

func resultLabel(err error) string {
	return strings.ToLower(string(apperror.KindOf(err)))
}

// ListMovements returns movements newest first. An empty inventoryID lists
// the movements of every item.
func (e *Engine) ListMovements(ctx context.Context, inventoryID string) ([]models.InventoryMovement, error) {
	db, cancel := e.store.Conn(ctx)
	defer cancel()

	q := db.Preload("Inventory").Preload("Event")
	if inventoryID != "" {
		q = q.Where("inventory_id = ?", inventoryID)
	}

	var movements []models.InventoryMovement
	if err := q.Order("movement_date DESC").Find(&movements).Error; err != nil {
		return nil, apperror.FromDB(err, "movements not found")
	}
	return movements, nil
}

// writeAudit never fails the caller: the business change is already
// committed.
func (e *Engine) writeAudit(ctx context.Context, opts audit.LogOptions) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Write(ctx, opts); err != nil {
		log.Warn().Err(err).Str("entity", opts.EntityType).Str("id", opts.EntityID).Msg("audit write failed")
	}
}
