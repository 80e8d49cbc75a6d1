package inventory

import (
	"context"
	"fmt"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput carries the descriptive fields of an item. Stock is never set
// here, only through movements.
type ItemInput struct {
	Name           string
	Description    *string
	Category       string
	MinimumStock   int
	Unit           string
	UnitCost       *decimal.Decimal
	Supplier       *string
	ExpirationDate *time.Time
	Location       *string
}

func (in ItemInput) fill(item *models.InventoryItem) {
	item.Name = in.Name
	item.Description = in.Description
	item.Category = in.Category
	item.MinimumStock = in.MinimumStock
	item.Unit = in.Unit
	item.Supplier = in.Supplier
	item.ExpirationDate = in.ExpirationDate
	item.Location = in.Location
	item.UnitCost = decimal.NullDecimal{}
	if in.UnitCost != nil {
		item.UnitCost = decimal.NewNullDecimal(*in.UnitCost)
	}
}

// CreateItem stores a new item. A positive initialStock is booked as an "in"
// movement in the same transaction so the ledger explains the opening level.
func (e *Engine) CreateItem(ctx context.Context, in ItemInput, initialStock int) (*models.InventoryItem, error) {
	if initialStock < 0 {
		return nil, apperror.Validation("initialStock cannot be negative")
	}
	if err := validateUnitCost(in.UnitCost); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{}
	in.fill(item)

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if initialStock == 0 {
			return nil
		}
		reason := reasonInitialStock
		if _, _, err := e.apply(tx, MovementInput{
			InventoryID:  item.ID,
			MovementType: models.MovementIn,
			Quantity:     initialStock,
			UnitCost:     in.UnitCost,
			Reason:       &reason,
		}); err != nil {
			return err
		}
		return tx.First(item, "id = ?", item.ID).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, "inventory item not found")
	}
	if initialStock > 0 {
		e.metrics.ObserveMovement(string(models.MovementIn), "ok")
	}

	e.writeAudit(ctx, audit.LogOptions{
		EntityType:  "inventory_item",
		EntityID:    item.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("item %q created with stock %d", item.Name, item.CurrentStock),
		After:       item,
	})
	return item, nil
}

func (e *Engine) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	db, cancel := e.store.Conn(ctx)
	defer cancel()

	var items []models.InventoryItem
	if err := db.Order("name ASC").Find(&items).Error; err != nil {
		return nil, apperror.FromDB(err, "inventory items not found")
	}
	return items, nil
}

func (e *Engine) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	db, cancel := e.store.Conn(ctx)
	defer cancel()

	var item models.InventoryItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("inventory item %s not found", id))
	}
	return &item, nil
}

// UpdateItem rewrites the descriptive fields. current_stock and
// last_restock_date are left alone.
func (e *Engine) UpdateItem(ctx context.Context, id string, in ItemInput) (*models.InventoryItem, error) {
	if err := validateUnitCost(in.UnitCost); err != nil {
		return nil, err
	}
	var item models.InventoryItem
	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		in.fill(&item)
		return tx.Model(&item).
			Select("name", "description", "category", "minimum_stock", "unit",
				"unit_cost", "supplier", "expiration_date", "location").
			Updates(&item).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("inventory item %s not found", id))
	}
	return &item, nil
}

// DeleteItem removes an item that has never moved. Items with ledger rows
// are kept so the ledger stays complete.
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	var item models.InventoryItem
	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.InventoryMovement{}).Where("inventory_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.Validation("item %s has %d movements and cannot be deleted", item.Name, n)
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return apperror.FromDB(err, fmt.Sprintf("inventory item %s not found", id))
	}

	e.writeAudit(ctx, audit.LogOptions{
		EntityType:  "inventory_item",
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("item %q deleted", item.Name),
		Before:      item,
	})
	return nil
}
