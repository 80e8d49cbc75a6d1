package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem.CurrentStock is derived state: only the movement engine
// writes it.
type InventoryItem struct {
	ID              string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string              `gorm:"size:150;index;not null" json:"name"`
	Description     *string             `gorm:"size:255" json:"description"`
	Category        string              `gorm:"size:50;not null" json:"category"`
	CurrentStock    int                 `gorm:"not null;default:0" json:"currentStock"`
	MinimumStock    int                 `gorm:"not null;default:0" json:"minimumStock"`
	Unit            string              `gorm:"size:20;not null" json:"unit"`
	UnitCost        decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unitCost"`
	Supplier        *string             `gorm:"size:150" json:"supplier"`
	LastRestockDate *time.Time          `json:"lastRestockDate"`
	ExpirationDate  *time.Time          `gorm:"type:date" json:"expirationDate"`
	Location        *string             `gorm:"size:100" json:"location"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// IsLowStock reports whether the item reached its alert threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentStock <= i.MinimumStock
}
