package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment" // absolute recount, Quantity is the counted level
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// InventoryMovement is an append-only stock ledger row. StockBefore and
// StockAfter record the item's level around the movement.
type InventoryMovement struct {
	ID           string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	InventoryID  string              `gorm:"type:varchar(36);index;not null" json:"inventoryId"`
	Inventory    *InventoryItem      `gorm:"foreignKey:InventoryID;constraint:OnDelete:RESTRICT" json:"inventory,omitempty"`
	MovementType MovementType        `gorm:"size:20;not null" json:"movementType"`
	Quantity     int                 `gorm:"not null" json:"quantity"`
	StockBefore  int                 `gorm:"not null" json:"stockBefore"`
	StockAfter   int                 `gorm:"not null" json:"stockAfter"`
	UnitCost     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unitCost"`
	Reason       *string             `gorm:"size:100" json:"reason"`
	EventID      *string             `gorm:"type:varchar(36);index" json:"eventId"`
	Event        *Event              `gorm:"foreignKey:EventID;constraint:OnDelete:SET NULL" json:"event,omitempty"`
	Notes        *string             `gorm:"type:text" json:"notes"`
	MovementDate time.Time           `gorm:"index;not null" json:"movementDate"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }

func (m *InventoryMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// Delta is the signed change this movement applied to the item's stock.
func (m *InventoryMovement) Delta() int {
	return m.StockAfter - m.StockBefore
}
