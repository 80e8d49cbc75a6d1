package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseStatus string

const (
	ExpenseStatusPaid      ExpenseStatus = "paid"
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusCancelled ExpenseStatus = "cancelled"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseStatusPaid, ExpenseStatusPending, ExpenseStatusCancelled:
		return true
	}
	return false
}

// Expense categories are free-form tags (supplies, staff, utilities, food, ...).
type Expense struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Description   string          `gorm:"size:255;not null" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category      string          `gorm:"size:50;index;not null" json:"category"`
	PaymentMethod string          `gorm:"size:20;not null" json:"paymentMethod"` // cash | card | transfer | check
	Supplier      *string         `gorm:"size:150" json:"supplier"`
	ReceiptNumber *string         `gorm:"size:80" json:"receiptNumber"`
	ExpenseDate   time.Time       `gorm:"index;not null" json:"expenseDate"`
	Status        ExpenseStatus   `gorm:"size:20;index;not null;default:paid" json:"status"`
	EventID       *string         `gorm:"type:varchar(36);index" json:"eventId"`
	Event         *Event          `gorm:"foreignKey:EventID;constraint:OnDelete:SET NULL" json:"event,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
