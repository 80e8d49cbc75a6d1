package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodInstallment PaymentMethod = "installment"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodInstallment:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

type Payment struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID       string          `gorm:"type:varchar(36);index;not null" json:"eventId"`
	Event         *Event          `gorm:"foreignKey:EventID;constraint:OnDelete:RESTRICT" json:"event,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null" json:"paymentMethod"`
	PaymentDate   time.Time       `gorm:"index;not null" json:"paymentDate"`
	Description   *string         `gorm:"size:255" json:"description"`
	Status        PaymentStatus   `gorm:"size:20;index;not null;default:completed" json:"status"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
