package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashFlowType string

const (
	CashFlowIncome  CashFlowType = "income"
	CashFlowExpense CashFlowType = "expense"
)

func (t CashFlowType) Valid() bool {
	return t == CashFlowIncome || t == CashFlowExpense
}

// Reference kinds. A reference is a weak pointer, there is no foreign key.
const (
	ReferencePayment    = "payment"
	ReferenceExpense    = "expense"
	ReferenceAdjustment = "adjustment"
)

type CashFlowEntry struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type            CashFlowType    `gorm:"size:10;not null" json:"type"`
	Description     string          `gorm:"size:255;not null" json:"description"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category        string          `gorm:"size:50;not null" json:"category"`
	PaymentMethod   string          `gorm:"size:20;not null" json:"paymentMethod"`
	ReferenceID     *string         `gorm:"type:varchar(36);index:idx_cash_flow_reference" json:"referenceId"`
	ReferenceType   *string         `gorm:"size:20;index:idx_cash_flow_reference" json:"referenceType"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (CashFlowEntry) TableName() string { return "cash_flow" }

func (e *CashFlowEntry) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
