// Package cashflow maintains the cash-flow ledger. Completed payments and
// paid expenses write their entry through Recorder inside the same
// transaction as the originating row; manual adjustments go through Service.
package cashflow

import (
	"fmt"
	"strings"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/models"

	"gorm.io/gorm"
)

// CategoryEventPayment tags income coming from event payments.
const CategoryEventPayment = "event_payment"

type Recorder struct {
	metrics *metrics.Metrics
}

func NewRecorder(m *metrics.Metrics) *Recorder {
	return &Recorder{metrics: m}
}

// Record validates and inserts entry through tx.
func (r *Recorder) Record(tx *gorm.DB, entry *models.CashFlowEntry) error {
	if !entry.Type.Valid() {
		return apperror.Validation("type must be income or expense")
	}
	if !entry.Amount.IsPositive() {
		return apperror.Validation("amount must be greater than 0")
	}
	if !models.ValidMoney(entry.Amount) {
		return apperror.Validation("amount must have at most 2 decimal places")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return apperror.Validation("description is required")
	}
	if strings.TrimSpace(entry.Category) == "" {
		return apperror.Validation("category is required")
	}
	if entry.TransactionDate.IsZero() {
		return apperror.Validation("transactionDate is required")
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("insert cash flow entry: %w", err)
	}
	return nil
}

// RecordPayment books income for a completed payment. Other statuses do not
// move cash and return a nil entry.
func (r *Recorder) RecordPayment(tx *gorm.DB, p *models.Payment) (*models.CashFlowEntry, error) {
	if p.Status != models.PaymentStatusCompleted {
		return nil, nil
	}
	desc := "Event payment"
	if p.Description != nil && *p.Description != "" {
		desc = *p.Description
	}
	entry := &models.CashFlowEntry{
		Type:            models.CashFlowIncome,
		Description:     desc,
		Amount:          p.Amount,
		Category:        CategoryEventPayment,
		PaymentMethod:   string(p.PaymentMethod),
		ReferenceID:     &p.ID,
		ReferenceType:   ref(models.ReferencePayment),
		TransactionDate: p.PaymentDate,
	}
	if err := r.Record(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordExpense books an outflow for a paid expense.
func (r *Recorder) RecordExpense(tx *gorm.DB, e *models.Expense) (*models.CashFlowEntry, error) {
	if e.Status != models.ExpenseStatusPaid {
		return nil, nil
	}
	entry := &models.CashFlowEntry{
		Type:            models.CashFlowExpense,
		Description:     e.Description,
		Amount:          e.Amount,
		Category:        e.Category,
		PaymentMethod:   e.PaymentMethod,
		ReferenceID:     &e.ID,
		ReferenceType:   ref(models.ReferenceExpense),
		TransactionDate: e.ExpenseDate,
	}
	if err := r.Record(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteByReference removes the entries written for one payment or expense.
func (r *Recorder) DeleteByReference(tx *gorm.DB, refType, refID string) error {
	err := tx.Where("reference_type = ? AND reference_id = ?", refType, refID).
		Delete(&models.CashFlowEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete cash flow entries of %s %s: %w", refType, refID, err)
	}
	return nil
}

// Observe counts a committed entry. A nil entry is ignored.
func (r *Recorder) Observe(entry *models.CashFlowEntry) {
	if entry == nil {
		return
	}
	refType := "none"
	if entry.ReferenceType != nil {
		refType = *entry.ReferenceType
	}
	r.metrics.ObserveCashFlow(string(entry.Type), refType)
}

func ref(s string) *string { return &s }
