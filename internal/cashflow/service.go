package cashflow

import (
	"context"
	"fmt"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ManualEntryInput struct {
	Type            models.CashFlowType
	Description     string
	Amount          decimal.Decimal
	Category        string
	PaymentMethod   string
	TransactionDate *time.Time
}

// Service handles entries created by hand. They carry the "adjustment"
// reference type and no reference id.
type Service struct {
	store    *database.Store
	recorder *Recorder
	now      func() time.Time
}

func NewService(store *database.Store, r *Recorder) *Service {
	return &Service{store: store, recorder: r, now: time.Now}
}

func (s *Service) CreateManual(ctx context.Context, in ManualEntryInput) (*models.CashFlowEntry, error) {
	date := s.now()
	if in.TransactionDate != nil {
		date = *in.TransactionDate
	}
	entry := &models.CashFlowEntry{
		Type:            in.Type,
		Description:     in.Description,
		Amount:          in.Amount,
		Category:        in.Category,
		PaymentMethod:   in.PaymentMethod,
		ReferenceType:   ref(models.ReferenceAdjustment),
		TransactionDate: date,
	}

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.recorder.Record(tx, entry); err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "cash_flow",
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("manual %s of %s (%s)", entry.Type, entry.Amount.StringFixed(2), entry.Category),
			After:       entry,
		})
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	s.recorder.Observe(entry)
	return entry, nil
}

// DeleteManual removes a manual entry. Entries owned by a payment or an
// expense disappear only with their source row.
func (s *Service) DeleteManual(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var entry models.CashFlowEntry
		if err := tx.First(&entry, "id = ?", id).Error; err != nil {
			return err
		}
		if entry.ReferenceID != nil {
			return apperror.Validation("entry belongs to %s %s; delete the %s instead",
				deref(entry.ReferenceType), *entry.ReferenceID, deref(entry.ReferenceType))
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "cash_flow",
			EntityID:    entry.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("manual %s of %s removed", entry.Type, entry.Amount.StringFixed(2)),
			Before:      entry,
		})
	})
	return apperror.FromDB(err, fmt.Sprintf("cash flow entry %s not found", id))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
