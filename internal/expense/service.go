// Package expense manages expense records. A paid expense owns one
// cash-flow entry that is kept in sync on every write.
package expense

import (
	"context"
	"fmt"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/cashflow"
	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Input struct {
	Description   string
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	Supplier      *string
	ReceiptNumber *string
	ExpenseDate   *time.Time
	Status        models.ExpenseStatus
	EventID       *string
}

type Filter struct {
	From, To *time.Time // To is exclusive
	Category string
	Status   models.ExpenseStatus
}

type Service struct {
	store    *database.Store
	recorder *cashflow.Recorder
	now      func() time.Time
}

func NewService(store *database.Store, r *cashflow.Recorder) *Service {
	return &Service{store: store, recorder: r, now: time.Now}
}

func (in Input) validate() error {
	if !in.Amount.IsPositive() {
		return apperror.Validation("amount must be greater than 0")
	}
	if !models.ValidMoney(in.Amount) {
		return apperror.Validation("amount must have at most 2 decimal places")
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperror.Validation("status must be one of paid, pending, cancelled")
	}
	return nil
}

func (s *Service) fill(e *models.Expense, in Input) {
	e.Description = in.Description
	e.Amount = in.Amount
	e.Category = in.Category
	e.PaymentMethod = in.PaymentMethod
	e.Supplier = in.Supplier
	e.ReceiptNumber = in.ReceiptNumber
	e.EventID = in.EventID
	e.Status = in.Status
	if e.Status == "" {
		e.Status = models.ExpenseStatusPaid
	}
	if in.ExpenseDate != nil {
		e.ExpenseDate = *in.ExpenseDate
	} else if e.ExpenseDate.IsZero() {
		e.ExpenseDate = s.now()
	}
}

func checkEvent(tx *gorm.DB, eventID *string) error {
	if eventID == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Event{}).Where("id = ?", *eventID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("event %s not found", *eventID)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var e models.Expense
	s.fill(&e, in)

	var entry *models.CashFlowEntry
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkEvent(tx, e.EventID); err != nil {
			return err
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		var err error
		entry, err = s.recorder.RecordExpense(tx, &e)
		return err
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	s.recorder.Observe(entry)
	return &e, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Expense, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	q := db.Model(&models.Expense{})
	if f.From != nil {
		q = q.Where("expense_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("expense_date < ?", *f.To)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	expenses := []models.Expense{}
	if err := q.Order("expense_date DESC").Find(&expenses).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return expenses, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Expense, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	var e models.Expense
	if err := db.Preload("Event").First(&e, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("expense %s not found", id))
	}
	return &e, nil
}

// Update rewrites the expense and replaces its cash-flow entry, so a status
// change from pending to paid books the outflow and the reverse removes it.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var e models.Expense
	var entry *models.CashFlowEntry
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return err
		}
		s.fill(&e, in)
		if err := checkEvent(tx, e.EventID); err != nil {
			return err
		}
		if err := tx.Save(&e).Error; err != nil {
			return err
		}
		if err := s.recorder.DeleteByReference(tx, models.ReferenceExpense, e.ID); err != nil {
			return err
		}
		var err error
		entry, err = s.recorder.RecordExpense(tx, &e)
		return err
	})
	if err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("expense %s not found", id))
	}
	s.recorder.Observe(entry)
	return &e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var e models.Expense
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return err
		}
		if err := s.recorder.DeleteByReference(tx, models.ReferenceExpense, e.ID); err != nil {
			return err
		}
		if err := tx.Delete(&e).Error; err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "expense",
			EntityID:    e.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("expense %q (%s) deleted", e.Description, e.Amount.StringFixed(2)),
			Before:      e,
		})
	})
	return apperror.FromDB(err, fmt.Sprintf("expense %s not found", id))
}
