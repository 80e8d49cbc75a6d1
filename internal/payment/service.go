// Package payment manages event payments. A completed payment owns one
// income entry in the cash-flow ledger.
package payment

import (
	"context"
	"fmt"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/cashflow"
	"buffet-backend/internal/clients"
	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Input struct {
	EventID       string
	Amount        decimal.Decimal
	PaymentMethod models.PaymentMethod
	PaymentDate   *time.Time
	Description   *string
	Status        models.PaymentStatus
}

func (in Input) validate() error {
	if in.EventID == "" {
		return apperror.Validation("eventId is required")
	}
	if !in.Amount.IsPositive() {
		return apperror.Validation("amount must be greater than 0")
	}
	if !models.ValidMoney(in.Amount) {
		return apperror.Validation("amount must have at most 2 decimal places")
	}
	if !in.PaymentMethod.Valid() {
		return apperror.Validation("paymentMethod must be one of cash, card, transfer, installment")
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperror.Validation("status must be one of pending, completed, failed")
	}
	return nil
}

type Service struct {
	store    *database.Store
	recorder *cashflow.Recorder
	now      func() time.Time
}

func NewService(store *database.Store, r *cashflow.Recorder) *Service {
	return &Service{store: store, recorder: r, now: time.Now}
}

func (s *Service) fill(p *models.Payment, in Input) {
	p.EventID = in.EventID
	p.Amount = in.Amount
	p.PaymentMethod = in.PaymentMethod
	p.Description = in.Description
	p.Status = in.Status
	if p.Status == "" {
		p.Status = models.PaymentStatusCompleted
	}
	if in.PaymentDate != nil {
		p.PaymentDate = *in.PaymentDate
	} else if p.PaymentDate.IsZero() {
		p.PaymentDate = s.now()
	}
}

func checkEvent(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&models.Event{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("event %s not found", id)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p models.Payment
	s.fill(&p, in)

	var entry *models.CashFlowEntry
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkEvent(tx, p.EventID); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		var err error
		entry, err = s.recorder.RecordPayment(tx, &p)
		return err
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	s.recorder.Observe(entry)
	return &p, nil
}

// List returns payments newest first, optionally for one event.
func (s *Service) List(ctx context.Context, eventID string) ([]models.Payment, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	q := db.Preload("Event").Preload("Event.Client")
	if eventID != "" {
		q = q.Where("event_id = ?", eventID)
	}

	payments := []models.Payment{}
	if err := q.Order("payment_date DESC").Find(&payments).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return payments, nil
}

// Recent returns the latest payments with their event and client.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Payment, error) {
	limit, err := clients.ListLimit(limit)
	if err != nil {
		return nil, err
	}

	db, cancel := s.store.Conn(ctx)
	defer cancel()

	payments := []models.Payment{}
	err = db.Preload("Event").Preload("Event.Client").
		Order("payment_date DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return payments, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Payment, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	var p models.Payment
	if err := db.Preload("Event").First(&p, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("payment %s not found", id))
	}
	return &p, nil
}

// Update rewrites the payment and re-derives its cash-flow entry.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p models.Payment
	var entry *models.CashFlowEntry
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		s.fill(&p, in)
		if err := checkEvent(tx, p.EventID); err != nil {
			return err
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		if err := s.recorder.DeleteByReference(tx, models.ReferencePayment, p.ID); err != nil {
			return err
		}
		var err error
		entry, err = s.recorder.RecordPayment(tx, &p)
		return err
	})
	if err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("payment %s not found", id))
	}
	s.recorder.Observe(entry)
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		if err := s.recorder.DeleteByReference(tx, models.ReferencePayment, p.ID); err != nil {
			return err
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "payment",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("payment of %s for event %s deleted", p.Amount.StringFixed(2), p.EventID),
			Before:      p,
		})
	})
	return apperror.FromDB(err, fmt.Sprintf("payment %s not found", id))
}
