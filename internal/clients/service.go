// Package clients manages the client registry and the events booked for
// each client.
package clients

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

type ClientInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

type EventInput struct {
	ChildName  string
	Age        int
	ClientID   string
	EventDate  time.Time
	StartTime  string
	EndTime    string
	GuestCount int
	TotalValue decimal.Decimal
	Status     models.EventStatus
	Notes      *string
}

type EventFilter struct {
	From, To *time.Time // To is exclusive
	ClientID string
	Status   models.EventStatus
}

// Dashboard lists return DefaultListLimit rows unless asked otherwise and
// never more than MaxListLimit.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

type Service struct {
	store *database.Store
	now   func() time.Time
}

func NewService(store *database.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the clock used to decide which events are upcoming.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	c := models.Client{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
	if err := db.Create(&c).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &c, nil
}

func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	clients := []models.Client{}
	if err := db.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return clients, nil
}

func (s *Service) GetClient(ctx context.Context, id string) (*models.Client, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	var c models.Client
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("client %s not found", id))
	}
	return &c, nil
}

func (s *Service) UpdateClient(ctx context.Context, id string, in ClientInput) (*models.Client, error) {
	var c models.Client
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		c.Name, c.Email, c.Phone, c.Address = in.Name, in.Email, in.Phone, in.Address
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("client %s not found", id))
	}
	return &c, nil
}

// DeleteClient refuses clients that still have events.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Event{}).Where("client_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.Validation("client %s has %d events and cannot be deleted", c.Name, n)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "client",
			EntityID:    c.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("client %q deleted", c.Name),
			Before:      c,
		})
	})
	return apperror.FromDB(err, fmt.Sprintf("client %s not found", id))
}

func (in EventInput) validate() error {
	if in.Status != "" && !in.Status.Valid() {
		return apperror.Validation("status must be one of pending, confirmed, completed, cancelled")
	}
	if in.TotalValue.IsNegative() {
		return apperror.Validation("totalValue cannot be negative")
	}
	if !models.ValidMoney(in.TotalValue) {
		return apperror.Validation("totalValue must have at most 2 decimal places")
	}
	if in.EndTime <= in.StartTime {
		return apperror.Validation("endTime must be after startTime")
	}
	return nil
}

func fillEvent(ev *models.Event, in EventInput) {
	ev.ChildName = in.ChildName
	ev.Age = in.Age
	ev.ClientID = in.ClientID
	ev.EventDate = in.EventDate
	ev.StartTime = in.StartTime
	ev.EndTime = in.EndTime
	ev.GuestCount = in.GuestCount
	ev.TotalValue = in.TotalValue
	ev.Notes = in.Notes
	ev.Status = in.Status
	if ev.Status == "" {
		ev.Status = models.EventStatusPending
	}
}

func checkClient(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("client %s not found", id)
	}
	return nil
}

func (s *Service) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var ev models.Event
	fillEvent(&ev, in)

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkClient(tx, ev.ClientID); err != nil {
			return err
		}
		return tx.Create(&ev).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &ev, nil
}

// ListEvents returns events by date, most recent first, with their client.
func (s *Service) ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	q := db.Preload("Client")
	if f.From != nil {
		q = q.Where("event_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("event_date < ?", *f.To)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	events := []models.Event{}
	if err := q.Order("event_date DESC, start_time ASC").Find(&events).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return events, nil
}

// UpcomingEvents returns events dated today or later, soonest first, with
// their client.
func (s *Service) UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	limit, err := ListLimit(limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	db, cancel := s.store.Conn(ctx)
	defer cancel()

	events := []models.Event{}
	err = db.Preload("Client").
		Where("event_date >= ?", today).
		Order("event_date ASC, start_time ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return events, nil
}

// ListLimit applies the dashboard list defaults to a requested limit.
func ListLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultListLimit, nil
	case limit < 0 || limit > MaxListLimit:
		return 0, apperror.Validation("limit must be between 1 and %d", MaxListLimit)
	}
	return limit, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	db, cancel := s.store.Conn(ctx)
	defer cancel()

	var ev models.Event
	if err := db.Preload("Client").First(&ev, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("event %s not found", id))
	}
	return &ev, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var ev models.Event
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&ev, "id = ?", id).Error; err != nil {
			return err
		}
		fillEvent(&ev, in)
		if err := checkClient(tx, ev.ClientID); err != nil {
			return err
		}
		return tx.Save(&ev).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, fmt.Sprintf("event %s not found", id))
	}
	return &ev, nil
}

// DeleteEvent refuses events that have payments; their money is on the
// ledger.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var ev models.Event
		if err := tx.First(&ev, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Payment{}).Where("event_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.Validation("event has %d payments and cannot be deleted", n)
		}
		if err := tx.Delete(&ev).Error; err != nil {
			return err
		}
		return audit.WriteTx(ctx, tx, audit.LogOptions{
			EntityType:  "event",
			EntityID:    ev.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("event of %s on %s deleted", ev.ChildName, ev.EventDate.Format("2006-01-02")),
			Before:      ev,
		})
	})
	return apperror.FromDB(err, fmt.Sprintf("event %s not found", id))
}
