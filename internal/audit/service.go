package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"gorm.io/gorm"
)

// Actor identifies who performed an audited action.
type Actor struct {
	UserID   string
	UserName string
}

type actorKey struct{}

// WithActor attaches the acting user to ctx. The auth middleware calls it for
// every authenticated request.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type LogOptions struct {
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Writer struct {
	store *database.Store
}

func NewWriter(store *database.Store) *Writer {
	return &Writer{store: store}
}

// Write stores one audit row outside of any business transaction.
func (w *Writer) Write(ctx context.Context, opts LogOptions) error {
	db, cancel := w.store.Conn(ctx)
	defer cancel()
	return WriteTx(ctx, db, opts)
}

// WriteTx stores the audit row through tx so it commits or rolls back with
// the audited change.
func WriteTx(ctx context.Context, tx *gorm.DB, opts LogOptions) error {
	actor := ActorFrom(ctx)
	row := models.AuditLog{
		UserID:      actor.UserID,
		UserName:    actor.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// snapshot encodes v as JSON, "null" when v is nil or not encodable.
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type Filter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

// List returns audit rows newest first.
func (w *Writer) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	db, cancel := w.store.Conn(ctx)
	defer cancel()

	q := db.Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	limit := f.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
