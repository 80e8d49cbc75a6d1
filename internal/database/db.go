package database

import (
	"context"
	"fmt"
	"time"

	"buffet-backend/internal/config"
	"buffet-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the connection pool. It is created by the process entry point
// and handed to every engine; there is no package level connection.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects to Postgres and runs the migrations.
func Open(cfg *config.Config) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().In(cfg.Location)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	s := New(db, cfg.DBTimeout)
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened gorm connection.
func New(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// DB exposes the underlying connection for callers that manage their own
// context, such as migrations and test fixtures.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Conn returns a session bound to ctx with the store timeout applied. The
// cancel func must be called once the caller is done with the session.
func (s *Store) Conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// Transaction runs fn in one database transaction under the store timeout.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, cancel := s.Conn(ctx)
	defer cancel()
	return db.Transaction(fn)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates all tables, then applies the constraints
// AutoMigrate cannot express.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Event{},
		&models.Payment{},
		&models.Expense{},
		&models.InventoryItem{},
		&models.InventoryMovement{},
		&models.CashFlowEntry{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, p := range checkConstraints {
		if err := s.db.Exec(p.sql()).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.name, err)
		}
	}
	log.Info().Msg("database migration completed")
	return nil
}

type checkConstraint struct {
	table, name, expr string
}

// sql is idempotent: the constraint is only added when missing.
func (c checkConstraint) sql() string {
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
    ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
  END IF;
END $$`, c.table, c.name, c.expr)
}

var checkConstraints = []checkConstraint{
	{"inventory_items", "chk_inventory_items_stock_non_negative", "current_stock >= 0"},
	{"inventory_items", "chk_inventory_items_minimum_non_negative", "minimum_stock >= 0"},
	{"inventory_movements", "chk_inventory_movements_type", "movement_type IN ('in', 'out', 'adjustment')"},
	{"inventory_movements", "chk_inventory_movements_quantity", "quantity >= 0"},
	{"payments", "chk_payments_amount_positive", "amount > 0"},
	{"payments", "chk_payments_status", "status IN ('pending', 'completed', 'failed')"},
	{"expenses", "chk_expenses_amount_positive", "amount > 0"},
	{"expenses", "chk_expenses_status", "status IN ('paid', 'pending', 'cancelled')"},
	{"events", "chk_events_status", "status IN ('pending', 'confirmed', 'completed', 'cancelled')"},
	{"cash_flow", "chk_cash_flow_type", "type IN ('income', 'expense')"},
}
