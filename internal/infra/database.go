package infra

import (
	"fmt"

	"counterdesk/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches GORM cannot express (sequences,
// partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.RegisterSession{},
		&model.RegisterMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Payment{},
		&model.Reservation{},
		&model.StockMovement{},
		&model.CreditNote{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Atomic ticket / credit note numbering
		`CREATE SEQUENCE IF NOT EXISTS sales_ticket_number_seq`,
		`CREATE SEQUENCE IF NOT EXISTS credit_notes_number_seq`,
		// Partial index for the reversal idempotency lookup
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_stock_movements_reversal') THEN
		    CREATE INDEX idx_stock_movements_reversal
		        ON stock_movements (sale_id, product_id)
		        WHERE type = 'reversal_restore';
		  END IF;
		END $$`,
		// Open-session lookup used on every checkout
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_register_sessions_open') THEN
		    CREATE INDEX idx_register_sessions_open
		        ON register_sessions (register_no)
		        WHERE status = 'open';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
