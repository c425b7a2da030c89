package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/safeweb/internal/domain/history"
)

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS kv_slots (
  slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
  value      LONGBLOB     NOT NULL,
  updated_at DATETIME(6)  NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// SlotRepository stores one key-value slot as a row in kv_slots.
type SlotRepository struct {
	db  *sql.DB
	key string
}

// NewSlotRepository creates kv_slots if missing and binds the repository to the history key.
func NewSlotRepository(ctx context.Context, db *sql.DB) (*SlotRepository, error) {
	if _, err := db.ExecContext(ctx, createSlotsTable); err != nil {
		return nil, fmt.Errorf("create kv_slots: %w", err)
	}
	return &SlotRepository{db: db, key: history.Key}, nil
}

func (r *SlotRepository) Read(ctx context.Context) ([]byte, error) {
	const q = `SELECT value FROM kv_slots WHERE slot_key = ?`
	var value []byte
	err := r.db.QueryRowContext(ctx, q, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", r.key, err)
	}
	return value, nil
}

func (r *SlotRepository) Write(ctx context.Context, value []byte) error {
	const q = `
INSERT INTO kv_slots (slot_key, value, updated_at)
VALUES (?,?,?)
ON DUPLICATE KEY UPDATE
 value=VALUES(value),
 updated_at=VALUES(updated_at);`
	if _, err := r.db.ExecContext(ctx, q, r.key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert slot %s: %w", r.key, err)
	}
	return nil
}

// Check pings the database; used by the health endpoint.
func (r *SlotRepository) Check(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
