package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bryanwahyu/safeweb/internal/config"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/internal/infra/db/mysql"
	"github.com/bryanwahyu/safeweb/internal/infra/db/postgres"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// Backend is an opened history slot plus whatever must be closed on shutdown.
type Backend struct {
	history.Slot
	Name  string
	close func() error
}

// Check reports slot reachability when the backend supports it.
func (b *Backend) Check(ctx context.Context) error {
	if c, ok := b.Slot.(interface{ Check(context.Context) error }); ok {
		return c.Check(ctx)
	}
	return nil
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the slot backend selected by cfg.History.Backend.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	name := strings.ToLower(cfg.History.Backend)
	switch name {
	case "file":
		return &Backend{Slot: NewFileSlot(cfg.History.FilePath), Name: name}, nil

	case "memory":
		return &Backend{Slot: NewMemorySlot(), Name: name}, nil

	case "redis":
		s, err := NewRedisSlot(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix, log)
		if err != nil {
			return nil, err
		}
		return &Backend{Slot: s, Name: name, close: s.Close}, nil

	case "minio":
		m := cfg.Minio
		s, err := NewMinioSlot(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		return &Backend{Slot: s, Name: name}, nil

	case "mysql":
		db, err := mysql.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		return sqlBackend(ctx, name, db, func(db *sql.DB) (history.Slot, error) {
			return mysql.NewSlotRepository(ctx, db)
		})

	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return sqlBackend(ctx, name, db, func(db *sql.DB) (history.Slot, error) {
			return postgres.NewSlotRepository(ctx, db)
		})

	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.History.Backend)
	}
}

func sqlBackend(ctx context.Context, name string, db *sql.DB, repo func(*sql.DB) (history.Slot, error)) (*Backend, error) {
	s, err := repo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Backend{Slot: s, Name: name, close: db.Close}, nil
}
