// Package seed pre-populates the context store with real identifier values
// pulled from the application's database, so templated paths resolve to
// live entities instead of synthetic placeholders.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres

	"api-contract-validator/internal/config"
	"api-contract-validator/internal/contextstore"

	"go.uber.org/zap"
)

const defaultRowLimit = 20

// Seeder pulls configured identifier columns into a context store.
type Seeder struct {
	cfg config.SeedConfig
	log *zap.Logger
}

// New returns a seeder for the given configuration.
func New(cfg config.SeedConfig, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{cfg: cfg, log: log}
}

// Seed connects to the configured database and records each configured
// table's identifier column values under its context key. A table that
// fails to query is logged and skipped; only the connection itself is fatal.
func (s *Seeder) Seed(ctx context.Context, store *contextstore.Store) error {
	dsn, err := s.dsn()
	if err != nil {
		return err
	}

	db, err := sql.Open(s.cfg.Type, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, table := range s.cfg.Tables {
		key := table.Key
		if key == "" {
			key = table.Column
		}
		count, err := s.seedTable(ctx, db, store, table, key)
		if err != nil {
			s.log.Warn("failed to seed table",
				zap.String("table", table.Table),
				zap.String("column", table.Column),
				zap.Error(err))
			continue
		}
		s.log.Info("context seeded",
			zap.String("table", table.Table),
			zap.String("key", key),
			zap.Int("values", count))
	}
	return nil
}

func (s *Seeder) seedTable(ctx context.Context, db *sql.DB, store *contextstore.Store, table config.SeedTable, key string) (int, error) {
	limit := table.Limit
	if limit <= 0 {
		limit = defaultRowLimit
	}

	query := fmt.Sprintf("SELECT %s FROM %s", table.Column, table.Table)
	if s.cfg.Type == "sqlserver" {
		query = fmt.Sprintf("SELECT TOP %d %s FROM %s", limit, table.Column, table.Table)
	} else {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return count, err
		}
		if value.Valid && value.String != "" {
			store.Record(key, value.String)
			count++
		}
	}
	return count, rows.Err()
}

// dsn builds the driver-specific connection string.
func (s *Seeder) dsn() (string, error) {
	switch s.cfg.Type {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password, s.cfg.Database), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			s.cfg.User, s.cfg.Password, s.cfg.Host, s.cfg.Port, s.cfg.Database), nil
	case "sqlserver":
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password, s.cfg.Database), nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", s.cfg.Type)
	}
}
