package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"vending-machine-api/config"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

const dialTimeout = 5 * time.Second

// DSN builds the go-sql-driver DSN for cfg.
func DSN(cfg config.DatabaseConfig) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Timeout = dialTimeout
	return mc.FormatDSN()
}

// Open creates a MySQL connection pool and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("MySQL connection pool established")

	return db, nil
}

// isTransient reports whether a failed read can be retried safely.
func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn)
}

// HealthCheck implements ports.HealthChecker for MySQL.
type HealthCheck struct {
	db *sql.DB
}

// NewHealthCheck creates a MySQL health checker.
func NewHealthCheck(db *sql.DB) *HealthCheck {
	return &HealthCheck{db: db}
}

// Ping checks MySQL connectivity.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "mysql"
}
