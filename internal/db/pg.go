package db

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/segyhp/loan-engine/internal/config"
)

// Connect opens the Postgres pool with the configured limits.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return conn, nil
}
