package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskly/internal/model"
)

// PasswordSource resolves secrets by key. *credential.Vault satisfies it.
type PasswordSource interface {
	Get(key string) (string, error)
}

// NewMySQLStore connects to MySQL using dsn (without the password, which
// is passed separately) and runs any pending schema migrations.
func NewMySQLStore(ctx context.Context, dsn, password string) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening mysql db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to mysql: %w", err)
	}

	s := newSQLStore(db, dialectMySQL)
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Open returns the store selected by cfg.Driver. The MySQL password is
// looked up in secrets under cfg.PasswordKey; secrets may be nil when
// the DSN already carries credentials.
func Open(ctx context.Context, cfg model.DatabaseConfig, secrets PasswordSource) (*SQLStore, error) {
	switch cfg.Driver {
	case model.DriverSQLite, "":
		return NewSQLiteStore(cfg.Path)
	case model.DriverMySQL:
		var password string
		if secrets != nil && cfg.PasswordKey != "" {
			p, err := secrets.Get(cfg.PasswordKey)
			if err != nil {
				return nil, fmt.Errorf("resolving mysql password: %w", err)
			}
			password = p
		}
		return NewMySQLStore(ctx, cfg.DSN, password)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
