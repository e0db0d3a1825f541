package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"shutterdesk/internal/domain"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Store is the PostgreSQL implementation of domain.Repository. It mirrors the
// SQLite adapter operation for operation so the two stay interchangeable
// behind the interface.
type Store struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewStore(dsn string, logger *zerolog.Logger) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", translate(err))
	}

	store := &Store{DB: conn, logger: logger}
	if err := store.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Msg("postgres store initialized successfully")
	return store, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS packages (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL,
			hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			deliverables TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			client_id BIGINT NOT NULL REFERENCES clients(id),
			package_id BIGINT NOT NULL,
			event_type TEXT NOT NULL DEFAULT '',
			event_date DATE NOT NULL,
			event_time TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'New',
			price BIGINT NOT NULL,
			deposit_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
			deposit_amount BIGINT NOT NULL DEFAULT 0,
			balance_amount BIGINT NOT NULL DEFAULT 0,
			amount_paid BIGINT NOT NULL DEFAULT 0,
			revision_limit BIGINT NOT NULL DEFAULT 2,
			revisions_used BIGINT NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			crew_assigned TEXT NOT NULL DEFAULT '',
			drive_link TEXT NOT NULL DEFAULT '',
			internal_path TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			version BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id),
			amount BIGINT NOT NULL,
			method TEXT NOT NULL,
			reference TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS team_members (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
			id BIGSERIAL PRIMARY KEY,
			task_type TEXT NOT NULL,
			project_id BIGINT NOT NULL,
			payload TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			processed_at TIMESTAMPTZ,
			next_retry_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_event_date ON projects(event_date)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_project ON payments(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := s.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query[:40], err)
		}
	}
	return nil
}

// translate maps driver errors onto the domain error kinds. Foreign key
// violations surface as consistency errors, connection-class failures as
// transient store errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23503" || pqErr.Code == "23505":
			return fmt.Errorf("%w: %v", domain.ErrConsistency, err)
		case pqErr.Code.Class() == "08" || pqErr.Code.Class() == "53" || pqErr.Code == "57P01":
			return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
		}
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return nil
}
