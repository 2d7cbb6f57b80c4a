// Package storage archives runs, scored projects and bid attempts in
// PostgreSQL. Purely observational — the pipeline never reads it back.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the archive database and ensures the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer schemaCancel()
	if err := store.ensureSchema(schemaCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// BeginRun records a new run and returns its id.
func (s *PostgresStore) BeginRun(ctx context.Context, query string, dryRun bool) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, search_query, dry_run) VALUES ($1, $2, $3)`,
		runID, query, dryRun,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// SaveScores upserts every scored project under the given run.
func (s *PostgresStore) SaveScores(ctx context.Context, runID uuid.UUID, scores []models.ProjectScore) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO projects (run_id, project_id, title, url, budget_min, budget_max,
		                      currency, is_hourly, bid_count, score, reasoning,
		                      suggested_amount, suggested_amount_usd, suggested_period)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (project_id) DO UPDATE
		SET
			run_id = EXCLUDED.run_id,
			bid_count = EXCLUDED.bid_count,
			score = EXCLUDED.score,
			reasoning = EXCLUDED.reasoning,
			suggested_amount = EXCLUDED.suggested_amount,
			suggested_amount_usd = EXCLUDED.suggested_amount_usd,
			suggested_period = EXCLUDED.suggested_period,
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	total := 0
	for _, sc := range scores {
		p := sc.Project
		if p.URL == "" {
			continue
		}
		if _, err = stmt.ExecContext(
			ctx,
			runID,
			p.ID,
			p.Title,
			p.URL,
			p.Budget.Min,
			p.Budget.Max,
			p.Budget.Currency,
			p.Budget.IsHourly,
			p.BidCount,
			sc.Score,
			sc.Reasoning,
			sc.Suggestion.Amount,
			sc.Suggestion.AmountUSD,
			sc.Suggestion.Period,
		); err != nil {
			return 0, fmt.Errorf("insert project %q: %w", p.ID, err)
		}
		total++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return total, nil
}

// SaveBidAttempt records the outcome of one submission or edit attempt.
func (s *PostgresStore) SaveBidAttempt(ctx context.Context, runID uuid.UUID, result models.BidResult, amount float64, currency string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bid_attempts (run_id, project_id, amount, currency, submitted, skipped, reason, screenshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID, result.ProjectID, amount, currency,
		result.Submitted, result.Skipped, result.Reason, result.Screenshot,
	)
	if err != nil {
		return fmt.Errorf("insert bid attempt %q: %w", result.ProjectID, err)
	}
	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			search_query TEXT NOT NULL,
			dry_run BOOLEAN NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES runs(id),
			project_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			budget_min REAL NOT NULL DEFAULT 0,
			budget_max REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			is_hourly BOOLEAN NOT NULL DEFAULT FALSE,
			bid_count INT NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			reasoning TEXT NOT NULL DEFAULT '',
			suggested_amount REAL NOT NULL DEFAULT 0,
			suggested_amount_usd REAL NOT NULL DEFAULT 0,
			suggested_period INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS bid_attempts (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES runs(id),
			project_id TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			submitted BOOLEAN NOT NULL,
			skipped BOOLEAN NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			screenshot TEXT NOT NULL DEFAULT '',
			attempted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_projects_score ON projects(score DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
