package claims

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the PostgreSQL connection pool holding the claims dataset.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the claims table and its query indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS claims (
	claim_id           TEXT PRIMARY KEY,
	patient_id         TEXT NOT NULL,
	hospital_id        TEXT NOT NULL,
	state              TEXT NOT NULL,
	procedure_code     TEXT NOT NULL,
	claim_amount_inr   DOUBLE PRECISION NOT NULL,
	anomaly_score      DOUBLE PRECISION NOT NULL,
	image_reuse_flag   BOOLEAN NOT NULL,
	duplicate_flag     BOOLEAN NOT NULL,
	concurrent_flag    BOOLEAN NOT NULL,
	ghost_flag         BOOLEAN NOT NULL,
	upcoding_flag      BOOLEAN NOT NULL,
	upcoding_deviation DOUBLE PRECISION NOT NULL,
	risk_score         DOUBLE PRECISION NOT NULL,
	risk_category      TEXT NOT NULL,
	is_suspicious      BOOLEAN NOT NULL,
	admission_date     DATE NOT NULL
)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create claims table: %w", err)
	}
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_hospital ON claims(hospital_id)`,
		`CREATE INDEX IF NOT EXISTS idx_state ON claims(state)`,
		`CREATE INDEX IF NOT EXISTS idx_risk ON claims(risk_score)`,
	} {
		if _, err := s.pool.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// ReplaceAll swaps the dataset for a fresh one in a single transaction,
// bulk-loading through the COPY protocol.
func (s *Store) ReplaceAll(ctx context.Context, records []Claim) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE claims`); err != nil {
		return 0, fmt.Errorf("truncate claims: %w", err)
	}

	columns := []string{
		"claim_id", "patient_id", "hospital_id", "state", "procedure_code",
		"claim_amount_inr", "anomaly_score", "image_reuse_flag",
		"duplicate_flag", "concurrent_flag", "ghost_flag", "upcoding_flag",
		"upcoding_deviation", "risk_score", "risk_category", "is_suspicious",
		"admission_date",
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"claims"}, columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			c := records[i]
			return []any{
				c.ClaimID, c.PatientID, c.HospitalID, c.State, c.ProcedureCode,
				c.ClaimAmountINR, c.AnomalyScore, c.ImageReuseFlag,
				c.DuplicateFlag, c.ConcurrentFlag, c.GhostFlag, c.UpcodingFlag,
				c.UpcodingDeviation, c.RiskScore, c.RiskCategory, c.IsSuspicious,
				c.AdmissionDate,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy claims: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}
	return copied, nil
}

// Count returns the number of stored claims.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return n, nil
}
