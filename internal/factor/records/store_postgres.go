package records

import (
	"context"
	"database/sql"
	"fmt"

	"domainfactor/pkg/platform/tx"
)

// Schema creates the user factor table used by the MFA host.
const Schema = `
CREATE TABLE IF NOT EXISTS tool_mfa (
	id            UUID PRIMARY KEY,
	userid        TEXT NOT NULL,
	factor        TEXT NOT NULL,
	timecreated   TIMESTAMPTZ NOT NULL,
	createdfromip TEXT NOT NULL DEFAULT '',
	timemodified  TIMESTAMPTZ NOT NULL,
	revoked       BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS tool_mfa_userid_factor_idx ON tool_mfa (userid, factor);
`

const (
	listByUserFactorQuery = `
SELECT id, userid, factor, timecreated, createdfromip, timemodified, revoked
FROM tool_mfa
WHERE userid = $1 AND factor = $2
ORDER BY timecreated, id`

	insertQuery = `
INSERT INTO tool_mfa (id, userid, factor, timecreated, createdfromip, timemodified, revoked)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// Serializes concurrent first-time inserts for the same user and factor.
	lockUserFactorQuery = `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`
)

// PostgresStore persists user factor records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table and index if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure tool_mfa schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUserFactor(ctx context.Context, userID, factor string) ([]*Record, error) {
	exec := tx.ExecutorFor(ctx, s.db)

	if _, inTx := tx.From(ctx); inTx {
		if _, err := exec.ExecContext(ctx, lockUserFactorQuery, userID, factor); err != nil {
			return nil, fmt.Errorf("lock user factor: %w", err)
		}
	}

	rows, err := exec.QueryContext(ctx, listByUserFactorQuery, userID, factor)
	if err != nil {
		return nil, fmt.Errorf("list user factors: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Factor, &r.TimeCreated, &r.CreatedFromIP, &r.TimeModified, &r.Revoked); err != nil {
			return nil, fmt.Errorf("scan user factor: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user factors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, insertQuery,
		record.ID,
		record.UserID,
		record.Factor,
		record.TimeCreated,
		record.CreatedFromIP,
		record.TimeModified,
		record.Revoked,
	)
	if err != nil {
		return fmt.Errorf("insert user factor: %w", err)
	}
	return nil
}

// RunInTx runs fn in a database transaction carried by the context.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Run(ctx, s.db, fn)
}
