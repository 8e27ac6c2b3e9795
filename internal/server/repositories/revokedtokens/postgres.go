package revokedtokens

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

// PostgresRepository implements Repository over *sql.DB. Revoke runs in a
// transaction that also clears expired rows, so the table stays bounded
// without a separate job.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := purgeExpired(ctx, tx, r.now()); err != nil {
			return err
		}

		query := `
			INSERT INTO revoked_tokens (token_id, expires_at)
			VALUES ($1, $2)
			ON CONFLICT (token_id) DO UPDATE
			SET expires_at = GREATEST(revoked_tokens.expires_at, EXCLUDED.expires_at)
		`
		if _, err := tx.ExecContext(ctx, query, tokenID, until.UTC()); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

// PurgeExpired deletes rows whose token expired before now and reports how
// many were removed.
func (r *PostgresRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return purgeExpired(ctx, r.db, now)
}

func purgeExpired(ctx context.Context, db dbx.DBTX, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
