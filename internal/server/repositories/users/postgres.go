package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, login_handle, password_digest, profile, created_at, updated_at`

// PostgresRepository stores identities in the users table. Uniqueness is
// enforced by the users_login_handle_key constraint.
type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) Create(ctx context.Context, handle string, digest []byte, profile models.Profile) (*models.User, error) {
	handle, profile, err := prepareCreate(handle, digest, profile)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	query := `
		INSERT INTO users (id, login_handle, password_digest, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $5)
		RETURNING ` + userColumns

	now := r.now().UTC()
	u, err := scanUser(r.db.QueryRowContext(ctx, query, uuid.NewString(), handle, digest, string(raw), now))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login_handle = $1`
	return r.findOne(ctx, query, models.NormalizeHandle(handle))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	raw, err := mergePatchJSON(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	query := `
		UPDATE users
		SET profile = jsonb_strip_nulls(profile || $2::jsonb), updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns

	return r.findOne(ctx, query, id, string(raw), r.now().UTC())
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// scanUser reads one row in userColumns order. Timestamps are scanned by the
// driver; profile arrives as JSON text.
func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u   models.User
		raw []byte
	)
	if err := row.Scan(&u.ID, &u.LoginHandle, &u.PasswordDigest, &raw, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decodeProfile(raw)
	if err != nil {
		return nil, err
	}
	u.Profile = p
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
