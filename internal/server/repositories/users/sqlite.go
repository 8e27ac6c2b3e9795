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

// SQLiteRepository is the single-file variant of PostgresRepository.
// Timestamps are stored as unix nanoseconds and profile merges use
// json_patch.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, handle string, digest []byte, profile models.Profile) (*models.User, error) {
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
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + userColumns

	now := r.now().UTC().UnixNano()
	u, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, uuid.NewString(), handle, digest, string(raw), now, now))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login_handle = ?`
	return r.findOne(ctx, query, models.NormalizeHandle(handle))
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.findOne(ctx, query, id)
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	raw, err := mergePatchJSON(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	query := `
		UPDATE users
		SET profile = json_patch(profile, ?), updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns

	return r.findOne(ctx, query, string(raw), r.now().UTC().UnixNano(), id)
}

func (r *SQLiteRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func scanSQLiteUser(row *sql.Row) (*models.User, error) {
	var (
		u                models.User
		raw              string
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.LoginHandle, &u.PasswordDigest, &raw, &created, &updated); err != nil {
		return nil, err
	}
	p, err := decodeProfile([]byte(raw))
	if err != nil {
		return nil, err
	}
	u.Profile = p
	u.CreatedAt = time.Unix(0, created).UTC()
	u.UpdatedAt = time.Unix(0, updated).UTC()
	return &u, nil
}
