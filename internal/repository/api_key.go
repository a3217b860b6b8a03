package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

type APIKeyRepository struct {
	db *pgxpool.Pool
}

func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{
		db: db,
	}
}

func (r *APIKeyRepository) Insert(ctx context.Context, key *model.APIKey) error {
	const query = `
		INSERT INTO domain.api_keys (id, uid, name, key_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`

	return r.db.QueryRow(ctx, query,
		key.ID,
		key.UserID,
		key.Name,
		key.KeyHash,
		key.ExpiresAt,
	).Scan(&key.CreatedAt)
}

func (r *APIKeyRepository) GetAllByUser(ctx context.Context, userID int64) ([]model.APIKey, error) {
	const query = `
		SELECT id, uid, name, key_hash, revoked, expires_at, created_at
		FROM domain.api_keys
		WHERE uid = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanAPIKeys(rows)
}

func (r *APIKeyRepository) GetAllActive(ctx context.Context) ([]model.APIKey, error) {
	const query = `
		SELECT id, uid, name, key_hash, revoked, expires_at, created_at
		FROM domain.api_keys
		WHERE revoked = false
		  AND (expires_at IS NULL OR expires_at > NOW());
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanAPIKeys(rows)
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE domain.api_keys
		SET revoked = true
		WHERE id = $1;
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrAPIKeyDoesNotExist
	}

	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]model.APIKey, error) {
	var keys []model.APIKey

	for rows.Next() {
		var key model.APIKey

		if err := rows.Scan(
			&key.ID,
			&key.UserID,
			&key.Name,
			&key.KeyHash,
			&key.Revoked,
			&key.ExpiresAt,
			&key.CreatedAt,
		); err != nil {
			return nil, err
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
