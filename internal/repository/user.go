package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *UserRepository) InsertUser(ctx context.Context, ext RepoExtension, user *model.User) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.users (name, email, password, role, wallet_address, agent_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uid, created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.WalletAddress,
		user.AgentURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

func (r *UserRepository) SelectUserByID(ctx context.Context, ext RepoExtension, id int64) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT uid, name, email, password, role, wallet_address, agent_url, created_at, updated_at
		FROM domain.users
		WHERE uid = $1;
	`

	var user model.User

	if err := ext.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&user.WalletAddress,
		&user.AgentURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserDoesNotExist
		}

		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) SelectUserByEmail(ctx context.Context, ext RepoExtension, email string) (*model.User, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT uid, name, email, password, role, wallet_address, agent_url, created_at, updated_at
		FROM domain.users
		WHERE email = $1;
	`

	var user model.User

	if err := ext.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&user.WalletAddress,
		&user.AgentURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserDoesNotExist
		}

		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, ext RepoExtension, id int64, upd *model.UserUpdateRequest) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.users
		SET name           = COALESCE($2, name),
		    wallet_address = COALESCE($3, wallet_address),
		    agent_url      = COALESCE($4, agent_url),
		    updated_at     = NOW()
		WHERE uid = $1;
	`

	tag, err := ext.Exec(ctx, query, id, upd.Name, upd.WalletAddress, upd.AgentURL)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserDoesNotExist
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, ext RepoExtension, id int64) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.users
		WHERE uid = $1;
	`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserDoesNotExist
	}

	return nil
}
