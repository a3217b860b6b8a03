package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

type WebsiteRepository struct {
	db *pgxpool.Pool
}

func NewWebsiteRepository(db *pgxpool.Pool) *WebsiteRepository {
	return &WebsiteRepository{
		db: db,
	}
}

func (r *WebsiteRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *WebsiteRepository) InsertWebsite(ctx context.Context, ext RepoExtension, website *model.Website) (*model.Website, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.websites (uid, url, category, is_public, alerts_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING wid, status, created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		website.OwnerID,
		website.URL,
		website.Category,
		website.IsPublic,
		website.AlertsEnabled,
	).Scan(&website.ID, &website.Status, &website.CreatedAt, &website.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return website, nil
}

func (r *WebsiteRepository) SelectWebsiteByID(ctx context.Context, ext RepoExtension, id int64) (*model.Website, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT wid, uid, url, category, status, is_public, alerts_enabled, created_at, updated_at
		FROM domain.websites
		WHERE wid = $1;
	`

	var website model.Website

	if err := ext.QueryRow(ctx, query, id).Scan(
		&website.ID,
		&website.OwnerID,
		&website.URL,
		&website.Category,
		&website.Status,
		&website.IsPublic,
		&website.AlertsEnabled,
		&website.CreatedAt,
		&website.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrWebsiteDoesNotExist
		}

		return nil, err
	}

	return &website, nil
}

func (r *WebsiteRepository) List(ctx context.Context, ext RepoExtension, params model.WebsiteQueryParams) ([]model.Website, int, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT wid, uid, url, category, status, is_public, alerts_enabled, created_at, updated_at,
		       COUNT(*) OVER () AS total_count
		FROM domain.websites
		WHERE ($1::bigint = 0 OR uid = $1)
		  AND ($2::text = '' OR category = $2)
		ORDER BY wid
		LIMIT $3 OFFSET $4;
	`

	offset := (params.Page - 1) * params.PageSize

	rows, err := ext.Query(ctx, query, params.OwnerID, params.Category, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var (
		websites []model.Website
		total    int
	)

	for rows.Next() {
		var website model.Website

		if err := rows.Scan(
			&website.ID,
			&website.OwnerID,
			&website.URL,
			&website.Category,
			&website.Status,
			&website.IsPublic,
			&website.AlertsEnabled,
			&website.CreatedAt,
			&website.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}

		websites = append(websites, website)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return websites, total, nil
}

func (r *WebsiteRepository) Update(ctx context.Context, ext RepoExtension, id int64, upd *model.WebsiteUpdateRequest) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.websites
		SET url            = COALESCE($2, url),
		    category       = COALESCE($3, category),
		    status         = COALESCE($4, status),
		    is_public      = COALESCE($5, is_public),
		    alerts_enabled = COALESCE($6, alerts_enabled),
		    updated_at     = NOW()
		WHERE wid = $1;
	`

	tag, err := ext.Exec(ctx, query, id, upd.URL, upd.Category, upd.Status, upd.IsPublic, upd.AlertsEnabled)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrWebsiteDoesNotExist
	}

	return nil
}

func (r *WebsiteRepository) Delete(ctx context.Context, ext RepoExtension, id int64) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.websites
		WHERE wid = $1;
	`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrWebsiteDoesNotExist
	}

	return nil
}

func (r *WebsiteRepository) UpdateStatus(ctx context.Context, ext RepoExtension, id int64, status string) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.websites
		SET status = $2, updated_at = NOW()
		WHERE wid = $1;
	`

	_, err := ext.Exec(ctx, query, id, status)

	return err
}
