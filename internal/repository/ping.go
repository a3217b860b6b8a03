package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

type PingRepository struct {
	db *pgxpool.Pool
}

func NewPingRepository(db *pgxpool.Pool) *PingRepository {
	return &PingRepository{
		db: db,
	}
}

func (r *PingRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *PingRepository) InsertPing(ctx context.Context, ext RepoExtension, ping *model.Ping) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.pings (wid, uid, tx_hash, is_up, latency_ms, region, fee_paid_numeric)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING pid, created_at;
	`

	err := ext.QueryRow(ctx, query,
		ping.WebsiteID,
		ping.UserID,
		ping.TxHash,
		ping.IsUp,
		ping.LatencyMS,
		ping.Region,
		ping.FeePaid,
	).Scan(&ping.ID, &ping.CreatedAt)
	if err != nil {
		return err
	}

	return nil
}

func (r *PingRepository) SelectPingByID(ctx context.Context, ext RepoExtension, id int64) (*model.Ping, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT pid, wid, uid, tx_hash, is_up, latency_ms, region, fee_paid_numeric, created_at
		FROM domain.pings
		WHERE pid = $1;
	`

	var ping model.Ping

	if err := ext.QueryRow(ctx, query, id).Scan(
		&ping.ID,
		&ping.WebsiteID,
		&ping.UserID,
		&ping.TxHash,
		&ping.IsUp,
		&ping.LatencyMS,
		&ping.Region,
		&ping.FeePaid,
		&ping.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPingDoesNotExist
		}

		return nil, err
	}

	return &ping, nil
}

func (r *PingRepository) SelectPingsByWebsiteID(ctx context.Context, ext RepoExtension, websiteID int64, limit int) ([]model.Ping, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT pid, wid, uid, tx_hash, is_up, latency_ms, region, fee_paid_numeric, created_at
		FROM domain.pings
		WHERE wid = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`

	rows, err := ext.Query(ctx, query, websiteID, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var pings []model.Ping

	for rows.Next() {
		var ping model.Ping

		if err := rows.Scan(
			&ping.ID,
			&ping.WebsiteID,
			&ping.UserID,
			&ping.TxHash,
			&ping.IsUp,
			&ping.LatencyMS,
			&ping.Region,
			&ping.FeePaid,
			&ping.CreatedAt,
		); err != nil {
			return nil, err
		}

		pings = append(pings, ping)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pings, nil
}

// DeleteOrphans removes pings older than the grace cutoff that have no
// correlated transaction record. Used by the reconciliation sweep only;
// the happy path never produces such rows.
func (r *PingRepository) DeleteOrphans(ctx context.Context, ext RepoExtension, cutoff int64) (int64, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.pings p
		WHERE p.tx_hash <> ''
		  AND p.created_at < NOW() - make_interval(secs => $1)
		  AND NOT EXISTS (
		      SELECT 1 FROM domain.onchain_transactions t
		      WHERE t.pid = p.pid
		  );
	`

	tag, err := ext.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
