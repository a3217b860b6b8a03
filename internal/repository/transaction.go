package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

// TransactionRepository is the payment-token ledger. The tx_hash primary
// key serializes consumption: the first insert wins, every concurrent
// racer gets a unique violation.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		db: db,
	}
}

func (r *TransactionRepository) Pool() *pgxpool.Pool {
	return r.db
}

// InsertTransaction consumes a payment token. It must run in the same
// transaction as the ping insert; a unique violation on tx_hash means the
// token was consumed by a concurrent request.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, ext RepoExtension, tx *model.OnChainTransaction) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.onchain_transactions (tx_hash, uid, pid, token_address, token_amount, gas_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;
	`

	err := ext.QueryRow(ctx, query,
		tx.TxHash,
		tx.UserID,
		tx.PingID,
		tx.TokenAddress,
		tx.TokenAmount,
		tx.GasUsed,
	).Scan(&tx.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.ErrTokenAlreadyUsed
		}

		return err
	}

	return nil
}

// IsConsumed reports whether a token already funds a ping. Advisory only:
// the race between this check and InsertTransaction is closed by the
// unique constraint, not by this read.
func (r *TransactionRepository) IsConsumed(ctx context.Context, ext RepoExtension, txHash string) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT EXISTS (
			SELECT 1 FROM domain.onchain_transactions
			WHERE tx_hash = $1
		);
	`

	var consumed bool

	if err := ext.QueryRow(ctx, query, txHash).Scan(&consumed); err != nil {
		return false, err
	}

	return consumed, nil
}

func (r *TransactionRepository) SelectTransactionsByUser(ctx context.Context, ext RepoExtension, userID int64) ([]model.OnChainTransaction, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT tx_hash, uid, pid, token_address, token_amount, gas_used, created_at
		FROM domain.onchain_transactions
		WHERE uid = $1
		ORDER BY created_at DESC;
	`

	rows, err := ext.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var transactions []model.OnChainTransaction

	for rows.Next() {
		var tx model.OnChainTransaction

		if err := rows.Scan(
			&tx.TxHash,
			&tx.UserID,
			&tx.PingID,
			&tx.TokenAddress,
			&tx.TokenAmount,
			&tx.GasUsed,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}
