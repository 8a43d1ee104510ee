package sqlstore

import (
	"context"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
)

type walletRepository struct {
	q querier
}

func (r *walletRepository) Get(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	query := `SELECT owner_id, available_balance, pending_balance, payout_reserved_balance, total_earned, total_withdrawn, created_at, updated_at
	          FROM wallets WHERE owner_id = $1`
	w := &domain.Wallet{}
	err := r.q.QueryRowContext(ctx, query, ownerID).Scan(&w.OwnerID, &w.Available, &w.Pending, &w.PayoutReserved,
		&w.TotalEarned, &w.TotalWithdrawn, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return w, nil
}

func (r *walletRepository) Credit(ctx context.Context, ownerID string, amount int64, now time.Time) error {
	query := `INSERT INTO wallets (owner_id, available_balance, pending_balance, payout_reserved_balance, total_earned, total_withdrawn, created_at, updated_at)
	          VALUES ($1, 0, $2, 0, $2, 0, $3, $3)
	          ON CONFLICT (owner_id) DO UPDATE SET
	              pending_balance = wallets.pending_balance + excluded.pending_balance,
	              total_earned = wallets.total_earned + excluded.total_earned,
	              updated_at = excluded.updated_at`
	logger.DatabaseCall("wallets.Credit", query, "ownerID", ownerID, "amount", amount)
	res, err := r.q.ExecContext(ctx, query, ownerID, amount, now)
	if err != nil {
		logger.DatabaseResult("wallets.Credit", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("wallets.Credit", n, err)
	return err
}

func (r *walletRepository) Promote(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error) {
	query := `UPDATE wallets
	          SET pending_balance = pending_balance - $1, available_balance = available_balance + $1, updated_at = $2
	          WHERE owner_id = $3 AND pending_balance >= $1`
	return r.exec(ctx, "wallets.Promote", query, amount, now, ownerID)
}

func (r *walletRepository) ReserveForPayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error) {
	query := `UPDATE wallets
	          SET available_balance = available_balance - $1, payout_reserved_balance = payout_reserved_balance + $1, updated_at = $2
	          WHERE owner_id = $3 AND available_balance >= $1`
	return r.exec(ctx, "wallets.ReserveForPayout", query, amount, now, ownerID)
}

func (r *walletRepository) SettlePayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error) {
	query := `UPDATE wallets
	          SET payout_reserved_balance = payout_reserved_balance - $1, total_withdrawn = total_withdrawn + $1, updated_at = $2
	          WHERE owner_id = $3 AND payout_reserved_balance >= $1`
	return r.exec(ctx, "wallets.SettlePayout", query, amount, now, ownerID)
}

func (r *walletRepository) RefundPayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error) {
	query := `UPDATE wallets
	          SET payout_reserved_balance = payout_reserved_balance - $1, available_balance = available_balance + $1, updated_at = $2
	          WHERE owner_id = $3 AND payout_reserved_balance >= $1`
	return r.exec(ctx, "wallets.RefundPayout", query, amount, now, ownerID)
}

func (r *walletRepository) exec(ctx context.Context, operation, query string, args ...any) (bool, error) {
	logger.DatabaseCall(operation, query)
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(operation, 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(operation, n, err)
	return n > 0, err
}

type transactionRepository struct {
	q querier
}

const transactionColumns = `id, owner_id, amount, kind, task_id, payout_id, description, created_at`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	if err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Amount, &tx.Kind, &tx.TaskID, &tx.PayoutID, &tx.Description, &tx.CreatedAt); err != nil {
		return nil, err
	}
	return tx, nil
}

// Append numbers entries per owner. Callers hold the owner's wallet row
// (every ledger operation updates it first), which serialises appends.
func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	var next int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM wallet_transactions WHERE owner_id = $1`, tx.OwnerID).Scan(&next)
	if err != nil {
		return err
	}

	query := `INSERT INTO wallet_transactions (id, owner_id, amount, kind, task_id, payout_id, description, created_at, seq_no)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.ExecContext(ctx, query, tx.ID, tx.OwnerID, tx.Amount, tx.Kind, tx.TaskID, tx.PayoutID, tx.Description, tx.CreatedAt, next)
	return translate(err)
}

func (r *transactionRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM wallet_transactions WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE owner_id = $1 ORDER BY seq_no DESC LIMIT $2 OFFSET $3`
	txs, err := r.list(ctx, query, ownerID, pageSize, offset)
	return txs, count, err
}

func (r *transactionRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE owner_id = $1 ORDER BY seq_no`
	return r.list(ctx, query, ownerID)
}

func (r *transactionRepository) FindByTask(ctx context.Context, taskID string, kind domain.TransactionKind) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE task_id = $1 AND kind = $2`
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, taskID, kind))
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}
