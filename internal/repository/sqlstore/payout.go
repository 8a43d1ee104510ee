package sqlstore

import (
	"context"

	"construction-sales-ledger/internal/domain"
)

type payoutRepository struct {
	q querier
}

const payoutColumns = `id, owner_id, amount, method, status, note, processed_by, requested_at, processed_at`

func scanPayout(row rowScanner) (*domain.Payout, error) {
	p := &domain.Payout{}
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Amount, &p.Method, &p.Status, &p.Note, &p.ProcessedBy, &p.RequestedAt, &p.ProcessedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *payoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	query := `INSERT INTO payouts (id, owner_id, amount, method, status, note, processed_by, requested_at, processed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.ExecContext(ctx, query, p.ID, p.OwnerID, p.Amount, p.Method, p.Status, p.Note, p.ProcessedBy, p.RequestedAt, p.ProcessedAt)
	return translate(err)
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	p, err := scanPayout(r.q.QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *payoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus, page, pageSize int32) ([]domain.Payout, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM payouts WHERE status = $1`, status).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE status = $1 ORDER BY requested_at LIMIT $2 OFFSET $3`,
		status, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, 0, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, count, rows.Err()
}

func (r *payoutRepository) Finalize(ctx context.Context, p *domain.Payout) (bool, error) {
	query := `UPDATE payouts SET status = $1, note = $2, processed_by = $3, processed_at = $4
	          WHERE id = $5 AND status = 'pending'`
	res, err := r.q.ExecContext(ctx, query, p.Status, p.Note, p.ProcessedBy, p.ProcessedAt, p.ID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
