package sqlstore

import (
	"context"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
)

type installmentRepository struct {
	q querier
}

const installmentColumns = `id, deal_id, seq, amount, due_date, milestone_task_id, milestone_percentage, status,
	paid_amount, paid_at, payment_method, created_at, updated_at`

func scanInstallment(row rowScanner) (*domain.Installment, error) {
	i := &domain.Installment{}
	err := row.Scan(&i.ID, &i.DealID, &i.Sequence, &i.Amount, &i.DueDate, &i.MilestoneTaskID, &i.MilestonePercentage, &i.Status,
		&i.PaidAmount, &i.PaidAt, &i.PaymentMethod, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// CreateBatch must run inside Store.WithTx so that the schedule lands whole or not at all.
func (r *installmentRepository) CreateBatch(ctx context.Context, installments []domain.Installment) error {
	logger.EnterMethod("installmentRepository.CreateBatch", "count", len(installments))

	query := `INSERT INTO installments (id, deal_id, seq, amount, due_date, milestone_task_id, milestone_percentage, status,
	          paid_amount, paid_at, payment_method, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, i := range installments {
		_, err := r.q.ExecContext(ctx, query, i.ID, i.DealID, i.Sequence, i.Amount, i.DueDate, i.MilestoneTaskID, i.MilestonePercentage, i.Status,
			i.PaidAmount, i.PaidAt, i.PaymentMethod, i.CreatedAt, i.UpdatedAt)
		if err != nil {
			logger.ExitMethodWithError("installmentRepository.CreateBatch", err, "dealID", i.DealID, "sequence", i.Sequence)
			return translate(err)
		}
	}

	logger.ExitMethod("installmentRepository.CreateBatch", "count", len(installments))
	return nil
}

func (r *installmentRepository) GetByID(ctx context.Context, id string) (*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`
	i, err := scanInstallment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return i, nil
}

func (r *installmentRepository) ListByDeal(ctx context.Context, dealID string) ([]domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE deal_id = $1 ORDER BY seq`
	return r.list(ctx, query, dealID)
}

func (r *installmentRepository) CountByDeal(ctx context.Context, dealID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM installments WHERE deal_id = $1`, dealID).Scan(&count)
	return count, err
}

func (r *installmentRepository) ListDueBefore(ctx context.Context, before time.Time) ([]domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments
	          WHERE status IN ('pending', 'overdue') AND due_date < $1
	          ORDER BY due_date, seq`
	return r.list(ctx, query, before)
}

func (r *installmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Installment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []domain.Installment
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, *i)
	}
	return installments, rows.Err()
}

func (r *installmentRepository) WaiveUnpaid(ctx context.Context, dealID string, now time.Time) (int64, error) {
	query := `UPDATE installments SET status = 'waived', updated_at = $1
	          WHERE deal_id = $2 AND status IN ('pending', 'overdue')`
	res, err := r.q.ExecContext(ctx, query, now, dealID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *installmentRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE installments SET status = 'overdue', updated_at = $1
	          WHERE status = 'pending' AND due_date < $1`
	res, err := r.q.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *installmentRepository) ResolveMilestone(ctx context.Context, taskID string, dueDate, now time.Time) (int64, error) {
	query := `UPDATE installments SET due_date = $1, updated_at = $2
	          WHERE milestone_task_id = $3 AND status = 'pending' AND due_date = $4`
	res, err := r.q.ExecContext(ctx, query, dueDate, now, taskID, domain.MilestoneDuePlaceholder)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *installmentRepository) MarkPaid(ctx context.Context, id string, amount int64, method string, paidAt, now time.Time) (bool, error) {
	query := `UPDATE installments
	          SET status = 'paid', paid_amount = $1, payment_method = $2, paid_at = $3, updated_at = $4
	          WHERE id = $5 AND status IN ('pending', 'overdue')`
	res, err := r.q.ExecContext(ctx, query, amount, method, paidAt, now, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
