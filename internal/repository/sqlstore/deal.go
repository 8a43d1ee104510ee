package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
)

type dealRepository struct {
	q querier
}

const dealColumns = `id, unit_id, lead_id, created_by, final_price, discount, down_payment, plan_kind, status,
	cancel_reason, public_token, created_at, reserved_at, contract_signed_at, completed_at, cancelled_at, updated_at`

func scanDeal(row rowScanner) (*domain.Deal, error) {
	d := &domain.Deal{}
	err := row.Scan(&d.ID, &d.UnitID, &d.LeadID, &d.CreatedBy, &d.FinalPrice, &d.Discount, &d.DownPayment, &d.PlanKind, &d.Status,
		&d.CancelReason, &d.PublicToken, &d.CreatedAt, &d.ReservedAt, &d.ContractSignedAt, &d.CompletedAt, &d.CancelledAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *dealRepository) Create(ctx context.Context, d *domain.Deal) error {
	logger.EnterMethod("dealRepository.Create", "unitID", d.UnitID, "leadID", d.LeadID)

	query := `INSERT INTO deals (id, unit_id, lead_id, created_by, final_price, discount, down_payment, plan_kind, status,
	          cancel_reason, public_token, created_at, reserved_at, contract_signed_at, completed_at, cancelled_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.ExecContext(ctx, query, d.ID, d.UnitID, d.LeadID, d.CreatedBy, d.FinalPrice, d.Discount, d.DownPayment, d.PlanKind, d.Status,
		d.CancelReason, d.PublicToken, d.CreatedAt, d.ReservedAt, d.ContractSignedAt, d.CompletedAt, d.CancelledAt, d.UpdatedAt)
	if err != nil {
		logger.ExitMethodWithError("dealRepository.Create", err, "unitID", d.UnitID)
		return translate(err)
	}

	logger.ExitMethod("dealRepository.Create", "dealID", d.ID)
	return nil
}

func (r *dealRepository) GetByID(ctx context.Context, id string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	d, err := scanDeal(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (r *dealRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE public_token = $1`
	d, err := scanDeal(r.q.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (r *dealRepository) ListByUnit(ctx context.Context, unitID string) ([]domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE unit_id = $1 ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, rows.Err()
}

func (r *dealRepository) ListByStatus(ctx context.Context, status domain.DealStatus, page, pageSize int32) ([]domain.Deal, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM deals WHERE status = $1`, status).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + dealColumns + ` FROM deals WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, status, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, 0, err
		}
		deals = append(deals, *d)
	}
	return deals, count, rows.Err()
}

func (r *dealRepository) Transition(ctx context.Context, d *domain.Deal, from ...domain.DealStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("transition of deal %s needs at least one source status", d.ID)
	}
	args := []any{d.Status, d.CancelReason, d.ContractSignedAt, d.CompletedAt, d.CancelledAt, d.UpdatedAt, d.ID}
	placeholders := make([]string, len(from))
	for i, status := range from {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := `UPDATE deals
	          SET status = $1, cancel_reason = $2, contract_signed_at = $3, completed_at = $4, cancelled_at = $5, updated_at = $6
	          WHERE id = $7 AND status IN (` + strings.Join(placeholders, ", ") + `)`
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translate(err)
	}
	return affected(res)
}

func (r *dealRepository) CancelLiveByUnit(ctx context.Context, unitID, reason string, now time.Time) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id FROM deals WHERE unit_id = $1 AND status IN ('draft', 'reserved') ORDER BY created_at`, unitID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := `UPDATE deals
	          SET status = 'cancelled', cancel_reason = $1, cancelled_at = $2, updated_at = $2
	          WHERE unit_id = $3 AND status IN ('draft', 'reserved')`
	if _, err := r.q.ExecContext(ctx, query, reason, now, unitID); err != nil {
		return nil, err
	}
	return ids, nil
}
