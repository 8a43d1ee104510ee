package sqlstore

import (
	"context"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
)

type unitRepository struct {
	q querier
}

const unitColumns = `id, project_id, construction_status, sales_status, list_price,
	reservation_holder_id, reservation_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*domain.Unit, error) {
	u := &domain.Unit{}
	err := row.Scan(&u.ID, &u.ProjectID, &u.ConstructionStatus, &u.SalesStatus, &u.ListPrice,
		&u.ReservationHolderID, &u.ReservationExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *unitRepository) Create(ctx context.Context, u *domain.Unit) error {
	query := `INSERT INTO units (id, project_id, construction_status, sales_status, list_price,
	          reservation_holder_id, reservation_expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.ExecContext(ctx, query, u.ID, u.ProjectID, u.ConstructionStatus, u.SalesStatus, u.ListPrice,
		u.ReservationHolderID, u.ReservationExpiresAt, u.CreatedAt, u.UpdatedAt)
	return translate(err)
}

func (r *unitRepository) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`
	u, err := scanUnit(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *unitRepository) ListBySalesStatus(ctx context.Context, status domain.UnitSalesStatus) ([]domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE sales_status = $1 ORDER BY created_at`
	return r.list(ctx, query, status)
}

func (r *unitRepository) ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units
	          WHERE sales_status = 'reserved' AND reservation_expires_at < $1
	          ORDER BY reservation_expires_at`
	return r.list(ctx, query, now)
}

func (r *unitRepository) list(ctx context.Context, query string, args ...any) ([]domain.Unit, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

func (r *unitRepository) Reserve(ctx context.Context, id, holderID string, expiresAt, now time.Time) (bool, error) {
	query := `UPDATE units
	          SET sales_status = 'reserved', reservation_holder_id = $1, reservation_expires_at = $2, updated_at = $3
	          WHERE id = $4 AND sales_status = 'available'`
	logger.DatabaseCall("units.Reserve", query, "unitID", id)
	res, err := r.q.ExecContext(ctx, query, holderID, expiresAt, now, id)
	if err != nil {
		logger.DatabaseResult("units.Reserve", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("units.Reserve", n, err)
	return n > 0, err
}

func (r *unitRepository) ExtendReservation(ctx context.Context, id, holderID string, expiresAt, now time.Time) (bool, error) {
	query := `UPDATE units
	          SET reservation_expires_at = $1, updated_at = $2
	          WHERE id = $3
	            AND sales_status = 'reserved'
	            AND reservation_holder_id = $4
	            AND reservation_expires_at >= $2`
	logger.DatabaseCall("units.ExtendReservation", query, "unitID", id)
	res, err := r.q.ExecContext(ctx, query, expiresAt, now, id, holderID)
	if err != nil {
		logger.DatabaseResult("units.ExtendReservation", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("units.ExtendReservation", n, err)
	return n > 0, err
}

func (r *unitRepository) TouchReserved(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE units SET updated_at = $1 WHERE id = $2 AND sales_status = 'reserved'`
	res, err := r.q.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *unitRepository) ReleaseExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE units
	          SET sales_status = 'available', reservation_holder_id = NULL, reservation_expires_at = NULL, updated_at = $1
	          WHERE id = $2
	            AND sales_status = 'reserved'
	            AND reservation_expires_at < $1
	            AND NOT EXISTS (
	                SELECT 1 FROM deals
	                WHERE deals.unit_id = units.id AND deals.status IN ('contract_signed', 'completed'))`
	res, err := r.q.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *unitRepository) Release(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE units
	          SET sales_status = 'available', reservation_holder_id = NULL, reservation_expires_at = NULL, updated_at = $1
	          WHERE id = $2
	            AND sales_status = 'reserved'
	            AND NOT EXISTS (
	                SELECT 1 FROM deals
	                WHERE deals.unit_id = units.id AND deals.status IN ('draft', 'reserved', 'contract_signed'))`
	res, err := r.q.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *unitRepository) MarkSold(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE units
	          SET sales_status = 'sold', reservation_holder_id = NULL, reservation_expires_at = NULL, updated_at = $1
	          WHERE id = $2 AND sales_status = 'reserved'`
	res, err := r.q.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
