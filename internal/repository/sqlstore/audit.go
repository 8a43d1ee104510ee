package sqlstore

import (
	"context"
	"database/sql"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository writes outside any ledger transaction; audit rows are
// recorded after the primary change commits.
func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	query := `INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, diff, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.Diff, e.CreatedAt)
	return err
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor_id, action, entity_type, entity_id, diff, created_at
		 FROM audit_log WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at`,
		entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Diff, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
