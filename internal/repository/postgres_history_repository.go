package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/community-events/internal/domain"
)

// PostgresHistoryRepository implements HistoryRepository using PostgreSQL.
// Records are insert-only.
type PostgresHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHistoryRepository creates a new PostgresHistoryRepository
func NewPostgresHistoryRepository(pool *pgxpool.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{pool: pool}
}

// Append writes one audit record
func (r *PostgresHistoryRepository) Append(ctx context.Context, h *domain.ParticipationHistory) error {
	query := `
		INSERT INTO participation_history (
			id, participation_id, action, old_value, new_value, changed_by, change_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var oldValue []byte
	if len(h.OldValue) > 0 {
		oldValue = h.OldValue
	}
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		h.ID,
		h.ParticipationID,
		string(h.Action),
		oldValue,
		[]byte(h.NewValue),
		h.ChangedBy,
		h.ChangeReason,
		h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append participation history: %w", err)
	}
	return nil
}

// ListByParticipation lists the audit records of a participation oldest first
func (r *PostgresHistoryRepository) ListByParticipation(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error) {
	query := `
		SELECT id, participation_id, action, old_value, new_value, changed_by, change_reason, created_at
		FROM participation_history
		WHERE participation_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := conn(ctx, r.pool).Query(ctx, query, participationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participation history: %w", err)
	}
	defer rows.Close()

	history := make([]*domain.ParticipationHistory, 0)
	for rows.Next() {
		h := &domain.ParticipationHistory{}
		var action string
		var oldValue, newValue []byte
		if err := rows.Scan(&h.ID, &h.ParticipationID, &action, &oldValue, &newValue, &h.ChangedBy, &h.ChangeReason, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participation history: %w", err)
		}
		h.Action = domain.HistoryAction(action)
		h.OldValue = oldValue
		h.NewValue = newValue
		history = append(history, h)
	}
	return history, rows.Err()
}
