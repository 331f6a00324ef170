package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/pkg/database"
)

// PostgresParticipationRepository implements ParticipationRepository using PostgreSQL
type PostgresParticipationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipationRepository creates a new PostgresParticipationRepository
func NewPostgresParticipationRepository(pool *pgxpool.Pool) *PostgresParticipationRepository {
	return &PostgresParticipationRepository{pool: pool}
}

const participationColumns = `id, event_id, user_id, type, status, ticket_type_id::text,
	session_identifiers, payment_method_id, notes, created_at, updated_at,
	cancelled_at, cancellation_reason, created_by, updated_by`

// scanParticipation scans a row into a Participation struct
func scanParticipation(row pgx.Row) (*domain.Participation, error) {
	p := &domain.Participation{}
	var pType, status string
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.UserID,
		&pType,
		&status,
		&p.TicketTypeID,
		&p.SessionIdentifiers,
		&p.PaymentMethodID,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CancelledAt,
		&p.CancellationReason,
		&p.CreatedBy,
		&p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	p.Type = domain.ParticipationType(pType)
	p.Status = domain.ParticipationStatus(status)
	return p, nil
}

// Create creates a new participation
func (r *PostgresParticipationRepository) Create(ctx context.Context, p *domain.Participation) error {
	query := `
		INSERT INTO event_participations (
			id, event_id, user_id, type, status, ticket_type_id, session_identifiers,
			payment_method_id, notes, created_at, updated_at, cancelled_at,
			cancellation_reason, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	sessions := p.SessionIdentifiers
	if sessions == nil {
		sessions = []string{}
	}
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		p.ID,
		p.EventID,
		p.UserID,
		string(p.Type),
		string(p.Status),
		p.TicketTypeID,
		sessions,
		p.PaymentMethodID,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
		p.CancelledAt,
		p.CancellationReason,
		p.CreatedBy,
		p.UpdatedBy,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrAlreadyParticipating
		}
		return fmt.Errorf("failed to create participation: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a participation
func (r *PostgresParticipationRepository) Update(ctx context.Context, p *domain.Participation) error {
	query := `
		UPDATE event_participations SET
			status = $2, notes = $3, updated_at = $4, cancelled_at = $5,
			cancellation_reason = $6, updated_by = $7
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		p.ID,
		string(p.Status),
		p.Notes,
		p.UpdatedAt,
		p.CancelledAt,
		p.CancellationReason,
		p.UpdatedBy,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrAlreadyParticipating
		}
		return fmt.Errorf("failed to update participation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipationNotFound
	}
	return nil
}

func (r *PostgresParticipationRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Participation, error) {
	p, err := scanParticipation(conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	return p, nil
}

// GetByID retrieves a participation by ID
func (r *PostgresParticipationRepository) GetByID(ctx context.Context, id string) (*domain.Participation, error) {
	return r.getOne(ctx, fmt.Sprintf(`SELECT %s FROM event_participations WHERE id = $1`, participationColumns), id)
}

// GetByIDForUpdate retrieves and locks a participation
func (r *PostgresParticipationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Participation, error) {
	return r.getOne(ctx, fmt.Sprintf(`SELECT %s FROM event_participations WHERE id = $1 FOR UPDATE`, participationColumns), id)
}

// GetActiveByEventAndUser returns the active participation of a user for an event
func (r *PostgresParticipationRepository) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_participations
		WHERE event_id = $1 AND user_id = $2 AND status = 'active'`, participationColumns)
	return r.getOne(ctx, query, eventID, userID)
}

// GetLatestByEventAndUser returns the newest participation of a user for an event
func (r *PostgresParticipationRepository) GetLatestByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_participations
		WHERE event_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, participationColumns)
	return r.getOne(ctx, query, eventID, userID)
}

// CountActiveByEvent counts active participations of an event
func (r *PostgresParticipationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM event_participations WHERE event_id = $1 AND status = 'active'`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participations: %w", err)
	}
	return count, nil
}

// ListByUser lists a user's participations newest first
func (r *PostgresParticipationRepository) ListByUser(ctx context.Context, userID string, filter *ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error) {
	return r.list(ctx, "user_id", userID, filter, limit, offset)
}

// ListByEvent lists an event's participations newest first
func (r *PostgresParticipationRepository) ListByEvent(ctx context.Context, eventID string, filter *ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error) {
	return r.list(ctx, "event_id", eventID, filter, limit, offset)
}

// list filters on column, which is always a fixed column name
func (r *PostgresParticipationRepository) list(ctx context.Context, column, value string, filter *ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error) {
	conditions := []string{column + " = $1"}
	args := []interface{}{value}
	argNum := 2

	if filter != nil {
		if filter.Status != "" {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
			args = append(args, filter.Status)
			argNum++
		}
		if filter.Type != "" {
			conditions = append(conditions, fmt.Sprintf("type = $%d", argNum))
			args = append(args, filter.Type)
			argNum++
		}
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM event_participations %s`, where)
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count participations: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM event_participations %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		participationColumns, where, argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	participations := make([]*domain.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return participations, total, nil
}
