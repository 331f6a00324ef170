package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/pkg/database"
)

// PostgresSessionRepository implements SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `id, event_id, identifier, name, session_date, start_time, end_time,
	capacity, registered_count, is_required, created_at, updated_at`

// S2 sorts before S10
const sessionOrder = `ORDER BY substring(identifier from 2)::int, identifier`

func scanSession(row pgx.Row) (*domain.Session, error) {
	s := &domain.Session{}
	var start, end pgtype.Time
	err := row.Scan(
		&s.ID,
		&s.EventID,
		&s.Identifier,
		&s.Name,
		&s.Date,
		&start,
		&end,
		&s.Capacity,
		&s.RegisteredCount,
		&s.IsRequired,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Date = domain.DateOnly(s.Date)
	s.StartTime = time.Duration(start.Microseconds) * time.Microsecond
	s.EndTime = time.Duration(end.Microseconds) * time.Microsecond
	return s, nil
}

func timeOfDay(d time.Duration) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

func (r *PostgresSessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Session, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Create creates a new session
func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO event_sessions (
			id, event_id, identifier, name, session_date, start_time, end_time,
			capacity, registered_count, is_required, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		s.ID,
		s.EventID,
		s.Identifier,
		s.Name,
		s.Date,
		timeOfDay(s.StartTime),
		timeOfDay(s.EndTime),
		s.Capacity,
		s.RegisteredCount,
		s.IsRequired,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateSessionIdentifier.WithDetails(map[string]interface{}{"identifier": s.Identifier})
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_sessions WHERE id = $1`, sessionColumns)
	s, err := scanSession(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListByEvent lists the sessions of an event
func (r *PostgresSessionRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_sessions WHERE event_id = $1 %s`, sessionColumns, sessionOrder)
	return r.list(ctx, query, eventID)
}

// ListByEventForUpdate lists and locks the sessions of an event
func (r *PostgresSessionRepository) ListByEventForUpdate(ctx context.Context, eventID string) ([]*domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_sessions WHERE event_id = $1 %s FOR UPDATE`, sessionColumns, sessionOrder)
	return r.list(ctx, query, eventID)
}

// ListByIdentifiersForUpdate locks the named sessions of an event.
// Identifiers that do not exist are simply absent from the result.
func (r *PostgresSessionRepository) ListByIdentifiersForUpdate(ctx context.Context, eventID string, identifiers []string) ([]*domain.Session, error) {
	if len(identifiers) == 0 {
		return []*domain.Session{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM event_sessions WHERE event_id = $1 AND identifier = ANY($2) %s FOR UPDATE`,
		sessionColumns, sessionOrder)
	return r.list(ctx, query, eventID, identifiers)
}

// Update updates a session
func (r *PostgresSessionRepository) Update(ctx context.Context, s *domain.Session) error {
	query := `
		UPDATE event_sessions SET
			name = $2, session_date = $3, start_time = $4, end_time = $5,
			capacity = $6, registered_count = $7, is_required = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		s.ID,
		s.Name,
		s.Date,
		timeOfDay(s.StartTime),
		timeOfDay(s.EndTime),
		s.Capacity,
		s.RegisteredCount,
		s.IsRequired,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session by ID
func (r *PostgresSessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM event_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
