package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/community-events/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// eventColumns defines the columns to select for events
const eventColumns = `id, title, description, location, type, capacity, is_published,
	start_date, end_date, created_at, updated_at`

// scanEvent scans a row into an Event struct
func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var eventType string
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&eventType,
		&event.Capacity,
		&event.IsPublished,
		&event.StartDate,
		&event.EndDate,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Type = domain.EventType(eventType)
	event.StartDate = event.StartDate.UTC()
	event.EndDate = event.EndDate.UTC()
	return event, nil
}

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (
			id, title, description, location, type, capacity, is_published,
			start_date, end_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		string(event.Type),
		event.Capacity,
		event.IsPublished,
		event.StartDate,
		event.EndDate,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns), id)
}

// GetByIDForUpdate retrieves an event by ID and locks the row
func (r *PostgresEventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, fmt.Sprintf(`SELECT %s FROM events WHERE id = $1 FOR UPDATE`, eventColumns), id)
}

func (r *PostgresEventRepository) get(ctx context.Context, query, id string) (*domain.Event, error) {
	event, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// GetByIDs retrieves events keyed by ID
func (r *PostgresEventRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Event, error) {
	events := make(map[string]*domain.Event, len(ids))
	if len(ids) == 0 {
		return events, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = ANY($1::uuid[])`, eventColumns)
	rows, err := conn(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events[event.ID] = event
	}
	return events, rows.Err()
}

// Update updates an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events SET
			title = $2, description = $3, location = $4, type = $5, capacity = $6,
			is_published = $7, start_date = $8, end_date = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		string(event.Type),
		event.Capacity,
		event.IsPublished,
		event.StartDate,
		event.EndDate,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Delete deletes an event by ID
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// List lists events with filters and pagination, soonest first
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter != nil {
		if filter.Type != "" {
			conditions = append(conditions, fmt.Sprintf("type = $%d", argNum))
			args = append(args, filter.Type)
			argNum++
		}
		if filter.PublishedOnly {
			conditions = append(conditions, "is_published = TRUE")
		}
		if filter.UpcomingOnly {
			conditions = append(conditions, "end_date > NOW()")
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, where)
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY start_date ASC, id LIMIT $%d OFFSET $%d`,
		eventColumns, where, argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
