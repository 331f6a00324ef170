package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/community-events/internal/domain"
)

// PostgresTicketTypeRepository implements TicketTypeRepository using PostgreSQL
type PostgresTicketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketTypeRepository creates a new PostgresTicketTypeRepository
func NewPostgresTicketTypeRepository(pool *pgxpool.Pool) *PostgresTicketTypeRepository {
	return &PostgresTicketTypeRepository{pool: pool}
}

// Prices are stored as NUMERIC and read back as float8
const ticketTypeColumns = `id, event_id, name, description, pricing,
	price::float8, min_price::float8, suggested_price::float8, max_price::float8,
	session_identifiers, is_active, sort_order, created_at, updated_at`

func scanTicketType(row pgx.Row) (*domain.TicketType, error) {
	t := &domain.TicketType{}
	var pricing string
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Description,
		&pricing,
		&t.Price,
		&t.MinPrice,
		&t.SuggestedPrice,
		&t.MaxPrice,
		&t.SessionIdentifiers,
		&t.IsActive,
		&t.SortOrder,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Pricing = domain.PricingMode(pricing)
	return t, nil
}

// Create creates a new ticket type
func (r *PostgresTicketTypeRepository) Create(ctx context.Context, t *domain.TicketType) error {
	query := `
		INSERT INTO event_ticket_types (
			id, event_id, name, description, pricing, price, min_price, suggested_price,
			max_price, session_identifiers, is_active, sort_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		t.ID,
		t.EventID,
		t.Name,
		t.Description,
		string(t.Pricing),
		t.Price,
		t.MinPrice,
		t.SuggestedPrice,
		t.MaxPrice,
		t.SessionIdentifiers,
		t.IsActive,
		t.SortOrder,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket type: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket type by ID
func (r *PostgresTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_ticket_types WHERE id = $1`, ticketTypeColumns)
	t, err := scanTicketType(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	return t, nil
}

// ListByEvent lists the ticket types of an event by sort order
func (r *PostgresTicketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_ticket_types WHERE event_id = $1 ORDER BY sort_order, name`, ticketTypeColumns)
	rows, err := conn(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	ticketTypes := make([]*domain.TicketType, 0)
	for rows.Next() {
		t, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		ticketTypes = append(ticketTypes, t)
	}
	return ticketTypes, rows.Err()
}

// Update updates a ticket type
func (r *PostgresTicketTypeRepository) Update(ctx context.Context, t *domain.TicketType) error {
	query := `
		UPDATE event_ticket_types SET
			name = $2, description = $3, pricing = $4, price = $5, min_price = $6,
			suggested_price = $7, max_price = $8, session_identifiers = $9,
			is_active = $10, sort_order = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		string(t.Pricing),
		t.Price,
		t.MinPrice,
		t.SuggestedPrice,
		t.MaxPrice,
		t.SessionIdentifiers,
		t.IsActive,
		t.SortOrder,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

// Delete deletes a ticket type by ID
func (r *PostgresTicketTypeRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM event_ticket_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}
