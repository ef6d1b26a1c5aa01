package repository

import (
	"context"
	"errors"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EventRepository is read-only here; event and tier CRUD live elsewhere.
type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindTiersByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.TicketTier, error)
}

type eventRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEventRepository(db database.Querier, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `
		SELECT id, organizer_id, title, venue, starts_at, is_published, is_cancelled, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Venue,
		&event.StartsAt,
		&event.IsPublished,
		&event.IsCancelled,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event %s: %w", id, err)
	}

	return &event, nil
}

func (r *eventRepository) FindTiersByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price, quantity, category, created_at
		FROM ticket_tiers
		WHERE event_id = $1
		ORDER BY price DESC, name
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find tiers by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find tiers for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var tiers []*entity.TicketTier
	for rows.Next() {
		var tier entity.TicketTier
		err := rows.Scan(
			&tier.ID,
			&tier.EventID,
			&tier.Name,
			&tier.Price,
			&tier.Quantity,
			&tier.Category,
			&tier.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan tier row", zap.Error(err))
			return nil, fmt.Errorf("scan tier row: %w", err)
		}
		tiers = append(tiers, &tier)
	}

	return tiers, rows.Err()
}
