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

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*entity.Ticket, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Ticket, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// ChangeOwner moves the ticket from one holder to another. It returns
	// ErrStaleState when the current owner is no longer fromOwner.
	ChangeOwner(ctx context.Context, ticketID, fromOwner, toOwner uuid.UUID) error
}

type ticketRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTicketRepository(db database.Querier, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `id, scan_code, name, event_id, purchase_id, seat_id, tier_id, owner_id,
	description, is_used, used_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, scan_code, name, event_id, purchase_id, seat_id, tier_id, owner_id,
		                     description, is_used, used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.ScanCode,
		ticket.Name,
		ticket.EventID,
		ticket.PurchaseID,
		ticket.SeatID,
		ticket.TierID,
		ticket.OwnerID,
		ticket.Description,
		ticket.IsUsed,
		ticket.UsedAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("seat_id", ticket.SeatID.String()),
			zap.String("purchase_id", ticket.PurchaseID.String()),
		)
		return fmt.Errorf("create ticket for seat %s: %w", ticket.SeatID, err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	return r.findOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
}

func (r *ticketRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	return r.findOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *ticketRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket %s: %w", id, err)
	}
	return ticket, nil
}

func (r *ticketRepository) FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE purchase_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, purchaseID)
	if err != nil {
		r.log.Error("Failed to find tickets by purchase",
			zap.Error(err),
			zap.String("purchase_id", purchaseID.String()),
		)
		return nil, fmt.Errorf("find tickets for purchase %s: %w", purchaseID, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *ticketRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find tickets by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find tickets for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *ticketRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count tickets by owner", zap.Error(err))
		return 0, fmt.Errorf("count tickets for owner %s: %w", ownerID, err)
	}
	return count, nil
}

func (r *ticketRepository) ChangeOwner(ctx context.Context, ticketID, fromOwner, toOwner uuid.UUID) error {
	query := `
		UPDATE tickets
		SET owner_id = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.db.Exec(ctx, query, ticketID, fromOwner, toOwner)
	if err != nil {
		r.log.Error("Failed to change ticket owner",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return fmt.Errorf("change owner of ticket %s: %w", ticketID, err)
	}

	if result.RowsAffected() != 1 {
		return fmt.Errorf("change owner of ticket %s: %w", ticketID, ErrStaleState)
	}

	return nil
}

func (r *ticketRepository) collect(rows pgx.Rows) ([]*entity.Ticket, error) {
	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(
		&t.ID,
		&t.ScanCode,
		&t.Name,
		&t.EventID,
		&t.PurchaseID,
		&t.SeatID,
		&t.TierID,
		&t.OwnerID,
		&t.Description,
		&t.IsUsed,
		&t.UsedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
