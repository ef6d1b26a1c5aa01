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

type SeatRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Seat, error)
	CountAvailable(ctx context.Context, eventID uuid.UUID) (int64, error)

	// Purchase path, must run inside WithinTx
	LockForPurchase(ctx context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error)
	Occupy(ctx context.Context, seatID, ticketID uuid.UUID) error
}

type seatRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSeatRepository(db database.Querier, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, event_id, tier_id, seat_row, seat_number, section, is_occupied, ticket_id, created_at, updated_at`

func (r *seatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`

	seat, err := scanSeat(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat by ID",
			zap.Error(err),
			zap.String("seat_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find seat: %w", err)
	}

	return seat, nil
}

func (r *seatRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1
		ORDER BY section NULLS FIRST, seat_row NULLS FIRST, seat_number NULLS FIRST
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find seats by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *seatRepository) CountAvailable(ctx context.Context, eventID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM seats WHERE event_id = $1 AND is_occupied = false`

	var count int64
	if err := r.db.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count available seats",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("count available seats: %w", err)
	}

	return count, nil
}

// LockForPurchase row-locks the requested seats (FOR UPDATE) in ascending id
// order so that concurrent purchases over overlapping sets cannot deadlock.
// Ids that do not exist are simply absent from the result.
func (r *seatRepository) LockForPurchase(ctx context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error) {
	if len(seatIDs) == 0 {
		return []*entity.Seat{}, nil
	}

	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.db.Query(ctx, query, seatIDs)
	if err != nil {
		r.log.Error("Failed to lock seats for purchase",
			zap.Error(err),
			zap.Int("seat_count", len(seatIDs)),
		)
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Occupy binds the seat to ticketID only if it is still free. The
// is_occupied guard makes this a compare-and-set even without the row lock.
func (r *seatRepository) Occupy(ctx context.Context, seatID, ticketID uuid.UUID) error {
	query := `
		UPDATE seats
		SET is_occupied = true, ticket_id = $2, updated_at = NOW()
		WHERE id = $1 AND is_occupied = false
	`

	result, err := r.db.Exec(ctx, query, seatID, ticketID)
	if err != nil {
		r.log.Error("Failed to occupy seat",
			zap.Error(err),
			zap.String("seat_id", seatID.String()),
		)
		return fmt.Errorf("occupy seat %s: %w", seatID, err)
	}

	if result.RowsAffected() != 1 {
		return fmt.Errorf("occupy seat %s: %w", seatID, ErrSeatTaken)
	}

	return nil
}

func (r *seatRepository) collect(rows pgx.Rows) ([]*entity.Seat, error) {
	var seats []*entity.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats: %w", err)
	}
	return seats, nil
}

func scanSeat(row pgx.Row) (*entity.Seat, error) {
	var seat entity.Seat
	err := row.Scan(
		&seat.ID,
		&seat.EventID,
		&seat.TierID,
		&seat.Row,
		&seat.Number,
		&seat.Section,
		&seat.IsOccupied,
		&seat.TicketID,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}
