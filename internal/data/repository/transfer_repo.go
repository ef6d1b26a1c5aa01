package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const pendingTransferIndex = "uq_transfer_pending_ticket"

type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.TicketTransferHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error)
	FindPendingByTicket(ctx context.Context, ticketID uuid.UUID) (*entity.TicketTransferHistory, error)
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*entity.TicketTransferHistory, error)

	// Resolve moves a PENDING row to a terminal status. It returns
	// ErrStaleState when the row is no longer PENDING.
	Resolve(ctx context.Context, id uuid.UUID, status entity.TransferStatus, at time.Time) error

	// ExpirePending cancels every PENDING row whose expires_at is before
	// now and returns the rows it changed.
	ExpirePending(ctx context.Context, now time.Time) ([]*entity.TicketTransferHistory, error)
}

type transferRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTransferRepository(db database.Querier, log *zap.Logger) TransferRepository {
	return &transferRepository{
		db:  db,
		log: log.With(zap.String("repository", "transfer")),
	}
}

const transferColumns = `id, ticket_id, from_user_id, to_user_id, status, expires_at, transferred_at, created_at, updated_at`

func (r *transferRepository) Create(ctx context.Context, t *entity.TicketTransferHistory) error {
	query := `
		INSERT INTO ticket_transfer_histories (id, ticket_id, from_user_id, to_user_id, status,
		                                       expires_at, transferred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.TicketID,
		t.FromUserID,
		t.ToUserID,
		t.Status,
		t.ExpiresAt,
		t.TransferredAt,
		t.CreatedAt,
		t.UpdatedAt,
	)

	if database.IsUniqueViolation(err, pendingTransferIndex) {
		return fmt.Errorf("create transfer for ticket %s: %w", t.TicketID, ErrPendingTransferExists)
	}
	if err != nil {
		r.log.Error("Failed to create transfer",
			zap.Error(err),
			zap.String("ticket_id", t.TicketID.String()),
		)
		return fmt.Errorf("create transfer for ticket %s: %w", t.TicketID, err)
	}

	return nil
}

func (r *transferRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error) {
	return r.findOne(ctx, `SELECT `+transferColumns+` FROM ticket_transfer_histories WHERE id = $1`, id)
}

func (r *transferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error) {
	return r.findOne(ctx, `SELECT `+transferColumns+` FROM ticket_transfer_histories WHERE id = $1 FOR UPDATE`, id)
}

func (r *transferRepository) FindPendingByTicket(ctx context.Context, ticketID uuid.UUID) (*entity.TicketTransferHistory, error) {
	query := `SELECT ` + transferColumns + ` FROM ticket_transfer_histories WHERE ticket_id = $1 AND status = 'PENDING'`
	return r.findOne(ctx, query, ticketID)
}

func (r *transferRepository) findOne(ctx context.Context, query string, arg uuid.UUID) (*entity.TicketTransferHistory, error) {
	t, err := scanTransfer(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transfer",
			zap.Error(err),
			zap.String("id", arg.String()),
		)
		return nil, fmt.Errorf("find transfer: %w", err)
	}
	return t, nil
}

func (r *transferRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*entity.TicketTransferHistory, error) {
	query := `SELECT ` + transferColumns + ` FROM ticket_transfer_histories WHERE ticket_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		r.log.Error("Failed to list transfers by ticket",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return nil, fmt.Errorf("list transfers for ticket %s: %w", ticketID, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *transferRepository) Resolve(ctx context.Context, id uuid.UUID, status entity.TransferStatus, at time.Time) error {
	var transferredAt *time.Time
	if status == entity.TransferStatusTransferred {
		transferredAt = &at
	}

	query := `
		UPDATE ticket_transfer_histories
		SET status = $2, transferred_at = $3, updated_at = $4
		WHERE id = $1 AND status = 'PENDING'
	`

	result, err := r.db.Exec(ctx, query, id, status, transferredAt, at)
	if err != nil {
		r.log.Error("Failed to resolve transfer",
			zap.Error(err),
			zap.String("transfer_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("resolve transfer %s: %w", id, err)
	}

	if result.RowsAffected() != 1 {
		return fmt.Errorf("resolve transfer %s: %w", id, ErrStaleState)
	}

	return nil
}

func (r *transferRepository) ExpirePending(ctx context.Context, now time.Time) ([]*entity.TicketTransferHistory, error) {
	query := `
		UPDATE ticket_transfer_histories
		SET status = 'CANCELLED', updated_at = $1
		WHERE status = 'PENDING' AND expires_at < $1
		RETURNING ` + transferColumns

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to expire pending transfers", zap.Error(err))
		return nil, fmt.Errorf("expire pending transfers: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *transferRepository) collect(rows pgx.Rows) ([]*entity.TicketTransferHistory, error) {
	var transfers []*entity.TicketTransferHistory
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			r.log.Error("Failed to scan transfer row", zap.Error(err))
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

func scanTransfer(row pgx.Row) (*entity.TicketTransferHistory, error) {
	var t entity.TicketTransferHistory
	err := row.Scan(
		&t.ID,
		&t.TicketID,
		&t.FromUserID,
		&t.ToUserID,
		&t.Status,
		&t.ExpiresAt,
		&t.TransferredAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
