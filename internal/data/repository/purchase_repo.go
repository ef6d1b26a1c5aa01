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

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
}

type purchaseRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPurchaseRepository(db database.Querier, log *zap.Logger) PurchaseRepository {
	return &purchaseRepository{
		db:  db,
		log: log.With(zap.String("repository", "purchase")),
	}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, event_id, user_id, payment_method, payment_details, transaction_ref,
		                       voucher_id, subtotal, discount, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		purchase.ID,
		purchase.EventID,
		purchase.UserID,
		purchase.PaymentMethod,
		purchase.PaymentDetails,
		purchase.TransactionRef,
		purchase.VoucherID,
		purchase.Subtotal,
		purchase.Discount,
		purchase.Total,
		purchase.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create purchase",
			zap.Error(err),
			zap.String("user_id", purchase.UserID.String()),
			zap.String("event_id", purchase.EventID.String()),
		)
		return fmt.Errorf("create purchase: %w", err)
	}

	return nil
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	query := `
		SELECT id, event_id, user_id, payment_method, payment_details, transaction_ref,
		       voucher_id, subtotal, discount, total, created_at
		FROM purchases
		WHERE id = $1
	`

	var p entity.Purchase
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.EventID,
		&p.UserID,
		&p.PaymentMethod,
		&p.PaymentDetails,
		&p.TransactionRef,
		&p.VoucherID,
		&p.Subtotal,
		&p.Discount,
		&p.Total,
		&p.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find purchase by ID",
			zap.Error(err),
			zap.String("purchase_id", id.String()),
		)
		return nil, fmt.Errorf("find purchase %s: %w", id, err)
	}

	return &p, nil
}
