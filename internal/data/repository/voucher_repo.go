package repository

import (
	"context"
	"errors"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VoucherRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Voucher, error)
}

type voucherRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewVoucherRepository(db database.Querier, log *zap.Logger) VoucherRepository {
	return &voucherRepository{
		db:  db,
		log: log.With(zap.String("repository", "voucher")),
	}
}

func (r *voucherRepository) FindByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	query := `
		SELECT id, code, name, organizer_id, discount, starts_at, ends_at, created_at
		FROM vouchers
		WHERE code = $1
	`

	var v entity.Voucher
	err := r.db.QueryRow(ctx, query, code).Scan(
		&v.ID,
		&v.Code,
		&v.Name,
		&v.OrganizerID,
		&v.Discount,
		&v.StartsAt,
		&v.EndsAt,
		&v.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find voucher by code", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("find voucher %q: %w", code, err)
	}

	return &v, nil
}
