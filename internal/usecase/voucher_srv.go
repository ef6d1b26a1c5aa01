package usecase

import (
	"context"
	"fmt"
	"strings"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type VoucherDetails struct {
	ID          uuid.UUID
	Code        string
	Name        string
	OrganizerID uuid.UUID
	Discount    decimal.Decimal
}

type VoucherService interface {
	// Resolve returns nil when the code is unknown, outside its active
	// window, or belongs to another organizer than the event's.
	Resolve(ctx context.Context, code string, eventID *uuid.UUID) (*VoucherDetails, error)
	Lookup(ctx context.Context, code string, eventID *uuid.UUID) (*response.VoucherResponse, error)
}

type voucherService struct {
	repo  *repository.Repository
	clock utils.Clock
	log   *zap.Logger
}

func NewVoucherService(repo *repository.Repository, clock utils.Clock, log *zap.Logger) VoucherService {
	return &voucherService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "voucher")),
	}
}

func (s *voucherService) Resolve(ctx context.Context, code string, eventID *uuid.UUID) (*VoucherDetails, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	voucher, err := s.repo.Voucher.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find voucher: %w", err)
	}
	if voucher == nil || !voucher.ActiveAt(s.clock.Now()) {
		return nil, nil
	}

	if eventID != nil {
		event, err := s.repo.Event.FindByID(ctx, *eventID)
		if err != nil {
			return nil, fmt.Errorf("find event for voucher: %w", err)
		}
		if event == nil || event.OrganizerID != voucher.OrganizerID {
			return nil, nil
		}
	}

	return &VoucherDetails{
		ID:          voucher.ID,
		Code:        voucher.Code,
		Name:        voucher.Name,
		OrganizerID: voucher.OrganizerID,
		Discount:    voucher.Discount,
	}, nil
}

func (s *voucherService) Lookup(ctx context.Context, code string, eventID *uuid.UUID) (*response.VoucherResponse, error) {
	details, err := s.Resolve(ctx, code, eventID)
	if err != nil {
		s.log.Error("Failed to resolve voucher", zap.Error(err), zap.String("code", code))
		return nil, err
	}

	resp := &response.VoucherResponse{Valid: details != nil, Code: code}
	if details != nil {
		discount := details.Discount.StringFixed(2)
		resp.Name = &details.Name
		resp.Discount = &discount
	}
	return resp, nil
}
