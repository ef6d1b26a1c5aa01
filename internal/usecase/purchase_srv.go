package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/notify"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PurchaseService interface {
	Purchase(ctx context.Context, buyerID uuid.UUID, req *request.PurchaseRequest) (*response.PurchaseResponse, error)
	GetPurchase(ctx context.Context, buyerID, purchaseID uuid.UUID) (*response.PurchaseResponse, error)
	GetEventSeats(ctx context.Context, eventID uuid.UUID) (*response.EventSeatsResponse, error)
}

type purchaseService struct {
	repo     *repository.Repository
	issuer   *TicketIssuer
	vouchers VoucherService
	sink     notify.Sink
	clock    utils.Clock
	log      *zap.Logger
}

func NewPurchaseService(repo *repository.Repository, issuer *TicketIssuer, vouchers VoucherService, sink notify.Sink, clock utils.Clock, log *zap.Logger) PurchaseService {
	return &purchaseService{
		repo:     repo,
		issuer:   issuer,
		vouchers: vouchers,
		sink:     sink,
		clock:    clock,
		log:      log.With(zap.String("service", "purchase")),
	}
}

func (s *purchaseService) Purchase(ctx context.Context, buyerID uuid.UUID, req *request.PurchaseRequest) (*response.PurchaseResponse, error) {
	started := time.Now()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Purchase validation failed", zap.Any("errors", errs))
		metrics.ObservePurchase("invalid", started, 0)
		return nil, &ValidationError{Fields: errs}
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"EventID": "Must be a valid UUID"}}
	}
	seatIDs := make([]uuid.UUID, len(req.SeatIDs))
	for i, raw := range req.SeatIDs {
		if seatIDs[i], err = uuid.Parse(raw); err != nil {
			return nil, &ValidationError{Fields: map[string]string{"SeatIDs": "Must be a valid UUID"}}
		}
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		metrics.ObservePurchase("rejected", started, 0)
		return nil, ErrEventNotFound
	}
	if !event.OnSale() {
		metrics.ObservePurchase("rejected", started, 0)
		return nil, ErrEventUnavailable
	}

	var voucher *VoucherDetails
	if req.VoucherCode != nil {
		voucher, err = s.vouchers.Resolve(ctx, *req.VoucherCode, &eventID)
		if err != nil {
			return nil, fmt.Errorf("resolve voucher: %w", err)
		}
		if voucher == nil {
			metrics.ObservePurchase("rejected", started, 0)
			return nil, ErrVoucherInvalid
		}
	}

	tierList, err := s.repo.Event.FindTiersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find tiers: %w", err)
	}
	tiers := make(map[uuid.UUID]*entity.TicketTier, len(tierList))
	for _, t := range tierList {
		tiers[t.ID] = t
	}

	purchase := &entity.Purchase{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: s.clock.Now(),
		},
		EventID:        eventID,
		UserID:         buyerID,
		PaymentMethod:  entity.PaymentMethod(req.PaymentMethod),
		PaymentDetails: req.PaymentDetails,
		TransactionRef: utils.GenerateTransactionRef(),
	}
	if voucher != nil {
		purchase.VoucherID = &voucher.ID
	}

	var tickets []*entity.Ticket
	var seats map[uuid.UUID]*entity.Seat

	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Seat.LockForPurchase(ctx, seatIDs)
		if err != nil {
			return err
		}

		seats = make(map[uuid.UUID]*entity.Seat, len(locked))
		for _, seat := range locked {
			if seat.EventID == eventID {
				seats[seat.ID] = seat
			}
		}

		var missing, occupied []uuid.UUID
		for _, id := range seatIDs {
			seat, ok := seats[id]
			switch {
			case !ok:
				missing = append(missing, id)
			case seat.IsOccupied:
				occupied = append(occupied, id)
			}
		}
		if len(missing) > 0 {
			return &SeatError{Err: ErrSeatNotFound, SeatIDs: missing}
		}
		if len(occupied) > 0 {
			return &SeatError{Err: ErrSeatUnavailable, SeatIDs: occupied}
		}

		subtotal := decimal.Zero
		for _, id := range seatIDs {
			tier, ok := tiers[seats[id].TierID]
			if !ok {
				return fmt.Errorf("seat %s references unknown tier %s", id, seats[id].TierID)
			}
			subtotal = subtotal.Add(tier.Price)
		}
		purchase.Subtotal = subtotal
		purchase.Discount = decimal.Zero
		if voucher != nil {
			purchase.Discount = decimal.Min(voucher.Discount, subtotal)
			if purchase.Discount.IsNegative() {
				purchase.Discount = decimal.Zero
			}
		}
		purchase.Total = subtotal.Sub(purchase.Discount)

		if err := tx.Purchase.Create(ctx, purchase); err != nil {
			return err
		}

		tickets = make([]*entity.Ticket, 0, len(seatIDs))
		for _, id := range seatIDs {
			seat := seats[id]
			ticket, err := s.issuer.Issue(ctx, tx, purchase, event, tiers[seat.TierID], seat)
			if err != nil {
				return err
			}
			if err := tx.Seat.Occupy(ctx, seat.ID, ticket.ID); err != nil {
				if errors.Is(err, repository.ErrSeatTaken) {
					return &SeatError{Err: ErrSeatUnavailable, SeatIDs: []uuid.UUID{seat.ID}}
				}
				return err
			}
			tickets = append(tickets, ticket)
		}
		return nil
	})
	if err != nil {
		var seatErr *SeatError
		if errors.As(err, &seatErr) {
			s.log.Info("Purchase rejected",
				zap.Error(err),
				zap.String("user_id", buyerID.String()),
				zap.String("event_id", eventID.String()),
			)
			metrics.ObservePurchase("conflict", started, 0)
			return nil, err
		}
		s.log.Error("Purchase transaction failed",
			zap.Error(err),
			zap.String("user_id", buyerID.String()),
			zap.String("event_id", eventID.String()),
		)
		metrics.ObservePurchase("failed", started, 0)
		return nil, fmt.Errorf("purchase transaction: %w", err)
	}

	scanTokens := make([]string, len(tickets))
	for i, t := range tickets {
		scanTokens[i] = utils.ScanCodeToken(t.ScanCode)
	}

	metrics.ObservePurchase("completed", started, len(tickets))
	s.log.Info("Purchase completed",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("transaction_ref", purchase.TransactionRef),
		zap.String("user_id", buyerID.String()),
		zap.Int("ticket_count", len(tickets)),
		zap.Strings("scan_tokens", scanTokens),
		zap.String("total", purchase.Total.String()),
	)

	s.announce(ctx, purchase, event, len(tickets))

	ticketResponses := make([]response.TicketResponse, len(tickets))
	for i, t := range tickets {
		ticketResponses[i] = response.TicketToResponse(t, seats[t.SeatID])
	}

	var voucherCode *string
	if voucher != nil {
		voucherCode = &voucher.Code
	}
	resp := response.PurchaseToResponse(purchase, event, voucherCode, ticketResponses)
	return &resp, nil
}

// announce hands the committed purchase to the dispatcher.
func (s *purchaseService) announce(ctx context.Context, purchase *entity.Purchase, event *entity.Event, ticketCount int) {
	payload := map[string]string{
		"purchase_id":     purchase.ID.String(),
		"transaction_ref": purchase.TransactionRef,
		"event_id":        event.ID.String(),
		"event_title":     event.Title,
		"user_id":         purchase.UserID.String(),
		"ticket_count":    strconv.Itoa(ticketCount),
		"total":           purchase.Total.StringFixed(2),
	}

	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventPurchaseCompleted,
		Payload:    payload,
		OccurredAt: purchase.CreatedAt,
	})

	buyer, err := s.repo.User.FindByID(ctx, purchase.UserID)
	if err != nil || buyer == nil {
		s.log.Warn("Skipping purchase confirmation, buyer not found",
			zap.Error(err),
			zap.String("user_id", purchase.UserID.String()),
		)
		return
	}

	s.sink.Notify(notify.Notification{
		Recipient: buyer.Email,
		Kind:      notify.KindPurchaseConfirmation,
		Payload:   payload,
	})
}

// GetPurchase returns one of the buyer's purchases with its tickets. Other
// users' purchases are reported as not found.
func (s *purchaseService) GetPurchase(ctx context.Context, buyerID, purchaseID uuid.UUID) (*response.PurchaseResponse, error) {
	purchase, err := s.repo.Purchase.FindByID(ctx, purchaseID)
	if err != nil {
		s.log.Error("Failed to find purchase", zap.Error(err), zap.String("purchase_id", purchaseID.String()))
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	if purchase == nil || purchase.UserID != buyerID {
		return nil, ErrPurchaseNotFound
	}

	event, err := s.repo.Event.FindByID(ctx, purchase.EventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}

	tickets, err := s.repo.Ticket.FindByPurchase(ctx, purchase.ID)
	if err != nil {
		s.log.Error("Failed to list purchase tickets", zap.Error(err), zap.String("purchase_id", purchaseID.String()))
		return nil, fmt.Errorf("list purchase tickets: %w", err)
	}

	ticketResponses := make([]response.TicketResponse, len(tickets))
	for i, t := range tickets {
		seat, err := s.repo.Seat.FindByID(ctx, t.SeatID)
		if err != nil {
			return nil, fmt.Errorf("find seat: %w", err)
		}
		ticketResponses[i] = response.TicketToResponse(t, seat)
	}

	resp := response.PurchaseToResponse(purchase, event, nil, ticketResponses)
	return &resp, nil
}

func (s *purchaseService) GetEventSeats(ctx context.Context, eventID uuid.UUID) (*response.EventSeatsResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		s.log.Error("Failed to find event", zap.Error(err), zap.String("event_id", eventID.String()))
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil || !event.IsPublished {
		return nil, ErrEventNotFound
	}

	tiers, err := s.repo.Event.FindTiersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find tiers: %w", err)
	}

	seats, err := s.repo.Seat.FindByEvent(ctx, eventID)
	if err != nil {
		s.log.Error("Failed to list seats", zap.Error(err), zap.String("event_id", eventID.String()))
		return nil, fmt.Errorf("list seats: %w", err)
	}

	available, err := s.repo.Seat.CountAvailable(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count available seats: %w", err)
	}

	resp := &response.EventSeatsResponse{
		EventID:   event.ID.String(),
		Title:     event.Title,
		Venue:     event.Venue,
		StartsAt:  event.StartsAt,
		OnSale:    event.OnSale(),
		Available: available,
		Total:     len(seats),
		Tiers:     make([]response.TierResponse, len(tiers)),
		Seats:     make([]response.SeatResponse, len(seats)),
	}
	for i, t := range tiers {
		resp.Tiers[i] = response.TierToResponse(t)
	}
	for i, seat := range seats {
		resp.Seats[i] = response.SeatToResponse(seat)
	}
	return resp, nil
}
