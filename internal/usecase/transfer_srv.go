package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/notify"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/signedlink"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransferService interface {
	Initiate(ctx context.Context, fromUserID uuid.UUID, req *request.InitiateTransferRequest) (*response.TransferResponse, error)
	Accept(ctx context.Context, transferID uuid.UUID, signature string) error
	Reject(ctx context.Context, transferID uuid.UUID, signature string) error
	Cancel(ctx context.Context, transferID, requesterID uuid.UUID) error
	ExpireStale(ctx context.Context) (int, error)
	ListForTicket(ctx context.Context, ticketID, requesterID uuid.UUID) ([]response.TransferResponse, error)
}

type transferService struct {
	repo   *repository.Repository
	signer *signedlink.Signer
	sink   notify.Sink
	clock  utils.Clock
	log    *zap.Logger
}

func NewTransferService(repo *repository.Repository, signer *signedlink.Signer, sink notify.Sink, clock utils.Clock, log *zap.Logger) TransferService {
	return &transferService{
		repo:   repo,
		signer: signer,
		sink:   sink,
		clock:  clock,
		log:    log.With(zap.String("service", "transfer")),
	}
}

func (s *transferService) Initiate(ctx context.Context, fromUserID uuid.UUID, req *request.InitiateTransferRequest) (*response.TransferResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Initiate transfer validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	ticketID, err := uuid.Parse(req.TicketID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"TicketID": "Must be a valid UUID"}}
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.OwnerID != fromUserID {
		return nil, ErrNotOwner
	}
	if ticket.IsUsed {
		return nil, ErrTicketUsed
	}

	recipient, err := s.repo.User.FindByEmail(ctx, utils.NormalizeEmail(req.RecipientEmail))
	if err != nil {
		return nil, fmt.Errorf("find recipient: %w", err)
	}
	if recipient == nil || recipient.ID == fromUserID || !recipient.CanReceiveTickets() {
		s.log.Info("Transfer recipient rejected",
			zap.String("ticket_id", ticketID.String()),
			zap.String("from_user_id", fromUserID.String()),
		)
		return nil, ErrRecipientInvalid
	}

	now := s.clock.Now()
	transfer := &entity.TicketTransferHistory{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TicketID:   ticketID,
		FromUserID: fromUserID,
		ToUserID:   recipient.ID,
		Status:     entity.TransferStatusPending,
		ExpiresAt:  now.Add(s.signer.TTL()),
	}

	acceptURL, err := s.signer.URL(transfer.ID, signedlink.ActionAccept, transfer.ExpiresAt)
	if err != nil {
		return nil, err
	}
	rejectURL, err := s.signer.URL(transfer.ID, signedlink.ActionReject, transfer.ExpiresAt)
	if err != nil {
		return nil, err
	}

	var lapsed *entity.TicketTransferHistory
	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Ticket.FindByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrTicketNotFound
		}
		if locked.OwnerID != fromUserID {
			return ErrNotOwner
		}
		if locked.IsUsed {
			return ErrTicketUsed
		}

		pending, err := tx.Transfer.FindPendingByTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if pending != nil {
			if !pending.ExpiresAt.Before(now) {
				return ErrTransferAlreadyPending
			}
			// A lapsed offer the sweeper has not reached yet. If the sweeper
			// got there first it has already announced the expiry.
			err := tx.Transfer.Resolve(ctx, pending.ID, entity.TransferStatusCancelled, now)
			switch {
			case err == nil:
				pending.Status = entity.TransferStatusCancelled
				lapsed = pending
			case errors.Is(err, repository.ErrStaleState):
				s.log.Info("Lapsed transfer already cleared",
					zap.String("transfer_id", pending.ID.String()),
				)
			default:
				return err
			}
		}

		if err := tx.Transfer.Create(ctx, transfer); err != nil {
			if errors.Is(err, repository.ErrPendingTransferExists) {
				return ErrTransferAlreadyPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isTransferDomainError(err) {
			return nil, err
		}
		s.log.Error("Failed to initiate transfer",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return nil, fmt.Errorf("initiate transfer: %w", err)
	}

	metrics.TransferTransition(string(entity.TransferStatusPending))
	s.log.Info("Transfer initiated",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("ticket_id", ticketID.String()),
		zap.String("from_user_id", fromUserID.String()),
		zap.String("to_user_id", recipient.ID.String()),
	)

	if lapsed != nil {
		metrics.TransferTransition("EXPIRED")
		s.announceExpired(ctx, lapsed)
	}

	payload := s.describe(ctx, transfer)
	payload["accept_url"] = acceptURL
	payload["reject_url"] = rejectURL
	payload["expires_at"] = transfer.ExpiresAt.Format(time.RFC3339)

	s.sink.Notify(notify.Notification{
		Recipient: recipient.Email,
		Kind:      notify.KindTransferRequest,
		Payload:   payload,
	})
	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventTransferRequested,
		Payload:    withoutLinks(payload),
		OccurredAt: now,
	})

	resp := response.TransferToResponse(transfer)
	return &resp, nil
}

func (s *transferService) Accept(ctx context.Context, transferID uuid.UUID, signature string) error {
	if err := s.verify(signature, transferID, signedlink.ActionAccept); err != nil {
		return err
	}

	transfer, err := s.resolve(ctx, transferID, entity.TransferStatusTransferred, nil,
		func(tx *repository.Repository, t *entity.TicketTransferHistory) error {
			err := tx.Ticket.ChangeOwner(ctx, t.TicketID, t.FromUserID, t.ToUserID)
			if errors.Is(err, repository.ErrStaleState) {
				return ErrAlreadyProcessed
			}
			return err
		})
	if err != nil {
		return err
	}

	payload := s.describe(ctx, transfer)
	s.notifyUser(ctx, transfer.FromUserID, notify.KindTransferAccepted, payload)
	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventTransferAccepted,
		Payload:    payload,
		OccurredAt: transfer.UpdatedAt,
	})
	return nil
}

func (s *transferService) Reject(ctx context.Context, transferID uuid.UUID, signature string) error {
	if err := s.verify(signature, transferID, signedlink.ActionReject); err != nil {
		return err
	}

	transfer, err := s.resolve(ctx, transferID, entity.TransferStatusRejected, nil, nil)
	if err != nil {
		return err
	}

	payload := s.describe(ctx, transfer)
	s.notifyUser(ctx, transfer.FromUserID, notify.KindTransferRejected, payload)
	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventTransferRejected,
		Payload:    payload,
		OccurredAt: transfer.UpdatedAt,
	})
	return nil
}

func (s *transferService) Cancel(ctx context.Context, transferID, requesterID uuid.UUID) error {
	transfer, err := s.resolve(ctx, transferID, entity.TransferStatusCancelled,
		func(tx *repository.Repository, t *entity.TicketTransferHistory) error {
			// Ownership moves on accept, so a settled offer is reported as
			// settled to both parties instead of failing the owner check.
			if t.Status != entity.TransferStatusPending &&
				(requesterID == t.FromUserID || requesterID == t.ToUserID) {
				return ErrAlreadyProcessed
			}

			ticket, err := tx.Ticket.FindByID(ctx, t.TicketID)
			if err != nil {
				return err
			}
			if ticket == nil || ticket.OwnerID != requesterID {
				return ErrNotOwner
			}
			if t.FromUserID != requesterID {
				return ErrNotInitiator
			}
			return nil
		}, nil)
	if err != nil {
		return err
	}

	payload := s.describe(ctx, transfer)
	s.notifyUser(ctx, transfer.ToUserID, notify.KindTransferCancelled, payload)
	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventTransferCancelled,
		Payload:    payload,
		OccurredAt: transfer.UpdatedAt,
	})
	return nil
}

// ExpireStale cancels every PENDING transfer whose links have expired.
func (s *transferService) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.repo.Transfer.ExpirePending(ctx, s.clock.Now())
	if err != nil {
		s.log.Error("Failed to expire pending transfers", zap.Error(err))
		return 0, fmt.Errorf("expire pending transfers: %w", err)
	}

	for _, t := range expired {
		metrics.TransferTransition("EXPIRED")
		s.announceExpired(ctx, t)
	}

	if len(expired) > 0 {
		s.log.Info("Expired pending transfers", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (s *transferService) ListForTicket(ctx context.Context, ticketID, requesterID uuid.UUID) ([]response.TransferResponse, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	history, err := s.repo.Transfer.ListByTicket(ctx, ticketID)
	if err != nil {
		s.log.Error("Failed to list transfers", zap.Error(err), zap.String("ticket_id", ticketID.String()))
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	allowed := ticket.OwnerID == requesterID
	for _, t := range history {
		if t.FromUserID == requesterID || t.ToUserID == requesterID {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrNotOwner
	}

	out := make([]response.TransferResponse, len(history))
	for i, t := range history {
		out[i] = response.TransferToResponse(t)
	}
	return out, nil
}

func (s *transferService) verify(signature string, transferID uuid.UUID, action signedlink.Action) error {
	err := s.signer.Verify(signature, transferID, action)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, signedlink.ErrExpired):
		return ErrSignatureExpired
	default:
		s.log.Warn("Rejected transfer link",
			zap.String("transfer_id", transferID.String()),
			zap.String("action", string(action)),
		)
		return ErrInvalidSignature
	}
}

type transferStep func(tx *repository.Repository, t *entity.TicketTransferHistory) error

// resolve moves a PENDING transfer to status in one transaction. check runs
// before the status test, apply after it.
func (s *transferService) resolve(ctx context.Context, transferID uuid.UUID, status entity.TransferStatus, check, apply transferStep) (*entity.TicketTransferHistory, error) {
	var transfer *entity.TicketTransferHistory

	err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		t, err := tx.Transfer.FindByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTransferNotFound
		}
		if check != nil {
			if err := check(tx, t); err != nil {
				return err
			}
		}
		if t.Status != entity.TransferStatusPending {
			return ErrAlreadyProcessed
		}
		if apply != nil {
			if err := apply(tx, t); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		if err := tx.Transfer.Resolve(ctx, t.ID, status, now); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return ErrAlreadyProcessed
			}
			return err
		}

		t.Status = status
		t.UpdatedAt = now
		if status == entity.TransferStatusTransferred {
			t.TransferredAt = &now
		}
		transfer = t
		return nil
	})
	if err != nil {
		if isTransferDomainError(err) {
			s.log.Info("Transfer transition refused",
				zap.Error(err),
				zap.String("transfer_id", transferID.String()),
				zap.String("status", string(status)),
			)
			return nil, err
		}
		s.log.Error("Transfer transition failed",
			zap.Error(err),
			zap.String("transfer_id", transferID.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("transfer %s: %w", status, err)
	}

	metrics.TransferTransition(string(status))
	s.log.Info("Transfer resolved",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("ticket_id", transfer.TicketID.String()),
		zap.String("status", string(status)),
	)
	return transfer, nil
}

func (s *transferService) announceExpired(ctx context.Context, t *entity.TicketTransferHistory) {
	payload := s.describe(ctx, t)
	s.notifyUser(ctx, t.FromUserID, notify.KindTransferExpired, payload)
	s.notifyUser(ctx, t.ToUserID, notify.KindTransferExpired, payload)
	s.sink.Publish(notify.DomainEvent{
		Kind:       notify.EventTransferExpired,
		Payload:    payload,
		OccurredAt: s.clock.Now(),
	})
}

// describe builds the notification payload. Lookups are best effort; a
// missing name never blocks the notification.
func (s *transferService) describe(ctx context.Context, t *entity.TicketTransferHistory) map[string]string {
	payload := map[string]string{
		"transfer_id":  t.ID.String(),
		"ticket_id":    t.TicketID.String(),
		"from_user_id": t.FromUserID.String(),
		"to_user_id":   t.ToUserID.String(),
		"status":       string(t.Status),
	}

	if ticket, err := s.repo.Ticket.FindByID(ctx, t.TicketID); err == nil && ticket != nil {
		payload["event_id"] = ticket.EventID.String()
		payload["ticket_name"] = ticket.Name
		if event, err := s.repo.Event.FindByID(ctx, ticket.EventID); err == nil && event != nil {
			payload["event_title"] = event.Title
		}
	}
	if from, err := s.repo.User.FindByID(ctx, t.FromUserID); err == nil && from != nil {
		payload["from_username"] = from.Username
	}
	if to, err := s.repo.User.FindByID(ctx, t.ToUserID); err == nil && to != nil {
		payload["to_username"] = to.Username
	}
	return payload
}

func (s *transferService) notifyUser(ctx context.Context, userID uuid.UUID, kind notify.Kind, payload map[string]string) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		s.log.Warn("Skipping notification, user not found",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
		)
		return
	}
	s.sink.Notify(notify.Notification{Recipient: user.Email, Kind: kind, Payload: payload})
}

// withoutLinks strips bearer URLs before a payload leaves through the event bus.
func withoutLinks(payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == "accept_url" || k == "reject_url" {
			continue
		}
		out[k] = v
	}
	return out
}

func isTransferDomainError(err error) bool {
	for _, target := range []error{
		ErrTicketNotFound,
		ErrTicketUsed,
		ErrNotOwner,
		ErrNotInitiator,
		ErrTransferAlreadyPending,
		ErrTransferNotFound,
		ErrAlreadyProcessed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
