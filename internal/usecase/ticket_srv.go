package usecase

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketService interface {
	GetUserTickets(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
}

type ticketService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTicketService(repo *repository.Repository, log *zap.Logger) TicketService {
	return &ticketService{
		repo: repo,
		log:  log.With(zap.String("service", "ticket")),
	}
}

func (s *ticketService) GetUserTickets(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	tickets, err := s.repo.Ticket.FindByOwner(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user tickets",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("get user tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByOwner(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user tickets", zap.Error(err))
		return nil, fmt.Errorf("count user tickets: %w", err)
	}

	items := make([]response.TicketResponse, len(tickets))
	for i, t := range tickets {
		seat, _ := s.repo.Seat.FindByID(ctx, t.SeatID)
		items[i] = response.TicketToResponse(t, seat)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}
