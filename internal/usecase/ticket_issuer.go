package usecase

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
)

// TicketIssuer creates tickets inside an open purchase transaction.
type TicketIssuer struct {
	clock       utils.Clock
	newScanCode func() (string, error)
}

func NewTicketIssuer(clock utils.Clock) *TicketIssuer {
	return &TicketIssuer{
		clock:       clock,
		newScanCode: utils.GenerateScanCode,
	}
}

// IssueScanCode returns a fresh "<token>--<random>" scan code.
func (i *TicketIssuer) IssueScanCode() (string, error) {
	return i.newScanCode()
}

// Issue creates the ticket row for seat. tx must be the purchase's transactional repository.
func (i *TicketIssuer) Issue(ctx context.Context, tx *repository.Repository, purchase *entity.Purchase, event *entity.Event, tier *entity.TicketTier, seat *entity.Seat) (*entity.Ticket, error) {
	code, err := i.IssueScanCode()
	if err != nil {
		return nil, err
	}

	now := i.clock.Now()
	ticket := &entity.Ticket{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ScanCode:    code,
		Name:        fmt.Sprintf("%s - %s", event.Title, tier.Name),
		EventID:     event.ID,
		PurchaseID:  purchase.ID,
		SeatID:      seat.ID,
		TierID:      tier.ID,
		OwnerID:     purchase.UserID,
		Description: seat.Label(),
	}

	if err := tx.Ticket.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("issue ticket for seat %s: %w", seat.ID, err)
	}
	return ticket, nil
}
