package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type TicketResponse struct {
	ID          string     `json:"id"`
	ScanCode    string     `json:"scan_code"`
	Name        string     `json:"name"`
	EventID     string     `json:"event_id"`
	PurchaseID  string     `json:"purchase_id"`
	SeatID      string     `json:"seat_id"`
	SeatLabel   string     `json:"seat_label,omitempty"`
	TierID      string     `json:"tier_id"`
	OwnerID     string     `json:"owner_id"`
	Description string     `json:"description,omitempty"`
	IsUsed      bool       `json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func TicketToResponse(t *entity.Ticket, seat *entity.Seat) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID.String(),
		ScanCode:    t.ScanCode,
		Name:        t.Name,
		EventID:     t.EventID.String(),
		PurchaseID:  t.PurchaseID.String(),
		SeatID:      t.SeatID.String(),
		TierID:      t.TierID.String(),
		OwnerID:     t.OwnerID.String(),
		Description: t.Description,
		IsUsed:      t.IsUsed,
		UsedAt:      t.UsedAt,
		CreatedAt:   t.CreatedAt,
	}
	if seat != nil {
		resp.SeatLabel = seat.Label()
	}
	return resp
}
