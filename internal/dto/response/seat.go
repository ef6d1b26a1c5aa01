package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type SeatResponse struct {
	ID         string  `json:"id"`
	TierID     string  `json:"tier_id"`
	Label      string  `json:"label"`
	Section    *string `json:"section,omitempty"`
	Row        *string `json:"row,omitempty"`
	Number     *string `json:"number,omitempty"`
	IsOccupied bool    `json:"is_occupied"`
}

type TierResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

type EventSeatsResponse struct {
	EventID   string         `json:"event_id"`
	Title     string         `json:"title"`
	Venue     string         `json:"venue"`
	StartsAt  time.Time      `json:"starts_at"`
	OnSale    bool           `json:"on_sale"`
	Available int64          `json:"available"`
	Total     int            `json:"total"`
	Tiers     []TierResponse `json:"tiers"`
	Seats     []SeatResponse `json:"seats"`
}

func SeatToResponse(s *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:         s.ID.String(),
		TierID:     s.TierID.String(),
		Label:      s.Label(),
		Section:    s.Section,
		Row:        s.Row,
		Number:     s.Number,
		IsOccupied: s.IsOccupied,
	}
}

func TierToResponse(t *entity.TicketTier) TierResponse {
	return TierResponse{
		ID:       t.ID.String(),
		Name:     t.Name,
		Price:    t.Price.StringFixed(2),
		Category: t.Category,
	}
}
