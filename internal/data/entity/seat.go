package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Seat is one unit of sellable inventory. IsOccupied is true iff TicketID is set.
type Seat struct {
	BaseNoDelete
	EventID    uuid.UUID  `db:"event_id"`
	TierID     uuid.UUID  `db:"tier_id"`
	Row        *string    `db:"seat_row"`
	Number     *string    `db:"seat_number"`
	Section    *string    `db:"section"`
	IsOccupied bool       `db:"is_occupied"`
	TicketID   *uuid.UUID `db:"ticket_id"`
}

// Label renders "Section Row-Number" from whichever parts are set, e.g. "Balcony B-12".
func (s *Seat) Label() string {
	var place string
	switch {
	case s.Row != nil && s.Number != nil:
		place = fmt.Sprintf("%s-%s", *s.Row, *s.Number)
	case s.Number != nil:
		place = *s.Number
	case s.Row != nil:
		place = *s.Row
	}

	parts := make([]string, 0, 2)
	if s.Section != nil && *s.Section != "" {
		parts = append(parts, *s.Section)
	}
	if place != "" {
		parts = append(parts, place)
	}
	if len(parts) == 0 {
		return s.ID.String()
	}
	return strings.Join(parts, " ")
}
