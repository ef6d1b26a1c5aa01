package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	BaseNoDelete
	OrganizerID uuid.UUID `db:"organizer_id"`
	Title       string    `db:"title"`
	Venue       string    `db:"venue"`
	StartsAt    time.Time `db:"starts_at"`
	IsPublished bool      `db:"is_published"`
	IsCancelled bool      `db:"is_cancelled"`
}

// OnSale reports whether seats of the event may be purchased.
func (e *Event) OnSale() bool {
	return e.IsPublished && !e.IsCancelled
}

type TicketTier struct {
	BaseSimple
	EventID  uuid.UUID       `db:"event_id"`
	Name     string          `db:"name"`
	Price    decimal.Decimal `db:"price"`
	Quantity int             `db:"quantity"`
	Category string          `db:"category"`
}
