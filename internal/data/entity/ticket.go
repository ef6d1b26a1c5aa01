package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ticket proves ownership of one seat. OwnerID is the current holder and
// changes on accepted transfers; the purchase keeps the original buyer.
type Ticket struct {
	BaseNoDelete
	ScanCode    string     `db:"scan_code"`
	Name        string     `db:"name"`
	EventID     uuid.UUID  `db:"event_id"`
	PurchaseID  uuid.UUID  `db:"purchase_id"`
	SeatID      uuid.UUID  `db:"seat_id"`
	TierID      uuid.UUID  `db:"tier_id"`
	OwnerID     uuid.UUID  `db:"owner_id"`
	Description string     `db:"description"`
	IsUsed      bool       `db:"is_used"`
	UsedAt      *time.Time `db:"used_at"`
}
