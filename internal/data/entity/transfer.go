package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferStatusPending     TransferStatus = "PENDING"
	TransferStatusTransferred TransferStatus = "TRANSFERRED"
	TransferStatusRejected    TransferStatus = "REJECTED"
	TransferStatusCancelled   TransferStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransferStatus) Terminal() bool {
	return s != TransferStatusPending
}

type TicketTransferHistory struct {
	BaseNoDelete
	TicketID      uuid.UUID      `db:"ticket_id"`
	FromUserID    uuid.UUID      `db:"from_user_id"`
	ToUserID      uuid.UUID      `db:"to_user_id"`
	Status        TransferStatus `db:"status"`
	ExpiresAt     time.Time      `db:"expires_at"`
	TransferredAt *time.Time     `db:"transferred_at"`
}
