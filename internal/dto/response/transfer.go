package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type TransferResponse struct {
	ID            string                `json:"id"`
	TicketID      string                `json:"ticket_id"`
	FromUserID    string                `json:"from_user_id"`
	ToUserID      string                `json:"to_user_id"`
	Status        entity.TransferStatus `json:"status"`
	ExpiresAt     time.Time             `json:"expires_at"`
	TransferredAt *time.Time            `json:"transferred_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func TransferToResponse(t *entity.TicketTransferHistory) TransferResponse {
	return TransferResponse{
		ID:            t.ID.String(),
		TicketID:      t.TicketID.String(),
		FromUserID:    t.FromUserID.String(),
		ToUserID:      t.ToUserID.String(),
		Status:        t.Status,
		ExpiresAt:     t.ExpiresAt,
		TransferredAt: t.TransferredAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
