package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type PurchaseResponse struct {
	ID             string           `json:"id"`
	EventID        string           `json:"event_id"`
	EventTitle     string           `json:"event_title"`
	UserID         string           `json:"user_id"`
	PaymentMethod  string           `json:"payment_method"`
	TransactionRef string           `json:"transaction_ref"`
	VoucherCode    *string          `json:"voucher_code,omitempty"`
	Subtotal       string           `json:"subtotal"`
	Discount       string           `json:"discount"`
	Total          string           `json:"total"`
	Tickets        []TicketResponse `json:"tickets"`
	CreatedAt      time.Time        `json:"created_at"`
}

func PurchaseToResponse(p *entity.Purchase, event *entity.Event, voucherCode *string, tickets []TicketResponse) PurchaseResponse {
	resp := PurchaseResponse{
		ID:             p.ID.String(),
		EventID:        p.EventID.String(),
		UserID:         p.UserID.String(),
		PaymentMethod:  string(p.PaymentMethod),
		TransactionRef: p.TransactionRef,
		VoucherCode:    voucherCode,
		Subtotal:       p.Subtotal.StringFixed(2),
		Discount:       p.Discount.StringFixed(2),
		Total:          p.Total.StringFixed(2),
		Tickets:        tickets,
		CreatedAt:      p.CreatedAt,
	}
	if event != nil {
		resp.EventTitle = event.Title
	}
	return resp
}
