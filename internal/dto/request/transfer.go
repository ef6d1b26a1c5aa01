package request

type InitiateTransferRequest struct {
	TicketID       string `json:"ticket_id" validate:"required,uuid4"`
	RecipientEmail string `json:"recipient_email" validate:"required,email,max=255"`
}
