package request

type PurchaseRequest struct {
	EventID        string   `json:"event_id" validate:"required,uuid4"`
	SeatIDs        []string `json:"seat_ids" validate:"required,min=1,max=20,unique,dive,uuid4"`
	PaymentMethod  string   `json:"payment_method" validate:"required,oneof=card cash transfer wallet"`
	PaymentDetails *string  `json:"payment_details,omitempty" validate:"omitempty,max=500"`
	VoucherCode    *string  `json:"voucher_code,omitempty" validate:"omitempty,min=1,max=50"`
}
