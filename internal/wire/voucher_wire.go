package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireVoucher(r chi.Router, voucherHandler *adaptor.VoucherHandler) {
	// GET /api/vouchers/{code}?event_id= - voucher check (public)
	r.Get("/api/vouchers/{code}", voucherHandler.Lookup)
}
