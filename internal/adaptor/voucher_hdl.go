package adaptor

import (
	"net/http"

	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VoucherHandler struct {
	service usecase.VoucherService
	log     *zap.Logger
}

func NewVoucherHandler(service usecase.VoucherService, log *zap.Logger) *VoucherHandler {
	return &VoucherHandler{
		service: service,
		log:     log.With(zap.String("handler", "voucher")),
	}
}

// Lookup handles GET /api/vouchers/{code}?event_id= (public). A miss is
// still a 200 with valid=false.
func (h *VoucherHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var eventID *uuid.UUID
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid event ID", nil)
			return
		}
		eventID = &id
	}

	voucher, err := h.service.Lookup(r.Context(), code, eventID)
	if err != nil {
		handleServiceError(w, h.log, err, "lookup voucher")
		return
	}

	utils.ResponseSuccess(w, "success", voucher)
}
