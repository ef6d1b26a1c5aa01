package adaptor

import (
	"encoding/json"
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	service usecase.PurchaseService
	log     *zap.Logger
}

func NewPurchaseHandler(service usecase.PurchaseService, log *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
		log:     log.With(zap.String("handler", "purchase")),
	}
}

// CreatePurchase handles POST /api/purchases (protected)
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	purchase, err := h.service.Purchase(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create purchase")
		return
	}

	utils.ResponseCreated(w, "Purchase completed", purchase)
}

// GetPurchase handles GET /api/purchases/{id} (protected)
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	purchaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid purchase ID", nil)
		return
	}

	purchase, err := h.service.GetPurchase(r.Context(), userID, purchaseID)
	if err != nil {
		handleServiceError(w, h.log, err, "get purchase")
		return
	}

	utils.ResponseSuccess(w, "success", purchase)
}

// GetEventSeats handles GET /api/events/{id}/seats (public)
func (h *PurchaseHandler) GetEventSeats(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid event ID", nil)
		return
	}

	seats, err := h.service.GetEventSeats(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, h.log, err, "get event seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}
