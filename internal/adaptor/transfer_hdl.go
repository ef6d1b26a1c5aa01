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

type TransferHandler struct {
	service usecase.TransferService
	log     *zap.Logger
}

func NewTransferHandler(service usecase.TransferService, log *zap.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		log:     log.With(zap.String("handler", "transfer")),
	}
}

// Initiate handles POST /api/transfers (protected)
func (h *TransferHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.InitiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if _, err := h.service.Initiate(r.Context(), userID, &req); err != nil {
		handleServiceError(w, h.log, err, "initiate transfer")
		return
	}

	utils.ResponseSuccess(w, "success", utils.MessageData{Message: "Transfer request sent to the recipient."})
}

// Accept handles GET /api/transfers/{id}/accept?signature= (signed link)
func (h *TransferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}

	if err := h.service.Accept(r.Context(), transferID, r.URL.Query().Get("signature")); err != nil {
		handleServiceError(w, h.log, err, "accept transfer")
		return
	}

	utils.ResponseSuccess(w, "success", utils.MessageData{Message: "Ticket transfer accepted. The ticket is now yours."})
}

// Reject handles GET /api/transfers/{id}/reject?signature= (signed link)
func (h *TransferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}

	if err := h.service.Reject(r.Context(), transferID, r.URL.Query().Get("signature")); err != nil {
		handleServiceError(w, h.log, err, "reject transfer")
		return
	}

	utils.ResponseSuccess(w, "success", utils.MessageData{Message: "Ticket transfer rejected."})
}

// Cancel handles POST /api/transfers/{id}/cancel (protected)
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), transferID, userID); err != nil {
		handleServiceError(w, h.log, err, "cancel transfer")
		return
	}

	utils.ResponseSuccess(w, "success", utils.MessageData{Message: "Ticket transfer cancelled."})
}

// ListForTicket handles GET /api/tickets/{id}/transfers (protected)
func (h *TransferHandler) ListForTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	ticketID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID", nil)
		return
	}

	history, err := h.service.ListForTicket(r.Context(), ticketID, userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list transfers")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

func (h *TransferHandler) transferID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid transfer ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
