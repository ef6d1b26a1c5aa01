package adaptor

import (
	"errors"
	"net/http"

	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP responses. Messages for
// authorization failures stay generic.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError
	var seatErr *usecase.SeatError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.As(err, &seatErr):
		log.Info(operation+" failed - seat conflict", zap.Error(err))
		ids := make([]string, len(seatErr.SeatIDs))
		for i, id := range seatErr.SeatIDs {
			ids[i] = id.String()
		}
		details := map[string][]string{"seat_ids": ids}
		if errors.Is(err, usecase.ErrSeatNotFound) {
			utils.ResponseJSON(w, http.StatusNotFound, false, "One or more seats do not exist for this event", nil, details)
			return
		}
		utils.ResponseConflict(w, "One or more seats are no longer available", details)

	case errors.Is(err, usecase.ErrEventNotFound):
		utils.ResponseNotFound(w, "Event not found")
	case errors.Is(err, usecase.ErrPurchaseNotFound):
		utils.ResponseNotFound(w, "Purchase not found")
	case errors.Is(err, usecase.ErrTicketNotFound):
		utils.ResponseNotFound(w, "Ticket not found")
	case errors.Is(err, usecase.ErrTransferNotFound):
		utils.ResponseNotFound(w, "Transfer not found")

	case errors.Is(err, usecase.ErrEventUnavailable):
		utils.ResponseConflict(w, "This event is not on sale", nil)
	case errors.Is(err, usecase.ErrVoucherInvalid):
		utils.ResponseBadRequest(w, "Voucher code is not valid for this event", nil)
	case errors.Is(err, usecase.ErrTicketUsed):
		utils.ResponseConflict(w, "This ticket has already been used", nil)
	case errors.Is(err, usecase.ErrTransferAlreadyPending):
		utils.ResponseConflict(w, "This ticket already has a pending transfer", nil)
	case errors.Is(err, usecase.ErrAlreadyProcessed):
		utils.ResponseConflict(w, "This transfer has already been processed", nil)

	case errors.Is(err, usecase.ErrNotOwner),
		errors.Is(err, usecase.ErrNotInitiator):
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "You are not allowed to perform this action")
	case errors.Is(err, usecase.ErrRecipientInvalid):
		utils.ResponseForbidden(w, "This ticket cannot be transferred to that recipient")
	case errors.Is(err, usecase.ErrInvalidSignature):
		utils.ResponseForbidden(w, "Invalid or tampered link")
	case errors.Is(err, usecase.ErrSignatureExpired):
		utils.ResponseForbidden(w, "This link has expired")

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
