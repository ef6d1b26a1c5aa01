package usecase

import (
	"errors"
	"fmt"
	"strings"

	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrEventNotFound    = errors.New("event not found")
	ErrEventUnavailable = errors.New("event is not on sale")
	ErrVoucherInvalid   = errors.New("voucher is not valid for this event")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrPurchaseNotFound = errors.New("purchase not found")

	ErrTicketNotFound         = errors.New("ticket not found")
	ErrTicketUsed             = errors.New("ticket has already been used")
	ErrNotOwner               = errors.New("requester does not own the ticket")
	ErrNotInitiator           = errors.New("requester did not initiate the transfer")
	ErrRecipientInvalid       = errors.New("recipient cannot receive tickets")
	ErrTransferAlreadyPending = errors.New("ticket already has a pending transfer")
	ErrTransferNotFound       = errors.New("transfer not found")
	ErrAlreadyProcessed       = errors.New("transfer already processed")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrSignatureExpired       = errors.New("signature expired")
)

// SeatError reports which seats made a purchase fail.
type SeatError struct {
	Err     error
	SeatIDs []uuid.UUID
}

func (e *SeatError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", e.Err, strings.Join(ids, ", "))
}

func (e *SeatError) Unwrap() error {
	return e.Err
}

// ValidationError carries field messages from request validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
