package adaptor

import (
	"event-ticketing/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Purchase *PurchaseHandler
	Ticket   *TicketHandler
	Transfer *TransferHandler
	Voucher  *VoucherHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Purchase: NewPurchaseHandler(service.Purchase, log),
		Ticket:   NewTicketHandler(service.Ticket, log),
		Transfer: NewTransferHandler(service.Transfer, log),
		Voucher:  NewVoucherHandler(service.Voucher, log),
	}
}
