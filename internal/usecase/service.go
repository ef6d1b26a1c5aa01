package usecase

import (
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/notify"
	"event-ticketing/pkg/signedlink"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Purchase PurchaseService
	Ticket   TicketService
	Transfer TransferService
	Voucher  VoucherService
}

func NewService(repo *repository.Repository, signer *signedlink.Signer, sink notify.Sink, clock utils.Clock, log *zap.Logger) *Service {
	voucher := NewVoucherService(repo, clock, log)

	return &Service{
		Purchase: NewPurchaseService(repo, NewTicketIssuer(clock), voucher, sink, clock, log),
		Ticket:   NewTicketService(repo, log),
		Transfer: NewTransferService(repo, signer, sink, clock, log),
		Voucher:  voucher,
	}
}
