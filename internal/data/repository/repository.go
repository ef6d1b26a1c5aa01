package repository

import (
	"context"
	"errors"

	"event-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrSeatTaken is returned by SeatRepository.Occupy when the seat was
	// already occupied at write time.
	ErrSeatTaken = errors.New("seat already occupied")

	// ErrPendingTransferExists is returned by TransferRepository.Create when
	// another PENDING row exists for the same ticket.
	ErrPendingTransferExists = errors.New("pending transfer already exists for ticket")

	// ErrStaleState is returned by guarded updates whose precondition no
	// longer holds (status changed, owner changed).
	ErrStaleState = errors.New("row state changed concurrently")
)

// Transactor runs fn inside one atomic unit of work. fn receives a
// Repository whose members all operate on that unit of work.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo *Repository) error) error
}

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	Event    EventRepository
	Seat     SeatRepository
	Purchase PurchaseRepository
	Ticket   TicketRepository
	Transfer TransferRepository
	Voucher  VoucherRepository

	Tx Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = &pgxTransactor{db: db, log: log}
	return repo
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithinTx(ctx context.Context, fn func(repo *Repository) error) error {
	return r.Tx.WithinTx(ctx, fn)
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(q, log),
		Session:  NewSessionRepository(q, log),
		Event:    NewEventRepository(q, log),
		Seat:     NewSeatRepository(q, log),
		Purchase: NewPurchaseRepository(q, log),
		Ticket:   NewTicketRepository(q, log),
		Transfer: NewTransferRepository(q, log),
		Voucher:  NewVoucherRepository(q, log),
	}
}

type pgxTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgxTransactor) WithinTx(ctx context.Context, fn func(repo *Repository) error) error {
	return database.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		txRepo := newRepository(tx, t.log)
		txRepo.Tx = joinedTx{repo: txRepo}
		return fn(txRepo)
	})
}

// joinedTx makes nested WithinTx calls reuse the open transaction.
type joinedTx struct {
	repo *Repository
}

func (j joinedTx) WithinTx(_ context.Context, fn func(repo *Repository) error) error {
	return fn(j.repo)
}
