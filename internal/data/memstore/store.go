// Package memstore implements every repository interface in process memory.
// Transactions are serialized behind one mutex and rolled back by restoring
// a snapshot, which gives the same all-or-nothing and no-double-sale
// guarantees as the Postgres repositories.
package memstore

import (
	"context"
	"sync"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
)

type dataset struct {
	users     map[uuid.UUID]entity.User
	sessions  map[string]entity.Session
	events    map[uuid.UUID]entity.Event
	tiers     map[uuid.UUID]entity.TicketTier
	seats     map[uuid.UUID]entity.Seat
	purchases map[uuid.UUID]entity.Purchase
	tickets   map[uuid.UUID]entity.Ticket
	transfers map[uuid.UUID]entity.TicketTransferHistory
	vouchers  map[string]entity.Voucher
}

func newDataset() *dataset {
	return &dataset{
		users:     map[uuid.UUID]entity.User{},
		sessions:  map[string]entity.Session{},
		events:    map[uuid.UUID]entity.Event{},
		tiers:     map[uuid.UUID]entity.TicketTier{},
		seats:     map[uuid.UUID]entity.Seat{},
		purchases: map[uuid.UUID]entity.Purchase{},
		tickets:   map[uuid.UUID]entity.Ticket{},
		transfers: map[uuid.UUID]entity.TicketTransferHistory{},
		vouchers:  map[string]entity.Voucher{},
	}
}

// clone copies every table. Rows are stored by value; pointer fields inside
// rows are never mutated in place, so a shallow row copy is enough.
func (d *dataset) clone() *dataset {
	c := newDataset()
	copyMap(c.users, d.users)
	copyMap(c.sessions, d.sessions)
	copyMap(c.events, d.events)
	copyMap(c.tiers, d.tiers)
	copyMap(c.seats, d.seats)
	copyMap(c.purchases, d.purchases)
	copyMap(c.tickets, d.tickets)
	copyMap(c.transfers, d.transfers)
	copyMap(c.vouchers, d.vouchers)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

type Store struct {
	mu    sync.Mutex
	data  *dataset
	clock utils.Clock
}

// New returns an empty store. clock stamps row updates and decides session
// expiry.
func New(clock utils.Clock) *Store {
	return &Store{data: newDataset(), clock: clock}
}

// Repository returns repositories backed by the store.
func (s *Store) Repository() *repository.Repository {
	repo := s.build(false)
	repo.Tx = s
	return repo
}

func (s *Store) build(inTx bool) *repository.Repository {
	v := &view{store: s, inTx: inTx}
	return &repository.Repository{
		User:     &userRepo{v},
		Session:  &sessionRepo{v},
		Event:    &eventRepo{v},
		Seat:     &seatRepo{v},
		Purchase: &purchaseRepo{v},
		Ticket:   &ticketRepo{v},
		Transfer: &transferRepo{v},
		Voucher:  &voucherRepo{v},
	}
}

// WithinTx holds the store lock for the whole of fn and restores the
// pre-call snapshot if fn fails or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(repo *repository.Repository) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	txRepo := s.build(true)
	txRepo.Tx = joined{repo: txRepo}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(txRepo); err != nil {
		return err
	}

	committed = true
	return nil
}

type joined struct {
	repo *repository.Repository
}

func (j joined) WithinTx(_ context.Context, fn func(repo *repository.Repository) error) error {
	return fn(j.repo)
}

// view gives repositories access to the dataset, taking the lock only when
// not already inside WithinTx.
type view struct {
	store *Store
	inTx  bool
}

func (v *view) read(fn func(d *dataset)) {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	fn(v.store.data)
}

func (v *view) write(fn func(d *dataset) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.data)
}
