package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"

	"github.com/google/uuid"
)

var errDuplicate = errors.New("duplicate key")

type userRepo struct{ v *view }

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(d *dataset) {
		if u, ok := d.users[id]; ok && u.DeletedAt == nil {
			out = &u
		}
	})
	return out, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(d *dataset) {
		for _, u := range d.users {
			u := u
			if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
				out = &u
				return
			}
		}
	})
	return out, nil
}

type sessionRepo struct{ v *view }

func (r *sessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	var out *entity.Session
	r.v.read(func(d *dataset) {
		s, ok := d.sessions[token]
		if ok && s.RevokedAt == nil && s.ExpiresAt.After(r.v.store.clock.Now()) {
			out = &s
		}
	})
	return out, nil
}

type eventRepo struct{ v *view }

func (r *eventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	var out *entity.Event
	r.v.read(func(d *dataset) {
		if e, ok := d.events[id]; ok {
			out = &e
		}
	})
	return out, nil
}

func (r *eventRepo) FindTiersByEvent(_ context.Context, eventID uuid.UUID) ([]*entity.TicketTier, error) {
	var out []*entity.TicketTier
	r.v.read(func(d *dataset) {
		for _, t := range d.tiers {
			t := t
			if t.EventID == eventID {
				out = append(out, &t)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type seatRepo struct{ v *view }

func (r *seatRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Seat, error) {
	var out *entity.Seat
	r.v.read(func(d *dataset) {
		if s, ok := d.seats[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r *seatRepo) FindByEvent(_ context.Context, eventID uuid.UUID) ([]*entity.Seat, error) {
	var out []*entity.Seat
	r.v.read(func(d *dataset) {
		for _, s := range d.seats {
			s := s
			if s.EventID == eventID {
				out = append(out, &s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out, nil
}

func (r *seatRepo) CountAvailable(_ context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	r.v.read(func(d *dataset) {
		for _, s := range d.seats {
			if s.EventID == eventID && !s.IsOccupied {
				n++
			}
		}
	})
	return n, nil
}

func (r *seatRepo) LockForPurchase(_ context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error) {
	if !r.v.inTx {
		return nil, errors.New("LockForPurchase requires a transaction")
	}
	out := make([]*entity.Seat, 0, len(seatIDs))
	r.v.read(func(d *dataset) {
		for _, id := range seatIDs {
			if s, ok := d.seats[id]; ok {
				out = append(out, &s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *seatRepo) Occupy(_ context.Context, seatID, ticketID uuid.UUID) error {
	return r.v.write(func(d *dataset) error {
		s, ok := d.seats[seatID]
		if !ok || s.IsOccupied {
			return fmt.Errorf("occupy seat %s: %w", seatID, repository.ErrSeatTaken)
		}
		s.IsOccupied = true
		s.TicketID = &ticketID
		s.UpdatedAt = r.v.store.clock.Now()
		d.seats[seatID] = s
		return nil
	})
}

type purchaseRepo struct{ v *view }

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.purchases[p.ID]; ok {
			return fmt.Errorf("create purchase: %w", errDuplicate)
		}
		d.purchases[p.ID] = *p
		return nil
	})
}

func (r *purchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var out *entity.Purchase
	r.v.read(func(d *dataset) {
		if p, ok := d.purchases[id]; ok {
			out = &p
		}
	})
	return out, nil
}

type ticketRepo struct{ v *view }

func (r *ticketRepo) Create(_ context.Context, t *entity.Ticket) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.tickets {
			if existing.ID == t.ID || existing.ScanCode == t.ScanCode || existing.SeatID == t.SeatID {
				return fmt.Errorf("create ticket for seat %s: %w", t.SeatID, errDuplicate)
			}
		}
		d.tickets[t.ID] = *t
		return nil
	})
}

func (r *ticketRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Ticket, error) {
	var out *entity.Ticket
	r.v.read(func(d *dataset) {
		if t, ok := d.tickets[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *ticketRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	return r.FindByID(ctx, id)
}

func (r *ticketRepo) FindByPurchase(_ context.Context, purchaseID uuid.UUID) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	r.v.read(func(d *dataset) {
		for _, t := range d.tickets {
			t := t
			if t.PurchaseID == purchaseID {
				out = append(out, &t)
			}
		}
	})
	sortTickets(out)
	return out, nil
}

func (r *ticketRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	var all []*entity.Ticket
	r.v.read(func(d *dataset) {
		for _, t := range d.tickets {
			t := t
			if t.OwnerID == ownerID {
				all = append(all, &t)
			}
		}
	})
	sortTickets(all)
	if offset >= len(all) {
		return []*entity.Ticket{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *ticketRepo) CountByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	r.v.read(func(d *dataset) {
		for _, t := range d.tickets {
			if t.OwnerID == ownerID {
				n++
			}
		}
	})
	return n, nil
}

func (r *ticketRepo) ChangeOwner(_ context.Context, ticketID, fromOwner, toOwner uuid.UUID) error {
	return r.v.write(func(d *dataset) error {
		t, ok := d.tickets[ticketID]
		if !ok || t.OwnerID != fromOwner {
			return fmt.Errorf("change owner of ticket %s: %w", ticketID, repository.ErrStaleState)
		}
		t.OwnerID = toOwner
		t.UpdatedAt = r.v.store.clock.Now()
		d.tickets[ticketID] = t
		return nil
	})
}

func sortTickets(ts []*entity.Ticket) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID.String() < ts[j].ID.String()
	})
}

type transferRepo struct{ v *view }

func (r *transferRepo) Create(_ context.Context, t *entity.TicketTransferHistory) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.transfers {
			if existing.TicketID == t.TicketID && existing.Status == entity.TransferStatusPending {
				return fmt.Errorf("create transfer for ticket %s: %w", t.TicketID, repository.ErrPendingTransferExists)
			}
		}
		d.transfers[t.ID] = *t
		return nil
	})
}

func (r *transferRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error) {
	var out *entity.TicketTransferHistory
	r.v.read(func(d *dataset) {
		if t, ok := d.transfers[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *transferRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TicketTransferHistory, error) {
	return r.FindByID(ctx, id)
}

func (r *transferRepo) FindPendingByTicket(_ context.Context, ticketID uuid.UUID) (*entity.TicketTransferHistory, error) {
	var out *entity.TicketTransferHistory
	r.v.read(func(d *dataset) {
		for _, t := range d.transfers {
			t := t
			if t.TicketID == ticketID && t.Status == entity.TransferStatusPending {
				out = &t
				return
			}
		}
	})
	return out, nil
}

func (r *transferRepo) ListByTicket(_ context.Context, ticketID uuid.UUID) ([]*entity.TicketTransferHistory, error) {
	var out []*entity.TicketTransferHistory
	r.v.read(func(d *dataset) {
		for _, t := range d.transfers {
			t := t
			if t.TicketID == ticketID {
				out = append(out, &t)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *transferRepo) Resolve(_ context.Context, id uuid.UUID, status entity.TransferStatus, at time.Time) error {
	return r.v.write(func(d *dataset) error {
		t, ok := d.transfers[id]
		if !ok || t.Status != entity.TransferStatusPending {
			return fmt.Errorf("resolve transfer %s: %w", id, repository.ErrStaleState)
		}
		t.Status = status
		t.UpdatedAt = at
		if status == entity.TransferStatusTransferred {
			t.TransferredAt = &at
		}
		d.transfers[id] = t
		return nil
	})
}

func (r *transferRepo) ExpirePending(_ context.Context, now time.Time) ([]*entity.TicketTransferHistory, error) {
	var out []*entity.TicketTransferHistory
	err := r.v.write(func(d *dataset) error {
		for id, t := range d.transfers {
			t := t
			if t.Status == entity.TransferStatusPending && t.ExpiresAt.Before(now) {
				t.Status = entity.TransferStatusCancelled
				t.UpdatedAt = now
				d.transfers[id] = t
				out = append(out, &t)
			}
		}
		return nil
	})
	return out, err
}

type voucherRepo struct{ v *view }

func (r *voucherRepo) FindByCode(_ context.Context, code string) (*entity.Voucher, error) {
	var out *entity.Voucher
	r.v.read(func(d *dataset) {
		if v, ok := d.vouchers[code]; ok {
			out = &v
		}
	})
	return out, nil
}
