package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/notify"
	"event-ticketing/pkg/signedlink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buyTicket purchases one seat for owner and returns the ticket id.
func (f *fixture) buyTicket(t *testing.T, owner *entity.User, seat *entity.Seat) uuid.UUID {
	t.Helper()
	resp, err := f.service.Purchase.Purchase(context.Background(), owner.ID, purchaseReq(f.event.ID, seat))
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)
	return uuid.MustParse(resp.Tickets[0].ID)
}

// links returns the signatures from the last transfer_request notification.
func (f *fixture) links(t *testing.T) (accept, reject string) {
	t.Helper()
	notes := f.sink.Notifications()
	for i := len(notes) - 1; i >= 0; i-- {
		if notes[i].Kind != notify.KindTransferRequest {
			continue
		}
		a, err := url.Parse(notes[i].Payload["accept_url"])
		require.NoError(t, err)
		r, err := url.Parse(notes[i].Payload["reject_url"])
		require.NoError(t, err)
		return a.Query().Get("signature"), r.Query().Get("signature")
	}
	t.Fatal("no transfer_request notification")
	return "", ""
}

func (f *fixture) initiate(t *testing.T, from *entity.User, ticketID uuid.UUID, to string) uuid.UUID {
	t.Helper()
	resp, err := f.service.Transfer.Initiate(context.Background(), from.ID, &request.InitiateTransferRequest{
		TicketID:       ticketID.String(),
		RecipientEmail: to,
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestTransfer_RoundTrip(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	transferID := f.initiate(t, f.alice, ticketID, "Bob@Example.com")

	ticket, err := f.repo.Ticket.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, ticket.OwnerID, "initiate must not move ownership")

	accept, _ := f.links(t)
	require.NoError(t, f.service.Transfer.Accept(ctx, transferID, accept))

	ticket, err = f.repo.Ticket.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, ticket.OwnerID)

	history, err := f.repo.Transfer.FindByID(ctx, transferID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusTransferred, history.Status)
	require.NotNil(t, history.TransferredAt)

	notes := f.sink.Notifications()
	last := notes[len(notes)-1]
	assert.Equal(t, notify.KindTransferAccepted, last.Kind)
	assert.Equal(t, f.alice.Email, last.Recipient)

	assert.Equal(t, []notify.EventKind{
		notify.EventPurchaseCompleted,
		notify.EventTransferRequested,
		notify.EventTransferAccepted,
	}, f.sink.EventKinds())

	for _, e := range f.sink.Events() {
		assert.NotContains(t, e.Payload, "accept_url")
	}

	// the original owner can no longer act on the transfer
	assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, transferID, f.alice.ID), ErrAlreadyProcessed)
	ticket, err = f.repo.Ticket.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, ticket.OwnerID)
}

func TestTransfer_Reject(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])
	transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)

	accept, reject := f.links(t)
	assert.ErrorIs(t, f.service.Transfer.Reject(ctx, transferID, accept), ErrInvalidSignature, "accept link must not reject")
	require.NoError(t, f.service.Transfer.Reject(ctx, transferID, reject))

	ticket, err := f.repo.Ticket.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, ticket.OwnerID)

	history, err := f.repo.Transfer.FindByID(ctx, transferID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusRejected, history.Status)
	assert.Nil(t, history.TransferredAt)
}

func TestTransfer_InitiateErrors(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	inactive := f.addUser("carol", entity.RoleClient)
	inactive.IsActive = false
	f.store.AddUser(*inactive)

	tests := []struct {
		name    string
		from    uuid.UUID
		ticket  string
		email   string
		wantErr error
	}{
		{name: "unknown ticket", from: f.alice.ID, ticket: uuid.NewString(), email: f.bob.Email, wantErr: ErrTicketNotFound},
		{name: "not owner", from: f.bob.ID, ticket: ticketID.String(), email: "alice@example.com", wantErr: ErrNotOwner},
		{name: "unknown recipient", from: f.alice.ID, ticket: ticketID.String(), email: "nobody@example.com", wantErr: ErrRecipientInvalid},
		{name: "self", from: f.alice.ID, ticket: ticketID.String(), email: f.alice.Email, wantErr: ErrRecipientInvalid},
		{name: "organizer recipient", from: f.alice.ID, ticket: ticketID.String(), email: f.organizer.Email, wantErr: ErrRecipientInvalid},
		{name: "inactive recipient", from: f.alice.ID, ticket: ticketID.String(), email: inactive.Email, wantErr: ErrRecipientInvalid},
		{name: "bad email", from: f.alice.ID, ticket: ticketID.String(), email: "not-an-email", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Transfer.Initiate(ctx, tt.from, &request.InitiateTransferRequest{
				TicketID:       tt.ticket,
				RecipientEmail: tt.email,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	history, err := f.repo.Transfer.ListByTicket(ctx, ticketID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransfer_SinglePending(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	recipients := make([]*entity.User, 10)
	for i := range recipients {
		recipients[i] = f.addUser(uuid.NewString()[:8], entity.RoleClient)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		pending   int
	)
	for _, r := range recipients {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, err := f.service.Transfer.Initiate(ctx, f.alice.ID, &request.InitiateTransferRequest{
				TicketID:       ticketID.String(),
				RecipientEmail: email,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrTransferAlreadyPending):
				pending++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(r.Email)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(recipients)-1, pending)

	// a terminal state frees the ticket for a new offer
	open, err := f.repo.Transfer.FindPendingByTicket(ctx, ticketID)
	require.NoError(t, err)
	require.NotNil(t, open)
	require.NoError(t, f.service.Transfer.Cancel(ctx, open.ID, f.alice.ID))

	f.initiate(t, f.alice, ticketID, f.bob.Email)
}

func TestTransfer_TerminalIdempotence(t *testing.T) {
	ctx := context.Background()

	type terminate func(f *fixture, id uuid.UUID, accept, reject string) error
	terminals := map[string]terminate{
		"accepted": func(f *fixture, id uuid.UUID, accept, _ string) error {
			return f.service.Transfer.Accept(ctx, id, accept)
		},
		"rejected": func(f *fixture, id uuid.UUID, _, reject string) error {
			return f.service.Transfer.Reject(ctx, id, reject)
		},
		"cancelled": func(f *fixture, id uuid.UUID, _, _ string) error {
			return f.service.Transfer.Cancel(ctx, id, f.alice.ID)
		},
	}

	for name, finish := range terminals {
		finish := finish
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 1)
			ticketID := f.buyTicket(t, f.alice, f.seats[0])
			transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)
			accept, reject := f.links(t)

			require.NoError(t, finish(f, transferID, accept, reject))

			before, err := f.repo.Transfer.FindByID(ctx, transferID)
			require.NoError(t, err)
			owner, err := f.repo.Ticket.FindByID(ctx, ticketID)
			require.NoError(t, err)
			events := len(f.sink.Events())

			assert.ErrorIs(t, f.service.Transfer.Accept(ctx, transferID, accept), ErrAlreadyProcessed)
			assert.ErrorIs(t, f.service.Transfer.Reject(ctx, transferID, reject), ErrAlreadyProcessed)
			assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, transferID, f.alice.ID), ErrAlreadyProcessed)
			assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, transferID, f.bob.ID), ErrAlreadyProcessed)
			// outsiders still learn nothing about the offer
			assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, transferID, f.organizer.ID), ErrNotOwner)

			after, err := f.repo.Transfer.FindByID(ctx, transferID)
			require.NoError(t, err)
			assert.Equal(t, before.Status, after.Status)
			assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

			ownerAfter, err := f.repo.Ticket.FindByID(ctx, ticketID)
			require.NoError(t, err)
			assert.Equal(t, owner.OwnerID, ownerAfter.OwnerID)
			assert.Len(t, f.sink.Events(), events)
		})
	}
}

func TestTransfer_ExpiredSignature(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])
	transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)
	accept, _ := f.links(t)

	f.clock.Advance(linkTTL + time.Minute)

	assert.ErrorIs(t, f.service.Transfer.Accept(ctx, transferID, accept), ErrSignatureExpired)

	ticket, err := f.repo.Ticket.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, ticket.OwnerID)

	history, err := f.repo.Transfer.FindByID(ctx, transferID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, history.Status)
}

func TestTransfer_InvalidSignatureNeverTouchesState(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	// an unknown transfer with a bad signature reports the signature, not NotFound
	assert.ErrorIs(t, f.service.Transfer.Accept(ctx, uuid.New(), "forged"), ErrInvalidSignature)

	ticketID := f.buyTicket(t, f.alice, f.seats[0])
	transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)
	otherID := f.initiate(t, f.bob, f.buyTicketFor(t, f.bob), f.alice.Email)
	accept, _ := f.links(t)

	// link for one transfer cannot accept another
	assert.ErrorIs(t, f.service.Transfer.Accept(ctx, transferID, accept), ErrInvalidSignature)
	require.NoError(t, f.service.Transfer.Accept(ctx, otherID, accept))
}

func (f *fixture) buyTicketFor(t *testing.T, owner *entity.User) uuid.UUID {
	t.Helper()
	seat := f.addSeats(f.event, f.tier, 1)[0]
	return f.buyTicket(t, owner, seat)
}

func TestTransfer_AcceptUnknown(t *testing.T) {
	f := newFixture(t, 0)
	id := uuid.New()
	token, err := f.signer.Sign(id, signedlink.ActionAccept, f.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Transfer.Accept(context.Background(), id, token), ErrTransferNotFound)
}

func TestTransfer_Cancel(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, uuid.New(), f.alice.ID), ErrTransferNotFound)

	transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)
	assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, transferID, f.bob.ID), ErrNotOwner)

	require.NoError(t, f.service.Transfer.Cancel(ctx, transferID, f.alice.ID))

	history, err := f.repo.Transfer.FindByID(ctx, transferID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, history.Status)

	notes := f.sink.Notifications()
	last := notes[len(notes)-1]
	assert.Equal(t, notify.KindTransferCancelled, last.Kind)
	assert.Equal(t, f.bob.Email, last.Recipient)

	// a cancelled offer's links stop working
	accept, _ := f.links(t)
	assert.ErrorIs(t, f.service.Transfer.Accept(ctx, transferID, accept), ErrAlreadyProcessed)
}

func TestTransfer_CancelNotInitiator(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])
	carol := f.addUser("carol", entity.RoleClient)

	now := f.clock.Now()
	foreign := &entity.TicketTransferHistory{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TicketID:     ticketID,
		FromUserID:   carol.ID,
		ToUserID:     f.bob.ID,
		Status:       entity.TransferStatusPending,
		ExpiresAt:    now.Add(linkTTL),
	}
	require.NoError(t, f.repo.Transfer.Create(ctx, foreign))

	assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, foreign.ID, f.alice.ID), ErrNotInitiator)
	assert.ErrorIs(t, f.service.Transfer.Cancel(ctx, foreign.ID, carol.ID), ErrNotOwner)
}

func TestTransfer_ExpireStale(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	first := f.buyTicket(t, f.alice, f.seats[0])
	second := f.buyTicket(t, f.alice, f.seats[1])

	stale := f.initiate(t, f.alice, first, f.bob.Email)
	f.clock.Advance(linkTTL / 2)
	fresh := f.initiate(t, f.alice, second, f.bob.Email)
	f.clock.Advance(linkTTL/2 + time.Second)

	n, err := f.service.Transfer.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	h, err := f.repo.Transfer.FindByID(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, h.Status)

	h, err = f.repo.Transfer.FindByID(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, h.Status)

	assert.Contains(t, f.sink.EventKinds(), notify.EventTransferExpired)

	// the ticket accepts a new offer once the stale one is gone
	f.initiate(t, f.alice, first, f.bob.Email)

	n, err = f.service.Transfer.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransfer_InitiateReplacesLapsedOffer(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	lapsed := f.initiate(t, f.alice, ticketID, f.bob.Email)
	f.clock.Advance(linkTTL + time.Hour)

	replacement := f.initiate(t, f.alice, ticketID, f.bob.Email)
	assert.NotEqual(t, lapsed, replacement)

	h, err := f.repo.Transfer.FindByID(ctx, lapsed)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, h.Status)
}

// txHook rewrites the transactional repository so a test can stand in for
// a concurrent writer that commits between the service's read and its write.
type txHook struct {
	inner repository.Transactor
	wrap  func(repo *repository.Repository) *repository.Repository
}

func (h txHook) WithinTx(ctx context.Context, fn func(repo *repository.Repository) error) error {
	return h.inner.WithinTx(ctx, func(repo *repository.Repository) error {
		return fn(h.wrap(repo))
	})
}

func (f *fixture) serviceWithTx(wrap func(repo *repository.Repository) *repository.Repository) *Service {
	repo := *f.repo
	repo.Tx = txHook{inner: f.repo.Tx, wrap: wrap}
	return NewService(&repo, f.signer, f.sink, f.clock, zap.NewNop())
}

// sweptTransfers applies every Resolve and then reports it as stale, the way
// the store answers when the sweeper cancelled the row first.
type sweptTransfers struct {
	repository.TransferRepository
}

func (s sweptTransfers) Resolve(ctx context.Context, id uuid.UUID, status entity.TransferStatus, at time.Time) error {
	if err := s.TransferRepository.Resolve(ctx, id, status, at); err != nil {
		return err
	}
	return fmt.Errorf("resolve transfer %s: %w", id, repository.ErrStaleState)
}

// checkedInTickets returns tickets as used, as if check-in committed after
// the service's first read.
type checkedInTickets struct {
	repository.TicketRepository
}

func (c checkedInTickets) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	t, err := c.TicketRepository.FindByIDForUpdate(ctx, id)
	if t == nil {
		return t, err
	}
	used := *t
	used.IsUsed = true
	return &used, err
}

func TestTransfer_InitiateAfterSweeperClearedLapsedOffer(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	lapsed := f.initiate(t, f.alice, ticketID, f.bob.Email)
	f.clock.Advance(linkTTL + time.Hour)

	svc := f.serviceWithTx(func(repo *repository.Repository) *repository.Repository {
		wrapped := *repo
		wrapped.Transfer = sweptTransfers{repo.Transfer}
		return &wrapped
	})

	resp, err := svc.Transfer.Initiate(ctx, f.alice.ID, &request.InitiateTransferRequest{
		TicketID:       ticketID.String(),
		RecipientEmail: f.bob.Email,
	})
	require.NoError(t, err)
	assert.NotEqual(t, lapsed.String(), resp.ID)

	old, err := f.repo.Transfer.FindByID(ctx, lapsed)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, old.Status)

	open, err := f.repo.Transfer.FindPendingByTicket(ctx, ticketID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, resp.ID, open.ID.String())

	// the sweeper owns the expiry announcement in this case
	assert.NotContains(t, f.sink.EventKinds(), notify.EventTransferExpired)
}

func TestTransfer_InitiateRechecksUseUnderLock(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])

	svc := f.serviceWithTx(func(repo *repository.Repository) *repository.Repository {
		wrapped := *repo
		wrapped.Ticket = checkedInTickets{repo.Ticket}
		return &wrapped
	})
	events := len(f.sink.Events())

	_, err := svc.Transfer.Initiate(ctx, f.alice.ID, &request.InitiateTransferRequest{
		TicketID:       ticketID.String(),
		RecipientEmail: f.bob.Email,
	})
	assert.ErrorIs(t, err, ErrTicketUsed)

	open, err := f.repo.Transfer.FindPendingByTicket(ctx, ticketID)
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.Len(t, f.sink.Events(), events)
}

func TestTransfer_ListForTicket(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ticketID := f.buyTicket(t, f.alice, f.seats[0])
	transferID := f.initiate(t, f.alice, ticketID, f.bob.Email)

	list, err := f.service.Transfer.ListForTicket(ctx, ticketID, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, transferID.String(), list[0].ID)

	list, err = f.service.Transfer.ListForTicket(ctx, ticketID, f.bob.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stranger := f.addUser("dave", entity.RoleClient)
	_, err = f.service.Transfer.ListForTicket(ctx, ticketID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.Transfer.ListForTicket(ctx, uuid.New(), f.alice.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
