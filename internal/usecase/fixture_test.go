package usecase

import (
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/memstore"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/notify"
	"event-ticketing/pkg/signedlink"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const linkTTL = 7 * 24 * time.Hour

type fixture struct {
	store   *memstore.Store
	repo    *repository.Repository
	sink    *notify.MemorySink
	clock   *utils.ManualClock
	signer  *signedlink.Signer
	service *Service

	organizer *entity.User
	alice     *entity.User
	bob       *entity.User
	event     *entity.Event
	tier      *entity.TicketTier
	seats     []*entity.Seat
}

func newFixture(t *testing.T, seatCount int) *fixture {
	t.Helper()

	clock := utils.NewManualClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	f := &fixture{
		store: memstore.New(clock),
		sink:  &notify.MemorySink{},
		clock: clock,
	}
	f.repo = f.store.Repository()

	signer, err := signedlink.NewSigner("test-secret", linkTTL, "https://tickets.test", f.clock)
	require.NoError(t, err)
	f.signer = signer
	f.service = NewService(f.repo, signer, f.sink, f.clock, zap.NewNop())

	f.organizer = f.addUser("organizer", entity.RoleOrganizer)
	f.alice = f.addUser("alice", entity.RoleClient)
	f.bob = f.addUser("bob", entity.RoleClient)

	f.event, f.tier = f.addEvent("Summer Gig", f.organizer.ID, decimal.NewFromInt(40))
	f.seats = f.addSeats(f.event, f.tier, seatCount)
	return f
}

func (f *fixture) addUser(name string, role entity.UserRole) *entity.User {
	now := f.clock.Now()
	u := entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: name,
		Email:    name + "@example.com",
		Role:     role,
		IsActive: true,
	}
	f.store.AddUser(u)
	return &u
}

func (f *fixture) addEvent(title string, organizerID uuid.UUID, price decimal.Decimal) (*entity.Event, *entity.TicketTier) {
	now := f.clock.Now()
	e := entity.Event{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrganizerID:  organizerID,
		Title:        title,
		Venue:        "Arena",
		StartsAt:     now.Add(30 * 24 * time.Hour),
		IsPublished:  true,
	}
	tier := entity.TicketTier{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		EventID:    e.ID,
		Name:       "General",
		Price:      price,
		Quantity:   100,
		Category:   "standing",
	}
	f.store.AddEvent(e, tier)
	return &e, &tier
}

func (f *fixture) addSeats(e *entity.Event, tier *entity.TicketTier, n int) []*entity.Seat {
	now := f.clock.Now()
	out := make([]*entity.Seat, n)
	for i := range out {
		number := uuid.NewString()[:4]
		s := entity.Seat{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			EventID:      e.ID,
			TierID:       tier.ID,
			Number:       &number,
		}
		f.store.AddSeat(s)
		out[i] = &s
	}
	return out
}
