package memstore

import (
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

func (s *Store) AddSession(sess entity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.sessions[sess.Token.String()] = sess
}

func (s *Store) AddEvent(e entity.Event, tiers ...entity.TicketTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.events[e.ID] = e
	for _, t := range tiers {
		s.data.tiers[t.ID] = t
	}
}

func (s *Store) AddSeat(seat entity.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.seats[seat.ID] = seat
}

func (s *Store) AddVoucher(v entity.Voucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.vouchers[v.Code] = v
}

// SeedDemo loads one published event with a seat grid, an organizer, two
// clients with long-lived sessions and a voucher, and logs the session
// tokens so the API can be exercised with DB_DRIVER=memory.
func (s *Store) SeedDemo(log *zap.Logger) {
	now := s.clock.Now()

	organizer := entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "organizer",
		Email:    "organizer@example.com",
		Role:     entity.RoleOrganizer,
		IsActive: true,
	}
	s.AddUser(organizer)

	for _, name := range []string{"alice", "bob"} {
		u := entity.User{
			Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Username: name,
			Email:    name + "@example.com",
			Role:     entity.RoleClient,
			IsActive: true,
		}
		s.AddUser(u)

		sess := entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			UserID:     u.ID,
			Token:      uuid.New(),
			ExpiresAt:  now.Add(30 * 24 * time.Hour),
		}
		s.AddSession(sess)
		log.Info("Seeded demo user",
			zap.String("username", name),
			zap.String("user_id", u.ID.String()),
			zap.String("session_token", sess.Token.String()),
		)
	}

	event := entity.Event{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrganizerID:  organizer.ID,
		Title:        "Demo Night",
		Venue:        "Main Hall",
		StartsAt:     now.Add(14 * 24 * time.Hour),
		IsPublished:  true,
	}
	tier := entity.TicketTier{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		EventID:    event.ID,
		Name:       "Standard",
		Price:      decimal.NewFromInt(50),
		Quantity:   20,
		Category:   "seated",
	}
	s.AddEvent(event, tier)

	section := "A"
	for row := 1; row <= 2; row++ {
		for n := 1; n <= 10; n++ {
			r, num := fmt.Sprintf("%d", row), fmt.Sprintf("%d", n)
			s.AddSeat(entity.Seat{
				BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				EventID:      event.ID,
				TierID:       tier.ID,
				Section:      &section,
				Row:          &r,
				Number:       &num,
			})
		}
	}

	s.AddVoucher(entity.Voucher{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		Code:        "WELCOME10",
		Name:        "Welcome discount",
		OrganizerID: organizer.ID,
		Discount:    decimal.NewFromInt(10),
	})

	log.Info("Seeded demo event", zap.String("event_id", event.ID.String()))
}
