package usecase

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucher_Resolve(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	now := f.clock.Now()

	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	rival := f.addUser("rival", entity.RoleOrganizer)

	add := func(code string, organizer uuid.UUID, starts, ends *time.Time) {
		f.store.AddVoucher(entity.Voucher{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			Code:        code,
			Name:        code + " deal",
			OrganizerID: organizer,
			Discount:    decimal.RequireFromString("5.50"),
			StartsAt:    starts,
			EndsAt:      ends,
		})
	}
	add("OPEN", f.organizer.ID, nil, nil)
	add("WINDOW", f.organizer.ID, &yesterday, &tomorrow)
	add("ENDED", f.organizer.ID, &past, &yesterday)
	add("LATER", f.organizer.ID, &tomorrow, nil)
	add("RIVAL", rival.ID, nil, nil)

	eventID := f.event.ID
	unknownEvent := uuid.New()

	tests := []struct {
		name    string
		code    string
		eventID *uuid.UUID
		valid   bool
	}{
		{name: "unbounded", code: "OPEN", eventID: &eventID, valid: true},
		{name: "inside window", code: "WINDOW", eventID: &eventID, valid: true},
		{name: "window ended", code: "ENDED", eventID: &eventID},
		{name: "window not started", code: "LATER", eventID: &eventID},
		{name: "other organizer", code: "RIVAL", eventID: &eventID},
		{name: "other organizer without event", code: "RIVAL", valid: true},
		{name: "unknown event", code: "OPEN", eventID: &unknownEvent},
		{name: "unknown code", code: "MISSING"},
		{name: "blank code", code: "  "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			details, err := f.service.Voucher.Resolve(ctx, tt.code, tt.eventID)
			require.NoError(t, err)
			if !tt.valid {
				assert.Nil(t, details)
				return
			}
			require.NotNil(t, details)
			assert.Equal(t, tt.code, details.Code)
			assert.True(t, details.Discount.Equal(decimal.RequireFromString("5.5")))
		})
	}
}

func TestVoucher_Lookup(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.store.AddVoucher(entity.Voucher{
		BaseSimple:  entity.BaseSimple{ID: uuid.New()},
		Code:        "SPRING",
		Name:        "Spring sale",
		OrganizerID: f.organizer.ID,
		Discount:    decimal.NewFromInt(12),
	})

	resp, err := f.service.Voucher.Lookup(ctx, "SPRING", &f.event.ID)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Discount)
	assert.Equal(t, "12.00", *resp.Discount)
	require.NotNil(t, resp.Name)
	assert.Equal(t, "Spring sale", *resp.Name)

	resp, err = f.service.Voucher.Lookup(ctx, "WINTER", nil)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Nil(t, resp.Discount)
}
