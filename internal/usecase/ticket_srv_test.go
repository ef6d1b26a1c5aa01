package usecase

import (
	"context"
	"testing"

	"event-ticketing/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserTickets(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	_, err := f.service.Purchase.Purchase(ctx, f.alice.ID, purchaseReq(f.event.ID, f.seats[0], f.seats[1], f.seats[2]))
	require.NoError(t, err)
	_, err = f.service.Purchase.Purchase(ctx, f.bob.ID, purchaseReq(f.event.ID, f.seats[3]))
	require.NoError(t, err)

	page, err := f.service.Ticket.GetUserTickets(ctx, f.alice.ID, &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page, err = f.service.Ticket.GetUserTickets(ctx, f.alice.ID, &request.PaginatedRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.NotEmpty(t, page.Data[0].SeatLabel)

	page, err = f.service.Ticket.GetUserTickets(ctx, f.bob.ID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}
