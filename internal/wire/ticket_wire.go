package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler, auth func(http.Handler) http.Handler) {
	r.With(auth).Get("/api/user/tickets", ticketHandler.GetUserTickets)
}
