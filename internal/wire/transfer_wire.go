package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTransfer(r chi.Router, transferHandler *adaptor.TransferHandler, auth func(http.Handler) http.Handler) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/api/transfers", transferHandler.Initiate)
		r.Post("/api/transfers/{id}/cancel", transferHandler.Cancel)
		r.Get("/api/tickets/{id}/transfers", transferHandler.ListForTicket)
	})

	// ==================== SIGNED LINKS ====================
	// The signature query parameter authorizes these; no session needed.
	r.Get("/api/transfers/{id}/accept", transferHandler.Accept)
	r.Get("/api/transfers/{id}/reject", transferHandler.Reject)
}
