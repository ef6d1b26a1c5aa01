package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePurchase(r chi.Router, purchaseHandler *adaptor.PurchaseHandler, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)

		// POST /api/purchases - buy one or more seats
		r.Post("/api/purchases", purchaseHandler.CreatePurchase)

		// GET /api/purchases/{id} - one of the caller's purchases with tickets
		r.Get("/api/purchases/{id}", purchaseHandler.GetPurchase)
	})

	// GET /api/events/{id}/seats - seat map and availability (public)
	r.Get("/api/events/{id}/seats", purchaseHandler.GetEventSeats)
}
