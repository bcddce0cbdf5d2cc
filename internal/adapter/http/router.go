package http

import (
	"net/http"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

type Services struct {
	Registry     interfaces.RegistryService
	Reservations interfaces.ReservationService
	Orders       interfaces.OrderService
	Timeline     interfaces.TimelineService
}

// NewRouter wires every route. idem may be nil, which disables the
// Idempotency-Key check.
func NewRouter(svc Services, idem IdempotencyStore, lgr logger.Logger) http.Handler {
	tables := NewTableHandler(svc.Registry, svc.Reservations, lgr)
	reservations := NewReservationHandler(svc.Reservations, lgr)
	orders := NewOrderHandler(svc.Orders, lgr)
	timeline := NewTimelineHandler(svc.Timeline, lgr)
	idempotent := IdempotencyMiddleware(idem, lgr)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(lgr))
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware(lgr))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/companies/{companyID}", func(r chi.Router) {
		r.With(idempotent).Post("/tables", tables.RegisterTable)
		r.Get("/tables", tables.ListTables)
		r.Get("/tables/available", tables.AvailableTables)
		r.With(idempotent).Post("/orders", orders.CreateOrder)
	})

	r.Route("/tables/{tableID}", func(r chi.Router) {
		r.Get("/", tables.GetTable)
		r.Patch("/status", tables.SetStatus)
		r.Post("/deactivate", tables.Deactivate)
		r.With(idempotent).Post("/reservations", reservations.CreateReservation)
		r.Get("/reservations", reservations.ListForTable)
	})

	r.Route("/reservations/{reservationID}", func(r chi.Router) {
		r.Get("/", reservations.GetReservation)
		r.Post("/transitions", reservations.Transition)
	})

	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", orders.GetOrder)
		r.With(idempotent).Post("/items", orders.AddItem)
		r.Delete("/items/{itemID}", orders.RemoveItem)
		r.Post("/transitions", orders.Transition)
		r.Patch("/payment", orders.UpdatePayment)
		r.Get("/timeline", timeline.GetTimeline)
	})

	return r
}
