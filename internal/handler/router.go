package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/choreledger/internal/apierror"
	"github.com/mmeshcher/choreledger/internal/metrics"
	custommiddleware "github.com/mmeshcher/choreledger/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/kids", func(r chi.Router) {
				r.Get("/", h.ListKids)
				r.Post("/", h.CreateKid)
				r.Get("/{id}", h.GetKid)
				r.Put("/{id}", h.UpdateKid)
				r.Delete("/{id}", h.DeleteKid)
				r.Get("/{id}/redemptions", h.ListRedemptions)
			})

			r.Route("/chores", func(r chi.Router) {
				r.Get("/", h.ListChores)
				r.Post("/", h.CreateChore)
				r.Get("/assignments", h.ListAssignments)
				r.Post("/assignments", h.AssignChore)
				r.Patch("/assignments/{id}", h.SettleAssignment)
				r.Post("/assignments/{id}/settle", h.SettleAssignment)
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", h.ListRewards)
				r.Post("/", h.CreateReward)
				r.Post("/redeem", h.RedeemReward)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierror.Write(w, http.StatusNotFound, apierror.KindNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierror.Write(w, http.StatusMethodNotAllowed, apierror.KindValidation, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
