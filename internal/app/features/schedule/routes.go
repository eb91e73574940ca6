// internal/app/features/schedule/routes.go
package schedule

import "github.com/go-chi/chi/v5"

// TimeslotRoutes is mounted at /timeslots.
func TimeslotRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTimeslots)
	return r
}

// PublicRoutes is mounted at /public_schedule.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePublicSchedule)
	return r
}
