// internal/app/features/lookup/routes.go
package lookup

import "github.com/go-chi/chi/v5"

// Routes is mounted at /student_lookup.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{rollNo}", h.ServeLookup)
	return r
}
