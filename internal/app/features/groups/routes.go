// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeGroup)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		// Lookup by name for the slot form's sub-subgroup picker.
		pr.Get("/{name}/subsubgroups", h.ServeSubSubgroups)
	})

	return r
}
