// internal/app/features/attendance/routes.go
package attendance

import (
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/slots", h.ServeSlots)
		pr.Get("/students", h.ServeWorksheet)
		pr.Post("/", h.HandleSave)
		pr.Get("/export", h.ServeExport)
	})

	return r
}
