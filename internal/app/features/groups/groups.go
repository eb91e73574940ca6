// internal/app/features/groups/groups.go
package groups

import (
	"net/http"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/inputval"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type groupRequest struct {
	Name string `json:"name" label:"Group name" validate:"notblank,max=64"`
}

// ServeList handles GET /groups in creation order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups.list")
	defer cancel()

	list, err := h.groups.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups.get")
	defer cancel()

	g, err := h.groups.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, g)
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups.create")
	defer cancel()

	g, err := h.groups.Create(ctx, req.Name)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.GroupCreated(ctx, r, g.ID, g.Name)
	respond.JSON(w, http.StatusCreated, g)
}

// HandleUpdate handles PUT /groups/{id}. A rename regenerates the six
// sub-subgroups; slots and students keep the old identifiers.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups.update")
	defer cancel()

	g, err := h.groups.Update(ctx, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.GroupUpdated(ctx, r, g.ID, g.Name)
	respond.JSON(w, http.StatusOK, g)
}

// HandleDelete handles DELETE /groups/{id}. Only the group record goes;
// slots and students that pointed at it are counted and logged.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups.delete")
	defer cancel()

	g, err := h.groups.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	slots, err := h.slots.CountByGroup(ctx, g.Name)
	if err != nil {
		h.Log.Warn("count slots of deleted group", zap.String("group", g.Name), zap.Error(err))
	}
	students, err := h.students.CountBySubSubgroups(ctx, g.SubSubgroups)
	if err != nil {
		h.Log.Warn("count students of deleted group", zap.String("group", g.Name), zap.Error(err))
	}
	if slots > 0 || students > 0 {
		h.Log.Info("group deleted with dangling references",
			zap.String("group", g.Name),
			zap.Int64("slots", slots),
			zap.Int64("students", students))
	}
	h.AuditLog.GroupDeleted(ctx, r, g.ID, g.Name, slots, students)

	respond.Message(w, http.StatusOK, "Group deleted successfully")
}

// ServeSubSubgroups handles GET /groups/{name}/subsubgroups.
func (h *Handler) ServeSubSubgroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups.subsubgroups")
	defer cancel()

	ids, err := h.groups.SubSubgroupsOf(ctx, chi.URLParam(r, "name"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if len(ids) == 0 {
		respond.Error(w, r, h.Log, apierr.NotFound("Group not found"))
		return
	}
	respond.JSON(w, http.StatusOK, ids)
}
