// internal/app/features/slots/slots.go
package slots

import (
	"net/http"

	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	"github.com/dalemusser/labportal/internal/app/system/inputval"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type slotRequest struct {
	Course       string   `json:"course" label:"Course" validate:"notblank,max=64"`
	Lab          string   `json:"lab" label:"Lab" validate:"notblank,max=64"`
	Day          string   `json:"day" label:"Day" validate:"weekday"`
	Time         string   `json:"time" label:"Time" validate:"notblank"`
	GroupName    string   `json:"groupName" label:"Group" validate:"notblank"`
	SubSubgroups []string `json:"subSubgroups" label:"Sub-subgroups" validate:"min=1,dive,notblank"`
}

func (req slotRequest) input() slotstore.Input {
	return slotstore.Input{
		Course:       req.Course,
		Lab:          req.Lab,
		Day:          req.Day,
		Time:         req.Time,
		GroupName:    req.GroupName,
		SubSubgroups: req.SubSubgroups,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (slotRequest, bool) {
	var req slotRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return req, false
	}
	if err := inputval.Validate(req).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return req, false
	}
	return req, true
}

// ServeList handles GET /slots.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "slots.list")
	defer cancel()

	list, err := h.slots.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeSlot handles GET /slots/{id}.
func (h *Handler) ServeSlot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "slots.get")
	defer cancel()

	slot, err := h.slots.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, slot)
}

// HandleCreate handles POST /slots.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "slots.create")
	defer cancel()

	slot, err := h.slots.Create(ctx, req.input())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.SlotCreated(ctx, r, slot.ID, slot.Display())
	respond.JSON(w, http.StatusCreated, slot)
}

// HandleUpdate handles PUT /slots/{id}. The whole slot is replaced.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "slots.update")
	defer cancel()

	slot, err := h.slots.Update(ctx, chi.URLParam(r, "id"), req.input())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.SlotUpdated(ctx, r, slot.ID, slot.Display())
	respond.JSON(w, http.StatusOK, slot)
}

// HandleDelete handles DELETE /slots/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "slots.delete")
	defer cancel()

	slot, err := h.slots.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.SlotDeleted(ctx, r, slot.ID)
	respond.Message(w, http.StatusOK, "Slot deleted successfully")
}
