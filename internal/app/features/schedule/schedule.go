// internal/app/features/schedule/schedule.go
package schedule

import (
	"net/http"

	"github.com/dalemusser/labportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
)

type publicSlot struct {
	ID           string   `json:"id"`
	Time         string   `json:"time"`
	Day          string   `json:"day"`
	GroupName    string   `json:"groupName"`
	Lab          string   `json:"lab"`
	Course       string   `json:"course"`
	SubSubgroups []string `json:"subSubgroups"`
}

// ServeTimeslots handles GET /timeslots.
func (h *Handler) ServeTimeslots(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, timeslots.Generate(h.Policy))
}

// ServePublicSchedule handles GET /public_schedule. Course, lab and group
// are reduced to plain text.
func (h *Handler) ServePublicSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "public schedule")
	defer cancel()

	slots, err := h.slots.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	out := make([]publicSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, publicSlot{
			ID:           s.ID,
			Time:         s.Time,
			Day:          s.Day,
			GroupName:    htmlsanitize.PlainText(s.GroupName),
			Lab:          htmlsanitize.PlainText(s.Lab),
			Course:       htmlsanitize.PlainText(s.Course),
			SubSubgroups: s.SubSubgroups,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
