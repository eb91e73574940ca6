// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/labportal/internal/app/store/audit"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/paging"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
)

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

// ServeList handles GET /admin/audit?category=&event_type=&actor=&start_date=&end_date=&page=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := paging.ParsePage(r, paging.PageSize)

	filter := audit.QueryFilter{
		Actor:     strings.TrimSpace(q.Get("actor")),
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse(normalize.DateLayout, s)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.Validation("start_date must be in YYYY-MM-DD format"))
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse(normalize.DateLayout, s)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.Validation("end_date must be in YYYY-MM-DD format"))
			return
		}
		// End of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	total, err := h.events.CountByFilter(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	events, err := h.events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Events:     events,
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
	})
}
