// internal/app/features/attendance/marking.go
package attendance

import (
	"net/http"

	attendancestore "github.com/dalemusser/labportal/internal/app/store/attendance"
	"github.com/dalemusser/labportal/internal/app/system/auth"
	"github.com/dalemusser/labportal/internal/app/system/inputval"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
)

// slotOption is one entry of the slot picker.
type slotOption struct {
	ID           string   `json:"id"`
	Display      string   `json:"display"`
	Course       string   `json:"course"`
	Lab          string   `json:"lab"`
	Day          string   `json:"day"`
	Time         string   `json:"time"`
	GroupName    string   `json:"groupName"`
	SubSubgroups []string `json:"subSubgroups"`
}

type saveRequest struct {
	SlotID         string                 `json:"slotId" label:"Slot" validate:"notblank"`
	SubSubgroup    string                 `json:"subSubgroupName" label:"Sub-subgroup" validate:"notblank"`
	Date           string                 `json:"date" label:"Date" validate:"isodate"`
	AttendanceData []attendancestore.Mark `json:"attendanceData" label:"Attendance data" validate:"min=1"`
}

type saveResponse struct {
	Message string `json:"message"`
	attendancestore.SaveResult
}

// ServeSlots handles GET /attendance/slots.
func (h *Handler) ServeSlots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "attendance.slots")
	defer cancel()

	slots, err := h.slots.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	out := make([]slotOption, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotOption{
			ID:           s.ID,
			Display:      s.Display(),
			Course:       s.Course,
			Lab:          s.Lab,
			Day:          s.Day,
			Time:         s.Time,
			GroupName:    s.GroupName,
			SubSubgroups: s.SubSubgroups,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

// ServeWorksheet handles GET /attendance/students?slotId=&subSubgroup=&date=.
// The worksheet is returned to the client, which posts the marks back.
func (h *Handler) ServeWorksheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slotID := normalize.Name(q.Get("slotId"))
	ssg := normalize.Name(q.Get("subSubgroup"))
	if slotID == "" || ssg == "" {
		respond.Message(w, http.StatusBadRequest, "Slot ID and Sub-subgroup are required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "attendance.worksheet")
	defer cancel()

	ws, err := h.ledger.BuildWorksheet(ctx, slotID, ssg, q.Get("date"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, ws)
}

// HandleSave handles POST /attendance.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	markedBy := h.MarkedBy
	if u, ok := auth.CurrentUser(r); ok && u.Name != "" {
		markedBy = u.Name
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "attendance.save")
	defer cancel()

	res, err := h.ledger.Save(ctx, req.SlotID, req.SubSubgroup, req.Date, req.AttendanceData, markedBy)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	saved := int(res.Inserted + res.Updated)
	h.AuditLog.AttendanceSaved(ctx, r, req.SlotID, normalize.Upper(req.SubSubgroup), res.Date, saved, len(res.Skipped))

	respond.JSON(w, http.StatusOK, saveResponse{
		Message:    "Attendance saved successfully",
		SaveResult: res,
	})
}
