// internal/app/features/lookup/lookup.go
package lookup

import (
	"errors"
	"net/http"

	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type assignedSlot struct {
	SlotID         string `json:"slotId"`
	SlotName       string `json:"slotName"`
	Day            string `json:"day"`
	Time           string `json:"time"`
	GroupHierarchy string `json:"groupHierarchy"`
}

type attendanceEntry struct {
	Date   string `json:"date"`
	SlotID string `json:"slotId"`
	Course string `json:"course"`
	Lab    string `json:"lab"`
	Status string `json:"status"`
	Marked bool   `json:"marked"`
}

type lookupResponse struct {
	Student           models.Student    `json:"student"`
	AssignedSlots     []assignedSlot    `json:"assignedSlots"`
	AttendanceRecords []attendanceEntry `json:"attendanceRecords"`
}

// ServeLookup handles GET /student_lookup/{rollNo}. The roll number is
// matched case-insensitively; attendance is listed newest first. Free-text
// fields are reduced to plain text since this view is public.
func (h *Handler) ServeLookup(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "rollNo")
	rollNo := normalize.Upper(raw)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "student lookup")
	defer cancel()

	st, err := h.students.Get(ctx, rollNo)
	if err != nil {
		if errors.Is(err, studentstore.ErrStudentNotFound) {
			respond.Message(w, http.StatusNotFound, "Student with Roll No. "+raw+" not found.")
			return
		}
		respond.Error(w, r, h.Log, err)
		return
	}

	slots, err := h.slots.ListBySubSubgroup(ctx, st.SubSubgroup)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	records, err := h.attendance.ListByRollNo(ctx, st.RollNo)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	st.Name = htmlsanitize.PlainText(st.Name)
	out := lookupResponse{
		Student:           st,
		AssignedSlots:     make([]assignedSlot, 0, len(slots)),
		AttendanceRecords: make([]attendanceEntry, 0, len(records)),
	}
	for _, s := range slots {
		out.AssignedSlots = append(out.AssignedSlots, assignedSlot{
			SlotID:         s.ID,
			SlotName:       htmlsanitize.PlainText(s.Course) + " - " + htmlsanitize.PlainText(s.Lab),
			Day:            s.Day,
			Time:           s.Time,
			GroupHierarchy: htmlsanitize.PlainText(s.GroupName) + " > " + htmlsanitize.PlainText(st.SubSubgroup),
		})
	}
	for _, rec := range records {
		out.AttendanceRecords = append(out.AttendanceRecords, attendanceEntry{
			Date:   rec.Date,
			SlotID: rec.SlotID,
			Course: htmlsanitize.PlainText(rec.Course),
			Lab:    htmlsanitize.PlainText(rec.Lab),
			Status: rec.Status,
			Marked: rec.Status == models.StatusPresent,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
