// internal/app/features/attendance/export.go
package attendance

import (
	"fmt"
	"net/http"
	"time"

	attendancestore "github.com/dalemusser/labportal/internal/app/store/attendance"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	exportSheet = "Attendance"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{
	"Roll No", "Student Name", "Sub-subgroup", "Course", "Lab", "Day",
	"Time", "Date", "Status", "Marked By", "Marked At",
}

// ServeExport handles GET /attendance/export and streams an .xlsx file.
// Every query parameter is optional.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := attendancestore.ExportFilter{
		SlotID:      q.Get("slotId"),
		SubSubgroup: q.Get("subSubgroup"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "attendance.export")
	defer cancel()

	records, err := h.ledger.Export(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if len(records) == 0 {
		respond.Message(w, http.StatusNotFound, "No attendance data found for the selected filters.")
		return
	}

	f, err := buildWorkbook(records)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("attendance_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		h.Log.Error("write attendance export", zap.Error(err))
	}
}

// buildWorkbook lays records out one per row under a header row.
func buildWorkbook(records []models.AttendanceRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			rec.RollNo, rec.Name, rec.SubSubgroup, rec.Course, rec.Lab, rec.Day,
			rec.Time, rec.Date, rec.Status, rec.MarkedBy,
			rec.MarkedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
