// internal/app/features/students/students.go
package students

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/labportal/internal/app/system/csvutil"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/respond"
	"github.com/dalemusser/labportal/internal/app/system/timeouts"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// uploadResponse is returned by HandleUpload with 201 (every row imported)
// or 202 (some rows skipped).
type uploadResponse struct {
	Message  string               `json:"message"`
	Status   string               `json:"status"`
	Imported int                  `json:"imported"`
	Students []models.Student     `json:"students"`
	Skipped  []csvutil.SkippedRow `json:"skipped"`
}

// ServeList handles GET /students ordered by roll number.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "students.list")
	defer cancel()

	list, err := h.students.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleUpload handles POST /students/upload with a multipart "file" part.
// Rows are validated against the sub-subgroups of the groups that exist
// right now.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		msg := "No file part"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "CSV file is too large. Maximum size is 5 MB."
		}
		respond.Message(w, http.StatusBadRequest, msg)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respond.Message(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		respond.Message(w, http.StatusBadRequest, "Invalid file type. Please upload a CSV.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "roster import")
	defer cancel()

	valid, err := h.groups.AllSubSubgroups(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	res, err := h.students.BulkImport(ctx, file, valid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("roster imported",
		zap.String("file", header.Filename),
		zap.Int("imported", len(res.Imported)),
		zap.Int("skipped", len(res.Skipped)))
	h.AuditLog.RosterImported(ctx, r, header.Filename, len(res.Imported), len(res.Skipped))

	out := uploadResponse{
		Message:  fmt.Sprintf("%d new students uploaded successfully.", len(res.Imported)),
		Status:   "success",
		Imported: len(res.Imported),
		Students: res.Imported,
		Skipped:  res.Skipped,
	}
	status := http.StatusCreated
	if len(res.Skipped) > 0 {
		out.Status = "warning"
		out.Message += fmt.Sprintf(" %d rows skipped.", len(res.Skipped))
		status = http.StatusAccepted
	}
	respond.JSON(w, status, out)
}

// HandleDelete handles DELETE /students/{rollNo}. The student's attendance
// records go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "students.delete")
	defer cancel()

	rollNo := chi.URLParam(r, "rollNo")
	removed, err := h.students.Delete(ctx, rollNo)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.StudentDeleted(ctx, r, normalize.Upper(rollNo), removed)
	respond.Message(w, http.StatusOK, "Student and associated attendance records deleted successfully")
}
