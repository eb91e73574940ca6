package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts documents directly, bypassing store validation, so tests
// can set up state (including dangling references) in one line.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup inserts a group with its six derived sub-subgroups.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	name = normalize.Upper(name)
	now := time.Now().UTC()
	g := models.Group{
		ID:           uuid.NewString(),
		Name:         name,
		NameCI:       text.Fold(name),
		SubSubgroups: models.DeriveSubSubgroups(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("CreateGroup(%q): %v", name, err)
	}
	return g
}

// CreateSlot inserts a lab slot. day and timeLabel are stored as given.
func (f *Fixtures) CreateSlot(ctx context.Context, course, lab, day, timeLabel, groupName string, subSubgroups ...string) models.LabSlot {
	f.t.Helper()

	ci := make([]string, 0, len(subSubgroups))
	for _, s := range subSubgroups {
		ci = append(ci, normalize.Upper(s))
	}
	now := time.Now().UTC()
	s := models.LabSlot{
		ID:             uuid.NewString(),
		Course:         normalize.Upper(course),
		Lab:            normalize.Upper(lab),
		Day:            day,
		Time:           timeLabel,
		GroupName:      normalize.Upper(groupName),
		SubSubgroups:   subSubgroups,
		SubSubgroupsCI: ci,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("lab_slots").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("CreateSlot(%s %s %s): %v", lab, day, timeLabel, err)
	}
	return s
}

// CreateStudent inserts a student with upper-cased roll number and
// sub-subgroup.
func (f *Fixtures) CreateStudent(ctx context.Context, rollNo, name, subSubgroup string) models.Student {
	f.t.Helper()

	st := models.Student{
		RollNo:      normalize.Upper(rollNo),
		Name:        name,
		SubSubgroup: normalize.Upper(subSubgroup),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("CreateStudent(%q): %v", rollNo, err)
	}
	return st
}

// CreateAttendance inserts one attendance record for st in slot on date.
func (f *Fixtures) CreateAttendance(ctx context.Context, st models.Student, slot models.LabSlot, date, status string) models.AttendanceRecord {
	f.t.Helper()

	rec := models.AttendanceRecord{
		ID:          uuid.NewString(),
		RollNo:      st.RollNo,
		Name:        st.Name,
		SubSubgroup: st.SubSubgroup,
		SlotID:      slot.ID,
		Course:      slot.Course,
		Lab:         slot.Lab,
		Day:         slot.Day,
		Time:        slot.Time,
		Date:        date,
		Status:      status,
		MarkedBy:    "fixture",
		MarkedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("attendance").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("CreateAttendance(%s, %s, %s): %v", st.RollNo, slot.ID, date, err)
	}
	return rec
}
