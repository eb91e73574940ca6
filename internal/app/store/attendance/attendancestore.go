// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"time"

	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"github.com/dalemusser/labportal/internal/domain/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// WorksheetRow is one student on a marking sheet.
type WorksheetRow struct {
	RollNo        string `json:"rollNo"`
	Name          string `json:"name"`
	InitialStatus string `json:"initialStatus"`
}

// Worksheet is everything a client needs to mark one sub-subgroup for one
// slot on one date. The client posts it back as Marks.
type Worksheet struct {
	Slot        models.LabSlot `json:"slot"`
	SubSubgroup string         `json:"subSubgroup"`
	Date        string         `json:"date"`
	Rows        []WorksheetRow `json:"students"`
}

// Mark is one status submitted for one student.
type Mark struct {
	RollNo string `json:"rollNo"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SaveResult summarizes a Save. Skipped lists roll numbers that matched no
// student.
type SaveResult struct {
	Date     string   `json:"date"`
	Inserted int64    `json:"inserted"`
	Updated  int64    `json:"updated"`
	Skipped  []string `json:"skipped"`
}

// ExportFilter narrows Export. Empty fields match everything; dates are
// inclusive YYYY-MM-DD bounds.
type ExportFilter struct {
	SlotID      string
	SubSubgroup string
	StartDate   string
	EndDate     string
}

type Store struct {
	c        *mongo.Collection
	slots    *slotstore.Store
	students *studentstore.Store
	log      *zap.Logger

	now func() time.Time
	loc *time.Location
}

// New wires the ledger to the slot and student collections of db. Dates
// left empty by callers default to today in loc (nil means local time).
func New(db *mongo.Database, policy timeslots.Policy, loc *time.Location, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		c:        db.Collection("attendance"),
		slots:    slotstore.New(db, policy),
		students: studentstore.New(db, log),
		log:      log,
		now:      time.Now,
		loc:      loc,
	}
}

func (s *Store) date(raw string) (string, error) {
	d, ok := normalize.Date(raw, s.now(), s.loc)
	if !ok {
		return "", apierr.Validation("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

// slotAndGroup loads the slot and checks ssg is one of its sub-subgroups.
func (s *Store) slotAndGroup(ctx context.Context, slotID, ssg string) (models.LabSlot, string, error) {
	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return models.LabSlot{}, "", err
	}
	key := normalize.Upper(ssg)
	if key == "" {
		return models.LabSlot{}, "", apierr.Validation("sub-subgroup is required")
	}
	for _, id := range slot.SubSubgroupsCI {
		if id == key {
			return slot, key, nil
		}
	}
	return models.LabSlot{}, "", apierr.Validation("sub-subgroup %s is not assigned to this slot", normalize.Name(ssg))
}

// BuildWorksheet lists the sub-subgroup's students with the status already
// recorded for (slot, date), or Absent when nothing is recorded yet.
func (s *Store) BuildWorksheet(ctx context.Context, slotID, ssg, rawDate string) (Worksheet, error) {
	date, err := s.date(rawDate)
	if err != nil {
		return Worksheet{}, err
	}
	slot, key, err := s.slotAndGroup(ctx, slotID, ssg)
	if err != nil {
		return Worksheet{}, err
	}

	students, err := s.students.ListBySubSubgroup(ctx, key)
	if err != nil {
		return Worksheet{}, err
	}

	recorded := map[string]string{}
	if len(students) > 0 {
		rollNos := make([]string, 0, len(students))
		for _, st := range students {
			rollNos = append(rollNos, st.RollNo)
		}
		cur, err := s.c.Find(ctx, bson.M{
			"slot_id": slot.ID,
			"date":    date,
			"roll_no": bson.M{"$in": rollNos},
		}, options.Find().SetProjection(bson.M{"roll_no": 1, "status": 1}))
		if err != nil {
			return Worksheet{}, err
		}
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var rec models.AttendanceRecord
			if err := cur.Decode(&rec); err != nil {
				return Worksheet{}, err
			}
			recorded[rec.RollNo] = rec.Status
		}
		if err := cur.Err(); err != nil {
			return Worksheet{}, err
		}
	}

	ws := Worksheet{
		Slot:        slot,
		SubSubgroup: key,
		Date:        date,
		Rows:        make([]WorksheetRow, 0, len(students)),
	}
	for _, st := range students {
		status := recorded[st.RollNo]
		if status == "" {
			status = models.StatusAbsent
		}
		ws.Rows = append(ws.Rows, WorksheetRow{RollNo: st.RollNo, Name: st.Name, InitialStatus: status})
	}
	return ws, nil
}

// Save upserts one record per mark keyed by (rollNo, slotID, date). A
// repeat save overwrites status, name, markedBy and markedAt; the slot
// details copied on first insert are left alone. A record carries the
// student's own sub-subgroup, not the one the sheet was opened for. Every
// mark is validated before anything is written.
func (s *Store) Save(ctx context.Context, slotID, ssg, rawDate string, marks []Mark, markedBy string) (SaveResult, error) {
	if len(marks) == 0 {
		return SaveResult{}, apierr.Validation("no attendance records to save")
	}
	date, err := s.date(rawDate)
	if err != nil {
		return SaveResult{}, err
	}
	slot, _, err := s.slotAndGroup(ctx, slotID, ssg)
	if err != nil {
		return SaveResult{}, err
	}

	type pending struct {
		rollNo, name, status string
	}
	batch := make([]pending, 0, len(marks))
	rollNos := make([]string, 0, len(marks))
	for _, m := range marks {
		p := pending{
			rollNo: normalize.Upper(m.RollNo),
			name:   normalize.Name(m.Name),
			status: normalize.Status(m.Status),
		}
		if p.rollNo == "" {
			return SaveResult{}, apierr.Validation("roll number is required")
		}
		if p.status == "" {
			return SaveResult{}, apierr.Validation("invalid status %q for %s; use Present or Absent", m.Status, p.rollNo)
		}
		batch = append(batch, p)
		rollNos = append(rollNos, p.rollNo)
	}

	found, err := s.students.ListByRollNos(ctx, rollNos)
	if err != nil {
		return SaveResult{}, err
	}
	known := make(map[string]models.Student, len(found))
	for _, st := range found {
		known[st.RollNo] = st
	}

	res := SaveResult{Date: date, Skipped: []string{}}
	now := time.Now().UTC()
	if markedBy = normalize.Name(markedBy); markedBy == "" {
		markedBy = "admin"
	}

	writes := make([]mongo.WriteModel, 0, len(batch))
	for _, p := range batch {
		st, ok := known[p.rollNo]
		if !ok {
			res.Skipped = append(res.Skipped, p.rollNo)
			continue
		}
		name := p.name
		if name == "" {
			name = st.Name
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"roll_no": p.rollNo, "slot_id": slot.ID, "date": date}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"status":    p.status,
					"name":      name,
					"marked_by": markedBy,
					"marked_at": now,
				},
				"$setOnInsert": bson.M{
					"_id":          uuid.NewString(),
					"sub_subgroup": st.SubSubgroup,
					"course":       slot.Course,
					"lab":          slot.Lab,
					"day":          slot.Day,
					"time":         slot.Time,
				},
			}).
			SetUpsert(true))
	}

	if len(writes) == 0 {
		return res, nil
	}
	out, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return SaveResult{}, err
	}
	res.Inserted = out.UpsertedCount
	res.Updated = out.MatchedCount
	return res, nil
}

// ListByRollNo returns a student's records, newest date first.
func (s *Store) ListByRollNo(ctx context.Context, rollNo string) ([]models.AttendanceRecord, error) {
	return s.find(ctx, bson.M{"roll_no": normalize.Upper(rollNo)}, bson.D{
		{Key: "date", Value: -1},
		{Key: "marked_at", Value: -1},
	})
}

// Export returns the records matching f ordered by date, slot and roll
// number.
func (s *Store) Export(ctx context.Context, f ExportFilter) ([]models.AttendanceRecord, error) {
	filter := bson.M{}
	if id := normalize.Name(f.SlotID); id != "" {
		filter["slot_id"] = id
	}
	if ssg := normalize.Upper(f.SubSubgroup); ssg != "" {
		filter["sub_subgroup"] = ssg
	}

	dates := bson.M{}
	for op, raw := range map[string]string{"$gte": f.StartDate, "$lte": f.EndDate} {
		if normalize.Name(raw) == "" {
			continue
		}
		d, err := s.date(raw)
		if err != nil {
			return nil, err
		}
		dates[op] = d
	}
	if len(dates) > 0 {
		filter["date"] = dates
	}

	return s.find(ctx, filter, bson.D{
		{Key: "date", Value: 1},
		{Key: "slot_id", Value: 1},
		{Key: "roll_no", Value: 1},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.AttendanceRecord, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AttendanceRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
