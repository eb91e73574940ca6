package attendancestore_test

import (
	"testing"
	"time"

	attendancestore "github.com/dalemusser/labportal/internal/app/store/attendance"
	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"github.com/dalemusser/labportal/internal/domain/models"
	"github.com/dalemusser/labportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db    *mongo.Database
	store *attendancestore.Store
	fx    *testutil.Fixtures
	slot  models.LabSlot
}

func setup(t *testing.T) (*env, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()

	fx := testutil.NewFixtures(t, db)
	fx.CreateGroup(ctx, "G1")
	slot := fx.CreateSlot(ctx, "CS101", "LAB1", "Monday", "09:00 - 10:00", "G1", "G1-a", "G1-b")
	fx.CreateStudent(ctx, "R1", "Ann", "G1-a")
	fx.CreateStudent(ctx, "R2", "Ben", "G1-a")
	fx.CreateStudent(ctx, "R3", "Cal", "G1-b")

	return &env{
		db:    db,
		store: attendancestore.New(db, timeslots.Default(), time.UTC, zap.NewNop()),
		fx:    fx,
		slot:  slot,
	}, cancel
}

func TestStore_BuildWorksheet_DefaultsAbsent(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	ws, err := e.store.BuildWorksheet(ctx, e.slot.ID, "g1-a", "2024-05-06")
	if err != nil {
		t.Fatalf("BuildWorksheet failed: %v", err)
	}
	if ws.Date != "2024-05-06" || ws.SubSubgroup != "G1-A" {
		t.Errorf("worksheet header = %s / %s", ws.Date, ws.SubSubgroup)
	}
	if len(ws.Rows) != 2 {
		t.Fatalf("rows = %+v, want R1 and R2", ws.Rows)
	}
	for _, row := range ws.Rows {
		if row.InitialStatus != models.StatusAbsent {
			t.Errorf("%s initial status = %q, want Absent", row.RollNo, row.InitialStatus)
		}
	}
}

func TestStore_Save_IsIdempotentUpsert(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	marks := []attendancestore.Mark{{RollNo: "R1", Name: "Ann", Status: "Present"}}

	first, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "root")
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if first.Inserted != 1 || first.Updated != 0 {
		t.Errorf("first save = %+v", first)
	}

	ws, err := e.store.BuildWorksheet(ctx, e.slot.ID, "G1-a", "2024-05-06")
	if err != nil {
		t.Fatalf("BuildWorksheet failed: %v", err)
	}
	for _, row := range ws.Rows {
		want := models.StatusAbsent
		if row.RollNo == "R1" {
			want = models.StatusPresent
		}
		if row.InitialStatus != want {
			t.Errorf("%s initial status = %q, want %q", row.RollNo, row.InitialStatus, want)
		}
	}

	marks[0].Status = "absent"
	second, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "other")
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if second.Inserted != 0 || second.Updated != 1 {
		t.Errorf("second save = %+v", second)
	}

	n, _ := e.db.Collection("attendance").CountDocuments(ctx, bson.M{"roll_no": "R1", "slot_id": e.slot.ID, "date": "2024-05-06"})
	if n != 1 {
		t.Fatalf("have %d records for the key, want exactly 1", n)
	}

	var rec models.AttendanceRecord
	if err := e.db.Collection("attendance").FindOne(ctx, bson.M{"roll_no": "R1"}).Decode(&rec); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if rec.Status != models.StatusAbsent || rec.MarkedBy != "other" {
		t.Errorf("record = %+v, want overwritten status and markedBy", rec)
	}
	if rec.Course != "CS101" || rec.Lab != "LAB1" || rec.Day != "Monday" || rec.Time != "09:00 - 10:00" || rec.SubSubgroup != "G1-A" {
		t.Errorf("slot snapshot = %+v", rec)
	}

}

func TestStore_Save_SnapshotSurvivesSlotEdit(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	marks := []attendancestore.Mark{{RollNo: "R1", Status: "Present"}}
	if _, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "root"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := e.db.Collection("lab_slots").UpdateByID(ctx, e.slot.ID, bson.M{"$set": bson.M{"lab": "LAB9"}}); err != nil {
		t.Fatalf("edit slot: %v", err)
	}
	if _, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "root"); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	recs, err := e.store.ListByRollNo(ctx, "r1")
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListByRollNo = %+v, %v", recs, err)
	}
	if recs[0].Lab != "LAB1" {
		t.Errorf("lab = %q, want the value copied at first insert", recs[0].Lab)
	}
	if recs[0].Name != "Ann" {
		t.Errorf("name = %q, want student's name when mark has none", recs[0].Name)
	}
}

func TestStore_Save_Validation(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	tests := []struct {
		name   string
		slotID string
		ssg    string
		date   string
		marks  []attendancestore.Mark
		check  func(error) bool
	}{
		{"empty batch", e.slot.ID, "G1-a", "2024-05-06", nil, apierr.IsValidation},
		{"bad status", e.slot.ID, "G1-a", "2024-05-06", []attendancestore.Mark{{RollNo: "R1", Status: "Present"}, {RollNo: "R2", Status: "Late"}}, apierr.IsValidation},
		{"bad date", e.slot.ID, "G1-a", "06/05/2024", []attendancestore.Mark{{RollNo: "R1", Status: "Present"}}, apierr.IsValidation},
		{"sub-subgroup not on slot", e.slot.ID, "G1-c", "2024-05-06", []attendancestore.Mark{{RollNo: "R1", Status: "Present"}}, apierr.IsValidation},
		{"unknown slot", "nope", "G1-a", "2024-05-06", []attendancestore.Mark{{RollNo: "R1", Status: "Present"}}, apierr.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.store.Save(ctx, tt.slotID, tt.ssg, tt.date, tt.marks, "root")
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	n, _ := e.db.Collection("attendance").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("rejected saves wrote %d records", n)
	}
}

func TestStore_Save_SkipsUnknownRollNo(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	res, err := e.store.Save(ctx, e.slot.ID, "G1-a", "", []attendancestore.Mark{
		{RollNo: "R1", Status: "Present"},
		{RollNo: "GHOST", Status: "Present"},
	}, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Inserted != 1 || len(res.Skipped) != 1 || res.Skipped[0] != "GHOST" {
		t.Errorf("result = %+v", res)
	}
	if res.Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("empty date should default to today, got %q", res.Date)
	}
}

func TestStore_BuildWorksheet_Errors(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	if _, err := e.store.BuildWorksheet(ctx, "nope", "G1-a", "2024-05-06"); !apierr.IsNotFound(err) {
		t.Errorf("unknown slot: err = %v", err)
	}
	if _, err := e.store.BuildWorksheet(ctx, e.slot.ID, "", "2024-05-06"); !apierr.IsValidation(err) {
		t.Errorf("empty sub-subgroup: err = %v", err)
	}
}

func TestStore_ListAndExport(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	r1 := models.Student{RollNo: "R1", Name: "Ann", SubSubgroup: "G1-A"}
	r3 := models.Student{RollNo: "R3", Name: "Cal", SubSubgroup: "G1-B"}
	e.fx.CreateAttendance(ctx, r1, e.slot, "2024-05-06", models.StatusPresent)
	e.fx.CreateAttendance(ctx, r1, e.slot, "2024-05-20", models.StatusAbsent)
	e.fx.CreateAttendance(ctx, r1, e.slot, "2024-05-13", models.StatusPresent)
	e.fx.CreateAttendance(ctx, r3, e.slot, "2024-05-13", models.StatusPresent)

	recs, err := e.store.ListByRollNo(ctx, "R1")
	if err != nil {
		t.Fatalf("ListByRollNo failed: %v", err)
	}
	if len(recs) != 3 || recs[0].Date != "2024-05-20" || recs[2].Date != "2024-05-06" {
		t.Errorf("ListByRollNo should be newest first: %+v", recs)
	}

	tests := []struct {
		name   string
		filter attendancestore.ExportFilter
		want   int
	}{
		{"everything", attendancestore.ExportFilter{}, 4},
		{"by slot", attendancestore.ExportFilter{SlotID: e.slot.ID}, 4},
		{"by sub-subgroup", attendancestore.ExportFilter{SubSubgroup: "g1-b"}, 1},
		{"from date", attendancestore.ExportFilter{StartDate: "2024-05-13"}, 3},
		{"date range", attendancestore.ExportFilter{StartDate: "2024-05-07", EndDate: "2024-05-19"}, 2},
		{"no match", attendancestore.ExportFilter{SlotID: "other"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.store.Export(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	if _, err := e.store.Export(ctx, attendancestore.ExportFilter{EndDate: "bad"}); !apierr.IsValidation(err) {
		t.Errorf("bad end date: err = %v", err)
	}
}

func TestStore_BuildWorksheet_ExcludesDeletedStudent(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	marks := []attendancestore.Mark{
		{RollNo: "R1", Status: "Present"},
		{RollNo: "R2", Status: "Present"},
	}
	if _, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "root"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	before, err := e.store.BuildWorksheet(ctx, e.slot.ID, "G1-a", "2024-05-06")
	if err != nil {
		t.Fatalf("BuildWorksheet failed: %v", err)
	}
	if len(before.Rows) != 2 {
		t.Fatalf("rows before delete = %+v", before.Rows)
	}

	if _, err := studentstore.New(e.db, zap.NewNop()).Delete(ctx, "R1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	after, err := e.store.BuildWorksheet(ctx, e.slot.ID, "G1-a", "2024-05-06")
	if err != nil {
		t.Fatalf("BuildWorksheet after delete failed: %v", err)
	}
	if len(after.Rows) != 1 {
		t.Fatalf("rows after delete = %+v, want only R2", after.Rows)
	}
	if after.Rows[0].RollNo != "R2" || after.Rows[0].InitialStatus != models.StatusPresent {
		t.Errorf("remaining row = %+v, want R2 Present", after.Rows[0])
	}
}

func TestStore_Save_RecordsStudentsOwnSubSubgroup(t *testing.T) {
	e, cancel := setup(t)
	defer cancel()
	ctx, c2 := testutil.TestContext()
	defer c2()

	// R3 belongs to G1-b but is marked from the G1-a sheet.
	marks := []attendancestore.Mark{
		{RollNo: "R1", Status: "Present"},
		{RollNo: "R3", Status: "Present"},
	}
	if _, err := e.store.Save(ctx, e.slot.ID, "G1-a", "2024-05-06", marks, "root"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var rec models.AttendanceRecord
	if err := e.db.Collection("attendance").FindOne(ctx, bson.M{"roll_no": "R3"}).Decode(&rec); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if rec.SubSubgroup != "G1-B" {
		t.Errorf("R3 sub-subgroup = %q, want G1-B", rec.SubSubgroup)
	}

	got, err := e.store.Export(ctx, attendancestore.ExportFilter{SubSubgroup: "g1-a"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(got) != 1 || got[0].RollNo != "R1" {
		t.Errorf("export for G1-A = %+v, want only R1", got)
	}
}
