package studentstore_test

import (
	"errors"
	"strings"
	"testing"

	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/csvutil"
	"github.com/dalemusser/labportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var g1 = []string{"G1-a", "G1-b", "G1-c", "G1-d", "G1-e", "G1-f"}

func TestStore_BulkImport_DuplicateInFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	csv := "Roll No,Name,Sub-subgroup\nR1,Alice,G1-a\nR1,Bob,G1-a\n"
	res, err := store.BulkImport(ctx, strings.NewReader(csv), g1)
	if err != nil {
		t.Fatalf("BulkImport failed: %v", err)
	}

	if len(res.Imported) != 1 {
		t.Fatalf("imported %d, want 1", len(res.Imported))
	}
	st := res.Imported[0]
	if st.RollNo != "R1" || st.Name != "Alice" || st.SubSubgroup != "G1-A" {
		t.Errorf("imported = %+v", st)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Row != "R1,Bob,G1-a" || res.Skipped[0].Reason != csvutil.ReasonDuplicate {
		t.Errorf("skipped = %+v", res.Skipped)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil || got.Name != "Alice" {
		t.Errorf("Get(r1) = %+v, %v", got, err)
	}
}

func TestStore_BulkImport_PartialCommit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateStudent(ctx, "R9", "Existing", "G1-a")

	csv := strings.Join([]string{
		"Name,Roll No,Sub-subgroup",
		"Ann,R1,g1-b",
		"Ben,R2",
		"Cal,R3,G7-a",
		"Old,r9,G1-a",
		"Dee,R4,G1-c",
	}, "\n")
	res, err := store.BulkImport(ctx, strings.NewReader(csv), g1)
	if err != nil {
		t.Fatalf("BulkImport failed: %v", err)
	}

	if len(res.Imported) != 2 {
		t.Errorf("imported %d, want 2 (%+v)", len(res.Imported), res.Imported)
	}
	wantReasons := []string{csvutil.ReasonMalformed, csvutil.ReasonInvalidSubSubgroup, csvutil.ReasonDuplicate}
	if len(res.Skipped) != len(wantReasons) {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	for i, want := range wantReasons {
		if res.Skipped[i].Reason != want {
			t.Errorf("skipped[%d].Reason = %q, want %q", i, res.Skipped[i].Reason, want)
		}
	}

	all, _ := store.List(ctx)
	if len(all) != 3 {
		t.Errorf("store has %d students, want 3", len(all))
	}
	if all[0].RollNo != "R1" || all[2].RollNo != "R9" {
		t.Errorf("List should be ordered by roll number: %+v", all)
	}
}

func TestStore_BulkImport_BadHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.BulkImport(ctx, strings.NewReader("Roll,Name,Group\nR1,Ann,G1-a"), g1)
	if !apierr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	all, _ := store.List(ctx)
	if len(all) != 0 {
		t.Errorf("bad header must not import anything; have %d", len(all))
	}
}

func TestStore_BulkImport_NoValidSubSubgroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.BulkImport(ctx, strings.NewReader("Roll No,Name,Sub-subgroup\nR1,Ann,G1-a"), nil)
	if err != nil {
		t.Fatalf("BulkImport failed: %v", err)
	}
	if len(res.Imported) != 0 || len(res.Skipped) != 1 || res.Skipped[0].Reason != csvutil.ReasonInvalidSubSubgroup {
		t.Errorf("res = %+v", res)
	}
}

func TestStore_Delete_CascadesAttendance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "G1")
	slot := fixtures.CreateSlot(ctx, "CS101", "LAB1", "Monday", "09:00 - 10:00", "G1", "G1-a")
	r1 := fixtures.CreateStudent(ctx, "R1", "Ann", "G1-a")
	r2 := fixtures.CreateStudent(ctx, "R2", "Ben", "G1-a")
	fixtures.CreateAttendance(ctx, r1, slot, "2024-05-06", "Present")
	fixtures.CreateAttendance(ctx, r1, slot, "2024-05-13", "Absent")
	fixtures.CreateAttendance(ctx, r2, slot, "2024-05-06", "Present")

	removed, err := store.Delete(ctx, "r1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d attendance records, want 2", removed)
	}

	if _, err := store.Get(ctx, "R1"); !errors.Is(err, studentstore.ErrStudentNotFound) {
		t.Errorf("Get after delete: err = %v", err)
	}
	left, _ := db.Collection("attendance").CountDocuments(ctx, bson.M{"roll_no": "R1"})
	if left != 0 {
		t.Errorf("%d attendance records for R1 remain", left)
	}
	others, _ := db.Collection("attendance").CountDocuments(ctx, bson.M{"roll_no": "R2"})
	if others != 1 {
		t.Errorf("R2 attendance = %d, want 1", others)
	}

	if _, err := store.Delete(ctx, "R1"); !apierr.IsNotFound(err) {
		t.Errorf("second Delete: err = %v, want not found", err)
	}
}

func TestStore_Lookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := studentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateStudent(ctx, "R2", "Ben", "G1-a")
	fixtures.CreateStudent(ctx, "R1", "Ann", "G1-a")
	fixtures.CreateStudent(ctx, "R3", "Cal", "G1-b")
	fixtures.CreateStudent(ctx, "R4", "Dee", "G2-a")

	inA, err := store.ListBySubSubgroup(ctx, "g1-a")
	if err != nil {
		t.Fatalf("ListBySubSubgroup failed: %v", err)
	}
	if len(inA) != 2 || inA[0].RollNo != "R1" {
		t.Errorf("ListBySubSubgroup(g1-a) = %+v", inA)
	}

	n, err := store.CountBySubSubgroups(ctx, g1)
	if err != nil || n != 3 {
		t.Errorf("CountBySubSubgroups(G1) = %d, %v; want 3", n, err)
	}

	existing, err := store.ExistingRollNos(ctx, []string{"R1", "R5"})
	if err != nil || !existing["R1"] || existing["R5"] {
		t.Errorf("ExistingRollNos = %v, %v", existing, err)
	}
}
