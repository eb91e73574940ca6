package slotstore_test

import (
	"errors"
	"reflect"
	"testing"

	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"github.com/dalemusser/labportal/internal/testutil"
)

func validInput() slotstore.Input {
	return slotstore.Input{
		Course:       "cs101",
		Lab:          "lab1",
		Day:          "mon",
		Time:         "09:00 - 10:00",
		GroupName:    "g1",
		SubSubgroups: []string{"g1-a", "G1-b", "G1-a"},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := slotstore.New(db, timeslots.Default())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "G1")

	slot, err := store.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if slot.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if slot.Course != "CS101" || slot.Lab != "LAB1" || slot.Day != "Monday" || slot.GroupName != "G1" {
		t.Errorf("slot = %+v", slot)
	}
	if !reflect.DeepEqual(slot.SubSubgroups, []string{"G1-a", "G1-b"}) {
		t.Errorf("SubSubgroups = %v, want canonical and de-duplicated", slot.SubSubgroups)
	}
	if !reflect.DeepEqual(slot.SubSubgroupsCI, []string{"G1-A", "G1-B"}) {
		t.Errorf("SubSubgroupsCI = %v", slot.SubSubgroupsCI)
	}

	got, err := store.Get(ctx, slot.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Display() != "CS101 - LAB1 (Monday, 09:00 - 10:00)" {
		t.Errorf("Display() = %q", got.Display())
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := slotstore.New(db, timeslots.Default())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "G1")
	fixtures.CreateGroup(ctx, "G2")

	tests := []struct {
		name   string
		modify func(*slotstore.Input)
	}{
		{"empty course", func(in *slotstore.Input) { in.Course = " " }},
		{"empty lab", func(in *slotstore.Input) { in.Lab = "" }},
		{"weekend", func(in *slotstore.Input) { in.Day = "Saturday" }},
		{"time outside policy", func(in *slotstore.Input) { in.Time = "08:00 - 09:00" }},
		{"unknown group", func(in *slotstore.Input) { in.GroupName = "G9" }},
		{"no sub-subgroups", func(in *slotstore.Input) { in.SubSubgroups = nil }},
		{"foreign sub-subgroup", func(in *slotstore.Input) { in.SubSubgroups = []string{"G2-a"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			_, err := store.Create(ctx, in)
			if !apierr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	slots, _ := store.List(ctx)
	if len(slots) != 0 {
		t.Errorf("rejected creates must not write; have %d slots", len(slots))
	}
}

func TestStore_UniqueLabDayTime(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := slotstore.New(db, timeslots.Default())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "G1")

	first, err := store.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Same lab/day/time, different course: conflict.
	dup := validInput()
	dup.Course = "CS999"
	if _, err := store.Create(ctx, dup); !apierr.IsConflict(err) {
		t.Errorf("duplicate create: err = %v, want conflict", err)
	}

	// Another window is fine.
	other := validInput()
	other.Time = "10:00 - 11:00"
	second, err := store.Create(ctx, other)
	if err != nil {
		t.Fatalf("Create second failed: %v", err)
	}

	// Editing the second slot onto the first slot's window is rejected too.
	move := validInput()
	if _, err := store.Update(ctx, second.ID, move); !apierr.IsConflict(err) {
		t.Errorf("update onto taken window: err = %v, want conflict", err)
	}

	// Editing a slot without moving it is not a conflict with itself.
	same := validInput()
	same.Course = "CS102"
	updated, err := store.Update(ctx, first.ID, same)
	if err != nil {
		t.Fatalf("Update in place failed: %v", err)
	}
	if updated.Course != "CS102" || updated.ID != first.ID || !updated.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("updated = %+v", updated)
	}
}

func TestStore_DeleteAndLookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := slotstore.New(db, timeslots.Default())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "G1")
	slot, err := store.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	bySSG, err := store.ListBySubSubgroup(ctx, "g1-b")
	if err != nil || len(bySSG) != 1 {
		t.Errorf("ListBySubSubgroup(g1-b) = %d slots, %v", len(bySSG), err)
	}
	bySSG, _ = store.ListBySubSubgroup(ctx, "G1-c")
	if len(bySSG) != 0 {
		t.Errorf("ListBySubSubgroup(G1-c) = %d slots, want 0", len(bySSG))
	}

	n, err := store.CountByGroup(ctx, "g1")
	if err != nil || n != 1 {
		t.Errorf("CountByGroup = %d, %v", n, err)
	}

	if _, err := store.Delete(ctx, slot.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Delete(ctx, slot.ID); !errors.Is(err, slotstore.ErrSlotNotFound) {
		t.Errorf("second Delete: err = %v", err)
	}
	if _, err := store.Get(ctx, slot.ID); !apierr.IsNotFound(err) {
		t.Errorf("Get after delete: err = %v", err)
	}
	if _, err := store.Update(ctx, slot.ID, validInput()); !apierr.IsNotFound(err) {
		t.Errorf("Update after delete: err = %v", err)
	}
}
