// internal/domain/models/attendance.go
package models

import (
	"time"
)

// Attendance statuses.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// IsValidStatus reports whether s is one of the two attendance statuses.
func IsValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceRecord is one student's status for one slot on one date.
// Exactly one document exists per (roll_no, slot_id, date).
//
// Name, SubSubgroup and the Course/Lab/Day/Time fields are snapshots taken
// when the record was first inserted (Name is refreshed on every save).
// They can drift from the live student and slot.
type AttendanceRecord struct {
	ID          string `bson:"_id" json:"id"`
	RollNo      string `bson:"roll_no" json:"rollNo"`
	Name        string `bson:"name" json:"name"`
	SubSubgroup string `bson:"sub_subgroup" json:"subSubgroup"`

	SlotID string `bson:"slot_id" json:"slotId"`
	Course string `bson:"course" json:"course"`
	Lab    string `bson:"lab" json:"lab"`
	Day    string `bson:"day" json:"day"`
	Time   string `bson:"time" json:"time"`

	Date     string    `bson:"date" json:"date"` // YYYY-MM-DD
	Status   string    `bson:"status" json:"status"`
	MarkedBy string    `bson:"marked_by" json:"markedBy"`
	MarkedAt time.Time `bson:"marked_at" json:"markedAt"`
}
