// internal/domain/models/labslot.go
package models

import (
	"time"
)

// LabSlot is a scheduled lab session bound to one group and a non-empty
// subset of that group's sub-subgroups.
//
// GroupName and SubSubgroups are plain string references; they are
// validated when the slot is written and are not kept in sync afterwards.
// SubSubgroupsCI carries the upper-cased form used for lookups from the
// student side (students store their sub-subgroup upper-cased).
type LabSlot struct {
	ID             string   `bson:"_id" json:"id"`
	Course         string   `bson:"course" json:"course"`
	Lab            string   `bson:"lab" json:"lab"`
	Day            string   `bson:"day" json:"day"`
	Time           string   `bson:"time" json:"time"`
	GroupName      string   `bson:"group_name" json:"groupName"`
	SubSubgroups   []string `bson:"sub_subgroups" json:"subSubgroups"`
	SubSubgroupsCI []string `bson:"sub_subgroups_ci" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Display renders the slot the way the attendance picker lists it.
func (s LabSlot) Display() string {
	return s.Course + " - " + s.Lab + " (" + s.Day + ", " + s.Time + ")"
}
