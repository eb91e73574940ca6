// internal/domain/models/student.go
package models

import (
	"time"
)

// Student is keyed by roll number. RollNo and SubSubgroup are stored
// upper-cased; Name is stored as imported (trimmed).
type Student struct {
	RollNo      string `bson:"_id" json:"rollNo"`
	Name        string `bson:"name" json:"name"`
	SubSubgroup string `bson:"sub_subgroup" json:"subSubgroup"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
