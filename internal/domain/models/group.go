// internal/domain/models/group.go
package models

import (
	"time"
)

// SubSubgroupSuffixes are appended to a group name to derive its six
// sub-subgroups, in order.
var SubSubgroupSuffixes = []string{"a", "b", "c", "d", "e", "f"}

// Group represents a cohort (class section) that owns a fixed set of
// six derived sub-subgroups.
//
// NOTE:
//   - Name is stored upper-cased; NameCI is the folded key the unique
//     index is built on.
//   - SubSubgroups is always DeriveSubSubgroups(Name). It is regenerated
//     when the group is renamed; slots and students that referenced the
//     old identifiers are not rewritten.
type Group struct {
	ID           string   `bson:"_id" json:"id"`
	Name         string   `bson:"name" json:"name"`
	NameCI       string   `bson:"name_ci" json:"-"`
	SubSubgroups []string `bson:"sub_subgroups" json:"subSubgroups"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DeriveSubSubgroups returns the six sub-subgroup identifiers for a group
// name: {name}-a … {name}-f.
func DeriveSubSubgroups(name string) []string {
	out := make([]string, 0, len(SubSubgroupSuffixes))
	for _, s := range SubSubgroupSuffixes {
		out = append(out, name+"-"+s)
	}
	return out
}
