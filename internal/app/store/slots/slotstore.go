// internal/app/store/slots/slotstore.go
package slotstore

import (
	"context"
	"errors"
	"time"

	groupstore "github.com/dalemusser/labportal/internal/app/store/groups"
	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"github.com/dalemusser/labportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSlotNotFound = apierr.NotFound("slot not found")

// Input is the caller-supplied part of a slot.
type Input struct {
	Course       string
	Lab          string
	Day          string
	Time         string
	GroupName    string
	SubSubgroups []string
}

type Store struct {
	c      *mongo.Collection
	groups *groupstore.Store
	policy timeslots.Policy
}

// New binds the store to the time-slot policy used to validate Time.
func New(db *mongo.Database, policy timeslots.Policy) *Store {
	return &Store{
		c:      db.Collection("lab_slots"),
		groups: groupstore.New(db),
		policy: policy,
	}
}

func (s *Store) Get(ctx context.Context, id string) (models.LabSlot, error) {
	var slot models.LabSlot
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LabSlot{}, ErrSlotNotFound
		}
		return models.LabSlot{}, err
	}
	return slot, nil
}

func (s *Store) Create(ctx context.Context, in Input) (models.LabSlot, error) {
	slot, err := s.prepare(ctx, "", in)
	if err != nil {
		return models.LabSlot{}, err
	}

	now := time.Now().UTC()
	slot.ID = uuid.NewString()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, slot); err != nil {
		if wafflemongo.IsDup(err) {
			return models.LabSlot{}, duplicateSlot(slot)
		}
		return models.LabSlot{}, err
	}
	return slot, nil
}

// Update replaces every editable field of the slot. The (lab, day, time)
// uniqueness check ignores the slot being edited.
func (s *Store) Update(ctx context.Context, id string, in Input) (models.LabSlot, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.LabSlot{}, err
	}

	slot, err := s.prepare(ctx, id, in)
	if err != nil {
		return models.LabSlot{}, err
	}
	slot.ID = id
	slot.CreatedAt = existing.CreatedAt
	slot.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, slot)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.LabSlot{}, duplicateSlot(slot)
		}
		return models.LabSlot{}, err
	}
	if res.MatchedCount == 0 {
		return models.LabSlot{}, ErrSlotNotFound
	}
	return slot, nil
}

// Delete removes the slot and returns it. Attendance recorded against the
// slot keeps its own copy of the slot details.
func (s *Store) Delete(ctx context.Context, id string) (models.LabSlot, error) {
	var slot models.LabSlot
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LabSlot{}, ErrSlotNotFound
		}
		return models.LabSlot{}, err
	}
	return slot, nil
}

// List returns all slots in creation order.
func (s *Store) List(ctx context.Context) ([]models.LabSlot, error) {
	return s.find(ctx, bson.M{})
}

// ListBySubSubgroup returns the slots that include ssg, ignoring case.
func (s *Store) ListBySubSubgroup(ctx context.Context, ssg string) ([]models.LabSlot, error) {
	return s.find(ctx, bson.M{"sub_subgroups_ci": normalize.Upper(ssg)})
}

// CountByGroup counts slots bound to groupName.
func (s *Store) CountByGroup(ctx context.Context, groupName string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_name": normalize.Upper(groupName)})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.LabSlot, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LabSlot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// prepare normalizes and validates in. All checks run before any write.
func (s *Store) prepare(ctx context.Context, exceptID string, in Input) (models.LabSlot, error) {
	slot := models.LabSlot{
		Course:    normalize.Upper(in.Course),
		Lab:       normalize.Upper(in.Lab),
		Day:       normalize.Day(in.Day),
		Time:      normalize.Name(in.Time),
		GroupName: normalize.Upper(in.GroupName),
	}

	switch {
	case slot.Course == "":
		return slot, apierr.Validation("course is required")
	case slot.Lab == "":
		return slot, apierr.Validation("lab is required")
	case slot.Day == "":
		return slot, apierr.Validation("day must be a weekday (Monday to Friday)")
	case !s.policy.Contains(slot.Time):
		return slot, apierr.Validation("time must be one of the configured time slots")
	case slot.GroupName == "":
		return slot, apierr.Validation("group is required")
	case len(in.SubSubgroups) == 0:
		return slot, apierr.Validation("select at least one sub-subgroup")
	}

	g, err := s.groups.GetByName(ctx, slot.GroupName)
	if err != nil {
		if errors.Is(err, groupstore.ErrGroupNotFound) {
			return slot, apierr.Validation("group %s does not exist", slot.GroupName)
		}
		return slot, err
	}

	canonical := make(map[string]string, len(g.SubSubgroups))
	for _, id := range g.SubSubgroups {
		canonical[normalize.Upper(id)] = id
	}
	seen := map[string]bool{}
	for _, raw := range in.SubSubgroups {
		key := normalize.Upper(raw)
		id, ok := canonical[key]
		if !ok {
			return slot, apierr.Validation("sub-subgroup %q does not belong to group %s", normalize.Name(raw), g.Name)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		slot.SubSubgroups = append(slot.SubSubgroups, id)
		slot.SubSubgroupsCI = append(slot.SubSubgroupsCI, key)
	}

	filter := bson.M{"lab": slot.Lab, "day": slot.Day, "time": slot.Time}
	if exceptID != "" {
		filter["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return slot, err
	}
	if n > 0 {
		return slot, duplicateSlot(slot)
	}

	return slot, nil
}

func duplicateSlot(slot models.LabSlot) error {
	return apierr.Conflict("a slot already exists for %s on %s at %s", slot.Lab, slot.Day, slot.Time)
}
