// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateGroupName = apierr.Conflict("a group with this name already exists")
	ErrGroupNotFound      = apierr.NotFound("group not found")
	ErrNameRequired       = apierr.Validation("group name is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// GetByName looks a group up by name, ignoring case.
func (s *Store) GetByName(ctx context.Context, name string) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(normalize.Upper(name))}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// Create upper-cases name and derives the six sub-subgroups.
func (s *Store) Create(ctx context.Context, name string) (models.Group, error) {
	name = normalize.Upper(name)
	if name == "" {
		return models.Group{}, ErrNameRequired
	}

	taken, err := s.nameTaken(ctx, name, "")
	if err != nil {
		return models.Group{}, err
	}
	if taken {
		return models.Group{}, ErrDuplicateGroupName
	}

	now := time.Now().UTC()
	g := models.Group{
		ID:           uuid.NewString(),
		Name:         name,
		NameCI:       text.Fold(name),
		SubSubgroups: models.DeriveSubSubgroups(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// Update renames a group and regenerates all six sub-subgroups. Slots and
// students that referenced the old identifiers are left as they are.
func (s *Store) Update(ctx context.Context, id, name string) (models.Group, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}

	name = normalize.Upper(name)
	if name == "" {
		return models.Group{}, ErrNameRequired
	}

	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return models.Group{}, err
	}
	if taken {
		return models.Group{}, ErrDuplicateGroupName
	}

	g.Name = name
	g.NameCI = text.Fold(name)
	g.SubSubgroups = models.DeriveSubSubgroups(name)
	g.UpdatedAt = time.Now().UTC()

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":          g.Name,
		"name_ci":       g.NameCI,
		"sub_subgroups": g.SubSubgroups,
		"updated_at":    g.UpdatedAt,
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	if res.MatchedCount == 0 {
		return models.Group{}, ErrGroupNotFound
	}
	return g, nil
}

// Delete removes the group record only and returns it.
func (s *Store) Delete(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// List returns all groups in creation order.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubSubgroupsOf returns the group's derived sub-subgroups, or an empty
// slice if no group has that name.
func (s *Store) SubSubgroupsOf(ctx context.Context, name string) ([]string, error) {
	g, err := s.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return g.SubSubgroups, nil
}

// AllSubSubgroups returns every sub-subgroup of every current group.
func (s *Store) AllSubSubgroups(ctx context.Context) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"sub_subgroups": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []string{}
	for cur.Next(ctx) {
		var doc struct {
			SubSubgroups []string `bson:"sub_subgroups"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.SubSubgroups...)
	}
	return out, cur.Err()
}

func (s *Store) nameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	filter := bson.M{"name_ci": text.Fold(name)}
	if exceptID != "" {
		filter["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
