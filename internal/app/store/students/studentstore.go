// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/csvutil"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/dalemusser/labportal/internal/app/system/txn"
	"github.com/dalemusser/labportal/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var ErrStudentNotFound = apierr.NotFound("student not found")

type Store struct {
	c          *mongo.Collection
	attendance *mongo.Collection
	client     *mongo.Client
	log        *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		c:          db.Collection("students"),
		attendance: db.Collection("attendance"),
		client:     db.Client(),
		log:        log,
	}
}

// ImportResult reports what a bulk import did. Skipped rows keep file order.
type ImportResult struct {
	Imported []models.Student     `json:"imported"`
	Skipped  []csvutil.SkippedRow `json:"skipped"`
}

// BulkImport reads a roster CSV and inserts every row that passes
// validation against validSubSubgroups. Valid rows are committed even when
// other rows are skipped. A bad header rejects the whole file.
func (s *Store) BulkImport(ctx context.Context, r io.Reader, validSubSubgroups []string) (ImportResult, error) {
	valid := make(map[string]bool, len(validSubSubgroups))
	for _, id := range validSubSubgroups {
		valid[normalize.Upper(id)] = true
	}

	parsed, err := csvutil.ParseRoster(r, csvutil.RosterOptions{
		ValidSubSubgroups: valid,
		Existing: func(rollNos []string) (map[string]bool, error) {
			return s.ExistingRollNos(ctx, rollNos)
		},
	})
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{
		Imported: []models.Student{},
		Skipped:  parsed.Skipped,
	}
	if res.Skipped == nil {
		res.Skipped = []csvutil.SkippedRow{}
	}
	if len(parsed.Rows) == 0 {
		return res, nil
	}

	now := time.Now().UTC()
	docs := make([]any, 0, len(parsed.Rows))
	students := make([]models.Student, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		st := models.Student{
			RollNo:      row.RollNo,
			Name:        row.Name,
			SubSubgroup: row.SubSubgroup,
			CreatedAt:   now,
		}
		students = append(students, st)
		docs = append(docs, st)
	}

	// Unordered so one row that lost a race does not stop the rest.
	_, err = s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	failed := map[int]bool{}
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
			return ImportResult{}, err
		}
		for _, we := range bwe.WriteErrors {
			if we.Code != 11000 {
				return ImportResult{}, err
			}
			failed[we.Index] = true
		}
	}

	for i, st := range students {
		if failed[i] {
			row := parsed.Rows[i]
			res.Skipped = append(res.Skipped, csvutil.SkippedRow{
				Line:   row.Line,
				Row:    row.RollNo + "," + row.Name + "," + row.SubSubgroup,
				Reason: csvutil.ReasonDuplicate,
			})
			continue
		}
		res.Imported = append(res.Imported, st)
	}
	if len(failed) > 0 {
		sort.SliceStable(res.Skipped, func(i, j int) bool { return res.Skipped[i].Line < res.Skipped[j].Line })
		s.log.Info("roster rows lost to concurrent inserts", zap.Int("count", len(failed)))
	}

	return res, nil
}

// ExistingRollNos returns which of rollNos (already upper-cased) are stored.
func (s *Store) ExistingRollNos(ctx context.Context, rollNos []string) (map[string]bool, error) {
	out := map[string]bool{}
	if len(rollNos) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": rollNos}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out[doc.ID] = true
	}
	return out, cur.Err()
}

func (s *Store) Get(ctx context.Context, rollNo string) (models.Student, error) {
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"_id": normalize.Upper(rollNo)}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return st, nil
}

// List returns all students ordered by roll number.
func (s *Store) List(ctx context.Context) ([]models.Student, error) {
	return s.find(ctx, bson.M{})
}

// ListBySubSubgroup returns the students of one sub-subgroup ordered by
// roll number.
func (s *Store) ListBySubSubgroup(ctx context.Context, ssg string) ([]models.Student, error) {
	return s.find(ctx, bson.M{"sub_subgroup": normalize.Upper(ssg)})
}

// ListByRollNos returns the stored students among rollNos.
func (s *Store) ListByRollNos(ctx context.Context, rollNos []string) ([]models.Student, error) {
	if len(rollNos) == 0 {
		return []models.Student{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": rollNos}})
}

// CountBySubSubgroups counts students in any of ids.
func (s *Store) CountBySubSubgroups(ctx context.Context, ids []string) (int64, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, normalize.Upper(id))
	}
	return s.c.CountDocuments(ctx, bson.M{"sub_subgroup": bson.M{"$in": keys}})
}

// Delete removes a student and all of the student's attendance records.
// It returns how many attendance records were removed.
func (s *Store) Delete(ctx context.Context, rollNo string) (int64, error) {
	id := normalize.Upper(rollNo)
	var removed int64

	err := txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrStudentNotFound
		}
		ares, err := s.attendance.DeleteMany(ctx, bson.M{"roll_no": id})
		if err != nil {
			return err
		}
		removed = ares.DeletedCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Student, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
