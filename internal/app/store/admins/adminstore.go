// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// ErrInvalidCredentials covers both an unknown username and a wrong
// password so callers cannot tell them apart.
var ErrInvalidCredentials = apierr.Unauthorized("invalid username or password")

type Store struct {
	c    *mongo.Collection
	cost int
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admin_users"), cost: BcryptCost}
}

// WithCost returns a copy of the store that hashes with cost. Tests use
// bcrypt.MinCost to stay fast.
func (s *Store) WithCost(cost int) *Store {
	cp := *s
	cp.cost = cost
	return &cp
}

// EnsureAdmin creates the admin account if it does not exist yet. An
// existing account is left untouched, including its password. created is
// true only when a new account was written.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	if username == "" || password == "" {
		return false, apierr.Validation("admin username and password are required")
	}

	n, err := s.c.CountDocuments(ctx, bson.M{"username_ci": text.Fold(username)})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	u := models.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			// Another instance seeded it first.
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Verify checks a username/password pair and returns the account.
func (s *Store) Verify(ctx context.Context, username, password string) (models.AdminUser, error) {
	var u models.AdminUser
	err := s.c.FindOne(ctx, bson.M{"username_ci": text.Fold(username)}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AdminUser{}, ErrInvalidCredentials
		}
		return models.AdminUser{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.AdminUser{}, ErrInvalidCredentials
	}
	return u, nil
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": now}})
	return err
}
