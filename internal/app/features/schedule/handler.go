// internal/app/features/schedule/handler.go
package schedule

import (
	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the unauthenticated schedule views. The policy it holds is
// the same value the slot store validates against, so the labels it lists
// match the stored slot times exactly.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Policy timeslots.Policy

	slots *slotstore.Store
}

func NewHandler(db *mongo.Database, policy timeslots.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Policy: policy,
		slots:  slotstore.New(db, policy),
	}
}
