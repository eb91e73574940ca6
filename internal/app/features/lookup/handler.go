// internal/app/features/lookup/handler.go
package lookup

import (
	"time"

	attendancestore "github.com/dalemusser/labportal/internal/app/store/attendance"
	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public student lookup.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	students   *studentstore.Store
	slots      *slotstore.Store
	attendance *attendancestore.Store
}

func NewHandler(db *mongo.Database, policy timeslots.Policy, loc *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		students:   studentstore.New(db, logger),
		slots:      slotstore.New(db, policy),
		attendance: attendancestore.New(db, policy, loc, logger),
	}
}
