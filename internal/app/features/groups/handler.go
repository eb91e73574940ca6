// internal/app/features/groups/handler.go
package groups

import (
	groupstore "github.com/dalemusser/labportal/internal/app/store/groups"
	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// Slot and student stores are only read, to report what a delete leaves
// dangling.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger

	groups   *groupstore.Store
	slots    *slotstore.Store
	students *studentstore.Store
}

// NewHandler constructs a new groups Handler. It is called from the
// bootstrap BuildHandler function.
func NewHandler(db *mongo.Database, policy timeslots.Policy, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		groups:   groupstore.New(db),
		slots:    slotstore.New(db, policy),
		students: studentstore.New(db, logger),
	}
}
