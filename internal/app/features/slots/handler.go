// internal/app/features/slots/handler.go
package slots

import (
	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves lab slot CRUD.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger

	slots *slotstore.Store
}

// NewHandler binds the handler to the active time-slot policy; a slot's
// time must be one of the policy's labels.
func NewHandler(db *mongo.Database, policy timeslots.Policy, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		slots:    slotstore.New(db, policy),
	}
}
