// internal/app/features/attendance/handler.go
package attendance

import (
	"time"

	attendancestore "github.com/dalemusser/labportal/internal/app/store/attendance"
	slotstore "github.com/dalemusser/labportal/internal/app/store/slots"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"github.com/dalemusser/labportal/internal/app/system/timeslots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves attendance marking and export.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger

	// MarkedBy is recorded when the caller has no name in context.
	MarkedBy string

	slots  *slotstore.Store
	ledger *attendancestore.Store
}

// NewHandler builds the handler. loc decides what "today" is when a
// request leaves the date empty.
func NewHandler(db *mongo.Database, policy timeslots.Policy, loc *time.Location, markedBy string, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		MarkedBy: markedBy,
		slots:    slotstore.New(db, policy),
		ledger:   attendancestore.New(db, policy, loc, logger),
	}
}
