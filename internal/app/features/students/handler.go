// internal/app/features/students/handler.go
package students

import (
	groupstore "github.com/dalemusser/labportal/internal/app/store/groups"
	studentstore "github.com/dalemusser/labportal/internal/app/store/students"
	"github.com/dalemusser/labportal/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the roster: listing, CSV upload and delete.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger

	groups   *groupstore.Store
	students *studentstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		groups:   groupstore.New(db),
		students: studentstore.New(db, logger),
	}
}
