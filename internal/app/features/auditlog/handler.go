// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/labportal/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit log to admins.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	events *audit.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		events: audit.New(db),
	}
}
