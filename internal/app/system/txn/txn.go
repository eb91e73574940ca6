// Package txn runs multi-collection writes inside a Mongo transaction when
// the deployment supports it.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes meaning "transactions are not available here".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone server)
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, some DocumentDB setups).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session") || strings.Contains(s, "illegal operation")) {
		return true
	}
	return strings.Contains(s, "session") && strings.Contains(s, "not supported")
}

// Run executes fn inside a transaction. If the server reports that
// transactions are unavailable, fn is run once more without one; the
// writes then happen in sequence with no atomicity across collections.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Info("transactions unavailable; running without one")
		}
		return fn(ctx)
	}
	return err
}
