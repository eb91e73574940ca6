// Package respond writes JSON responses and maps store errors to the
// {"message": "..."} error body the front end displays verbatim.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// messageBody is the shape of every error (and plain acknowledgement) body.
type messageBody struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, messageBody{Message: msg})
}

// Error maps err to a status and message. Classified errors are reported
// verbatim; backend connectivity failures become 503; anything else is
// logged and reported as 500 without details.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	err = classify(err)
	status := apierr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	Message(w, status, apierr.Message(err))
}

// DecodeJSON decodes the request body into dst. A malformed body is a
// validation error.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apierr.Validation("invalid JSON body")
	}
	return nil
}

// classify turns unclassified Mongo connectivity failures into transport errors.
func classify(err error) error {
	if apierr.KindOf(err) != 0 {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return apierr.Transport(err, "database unavailable")
	}
	return err
}
