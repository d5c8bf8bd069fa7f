package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// ErrorResponse is the JSON body written for every failed API request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// genericMessage is the only detail a client ever sees for a 5xx failure.
const genericMessage = "An internal error occurred while processing the request. Please try again later."

// Handle logs the error with a message and reports it to Sentry.
// It returns err unchanged so callers can keep propagating it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	log(ctx, msg, err)
	capture(ctx, err)
	return err
}

// HandleHTTP logs the error and writes a JSON error response.
// Full detail always goes to the log; 5xx responses only expose a generic message.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	log(ctx, "HTTP error", err, "status", statusCode)

	resp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: err.Error(),
	}
	if statusCode >= http.StatusInternalServerError {
		capture(ctx, err)
		resp.Message = genericMessage
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.From(ctx).Error("failed to write error response", "error", err.Error())
	}
}

func log(ctx context.Context, msg string, err error, args ...any) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		args = append(args,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		args = append(args, "error", err.Error())
	}
	logger.Error(msg, args...)
}

func capture(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
