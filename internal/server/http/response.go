package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
)

// StatusFromError maps service errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"detail": ...}. Internal errors are logged and
// reported without their cause.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	status := StatusFromError(err)
	msg := common.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "error", err)
		msg = common.ErrorInternal.Error()
	}
	writeJSON(w, status, api.ErrorResponse{Detail: msg})
}
