package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and kind
//  4. statusFor picks the HTTP status from the error's identity
//  5. Technical error is logged with the request ID for correlation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csvsearch/internal/census"
	"github.com/JonMunkholm/csvsearch/internal/core"
	"github.com/JonMunkholm/csvsearch/internal/csv"
	"github.com/JonMunkholm/csvsearch/internal/logging"
	"github.com/JonMunkholm/csvsearch/internal/resource"
	"github.com/JonMunkholm/csvsearch/internal/search"
)

// successResponse wraps every successful payload.
type successResponse struct {
	ResponseType string `json:"response_type"`
	ResponseMap  any    `json:"responseMap"`
}

// errorResponse carries the machine-readable response_type and code plus
// human-readable message and action.
type errorResponse struct {
	ResponseType string `json:"response_type"`
	Message      string `json:"message"`
	Action       string `json:"action,omitempty"`
	Code         string `json:"code"`
}

// respondError logs err and writes the mapped error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userErr := core.NewUserError(err)
	userMsg := userErr.User
	status := statusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"status", status,
		"error", userErr.Technical.Error(),
		"user_message", userErr.Error(),
		"code", userMsg.Code,
		"mapped", core.IsUserFacing(err),
	)

	writeJSON(w, status, errorResponse{
		ResponseType: "error_" + userMsg.Kind,
		Message:      userMsg.Message,
		Action:       userMsg.Action,
		Code:         userMsg.Code,
	})
}

func statusFor(err error) int {
	var (
		factoryErr *csv.FactoryFailure
		colErr     *search.ColumnNotFoundError
		dsErr      *census.DatasourceError
	)

	switch {
	case errors.Is(err, resource.ErrOutsideRoot):
		return http.StatusForbidden
	case errors.Is(err, resource.ErrNotFound),
		errors.Is(err, core.ErrFileNotLoaded),
		errors.Is(err, census.ErrStateNotFound),
		errors.Is(err, census.ErrCountyNotFound),
		errors.As(err, &colErr):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyFiles):
		return http.StatusConflict
	case errors.Is(err, csv.ErrInconsistentColumns), errors.As(err, &factoryErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrMissingParameter),
		errors.Is(err, core.ErrInvalidParameter),
		errors.Is(err, core.ErrUnknownRecordKind),
		errors.Is(err, search.ErrInvalidArgument),
		errors.Is(err, search.ErrNoHeader),
		errors.Is(err, census.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyParses):
		return http.StatusServiceUnavailable
	case errors.As(err, &dsErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondSuccess writes a 200 success envelope around payload.
func respondSuccess(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, successResponse{ResponseType: "success", ResponseMap: payload})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
