package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"task-manager/internal/service"
)

type errorResponse struct {
	Message string   `json:"message"`
	Tasks   []string `json:"tasks,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeServiceError maps a business failure onto a status code. Gate
// failures keep their offending task titles as structured detail so the
// client can render an actionable message.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		invalidRef  *service.InvalidReferenceError
		depNotFound *service.DependencyNotFoundError
		unmet       *service.UnmetDependenciesError
		dependents  *service.HasDependentsError
	)

	switch {
	case errors.As(err, &unmet):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error(), Tasks: unmet.Titles})
	case errors.As(err, &dependents):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error(), Tasks: dependents.Titles})
	case errors.As(err, &invalidRef),
		errors.As(err, &depNotFound),
		errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrSelfReference),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidRecurrence),
		errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
