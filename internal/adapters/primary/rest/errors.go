package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jupiterclapton/journal/internal/core/domain"
)

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	kind   string
}

var errorTable = []errorMapping{
	{domain.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDiaryNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrCategoryNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{domain.ErrSelfRequest, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.ErrAlreadyFriends, http.StatusConflict, "CONFLICT"},
	{domain.ErrDuplicateRequest, http.StatusConflict, "CONFLICT"},
	{domain.ErrCategoryExists, http.StatusConflict, "CONFLICT"},
	{domain.ErrNotFriends, http.StatusConflict, "CONFLICT"},
}

// writeError traduit une erreur du domaine en réponse HTTP. Le reste est une
// erreur d'infrastructure : 500, message générique, détail dans les logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = fe.Field() + ": failed " + fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Type:    "VALIDATION_ERROR",
			Message: "invalid parameters",
			Details: details,
		}})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			writeProblem(w, m.status, m.kind, err.Error())
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeProblem(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func writeProblem(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Type: kind, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
