package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blaisecz/sleep-ai/internal/api/middleware"
	"github.com/blaisecz/sleep-ai/internal/api/validation"
	"github.com/blaisecz/sleep-ai/pkg/problem"
	"github.com/google/uuid"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the problem response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem.PayloadTooLarge("Request body too large").Write(w)
			return false
		}
		problem.BadRequest("Invalid JSON body").Write(w)
		return false
	}
	if fieldErrors := validation.Validate(dst); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		problem.Unauthorized("No token provided").Write(w)
	}
	return userID, ok
}

// parseIntQuery returns 0 when the parameter is absent.
func parseIntQuery(r *http.Request, name string) (int, *problem.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &problem.FieldError{Field: name, Message: "must be a positive integer"}
	}
	return v, nil
}
