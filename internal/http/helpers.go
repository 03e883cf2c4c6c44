package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"moodflow/internal/core"
	applog "moodflow/internal/log"
)

// inputError is a malformed request that never reached the domain layer.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func invalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func isValidation(err error) bool {
	var ie *inputError
	return errors.As(err, &ie) || core.IsValidation(err)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := http.StatusInternalServerError, "Internal server error"
	switch {
	case isValidation(err):
		status, detail = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, core.ErrInvalidMonth):
		status, detail = http.StatusBadRequest, core.ErrInvalidMonth.Error()
	case errors.Is(err, core.ErrNotFound):
		status, detail = http.StatusNotFound, "Not found"
	case errors.Is(err, core.ErrStoreUnavailable):
		status, detail = http.StatusServiceUnavailable, "Storage temporarily unavailable"
	}

	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldPath, r.URL.Path)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldStatusCode, status)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "Rate limit exceeded. Please try again later."})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return invalidInput("request body too large")
		}
		// Domain errors raised by custom unmarshalers keep their identity.
		if core.IsValidation(err) {
			return err
		}
		return invalidInput("invalid JSON body: %v", err)
	}
	if dec.More() {
		return invalidInput("request body must contain a single JSON object")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidInput("%s must be an integer", name)
	}
	return n, nil
}

// queryDate parses a YYYY-MM-DD query parameter. ok is false when absent.
func queryDate(r *http.Request, name string) (d core.Date, ok bool, err error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, false, nil
	}
	d, err = core.ParseDate(v)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("%s: %w", name, err)
	}
	return d, true, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, invalidInput("mood id must be an integer")
	}
	return id, nil
}
