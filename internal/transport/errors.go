package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/planner"
)

var (
	errBadRequest = errors.New("bad request")
	errEmptyBody  = fmt.Errorf("%w: empty body", errBadRequest)
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// Result holds changes that were stored before the failure.
	Result any `json:"result,omitempty"`
}

type errMapping struct {
	err    error
	status int
	code   string
}

// errStatus maps domain errors to HTTP responses. First match wins.
var errStatus = []errMapping{
	{project.ErrProjectNotFound, http.StatusNotFound, "project_not_found"},
	{cycle.ErrCycleNotFound, http.StatusNotFound, "cycle_not_found"},
	{retainer.ErrRetainerNotFound, http.StatusNotFound, "retainer_not_found"},
	{team.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{cycle.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{cycle.ErrCycleExists, http.StatusConflict, "cycle_exists"},
	{cycle.ErrHistoryNotRecorded, http.StatusInternalServerError, "history_not_recorded"},
	{project.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{cycle.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{retainer.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{team.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{planner.ErrNotApplicable, http.StatusBadRequest, "not_applicable"},
	{planner.ErrModelUnavailable, http.StatusServiceUnavailable, "model_unavailable"},
	{errBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
}

// StatusFor returns the HTTP status and error code for err.
func StatusFor(err error) (int, string) {
	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeErrorCode(w, status, code, err.Error())
}

// writePartial reports a lost history event together with the stored change.
// Other errors go through writeError.
func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, err error, result any) {
	if !errors.Is(err, cycle.ErrHistoryNotRecorded) {
		s.writeError(w, r, err)
		return
	}
	status, code := StatusFor(err)
	if s.logger != nil {
		s.logger.Error("request partially applied", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: err.Error(), Result: result})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
func decodeOptionalJSON(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}
