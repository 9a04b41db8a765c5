package api

import (
	"encoding/json"
	"net/http"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/observability"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func errNotFound(path string) error {
	return apperr.New(apperr.ErrCodeNotFound, "no route for %s", path)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := s.describe(r, err)
	s.writeJSON(w, status, errorBody{Error: detail})
}

// describe reports err to the hooks and the log and returns its status and
// client-facing detail.
func (s *Server) describe(r *http.Request, err error) (int, errorDetail) {
	status := apperr.HTTPStatus(err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	return status, errorDetail{Code: code, Message: apperr.UserMessage(err)}
}
