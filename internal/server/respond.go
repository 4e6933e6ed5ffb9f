package server

import (
	"encoding/json"
	"net/http"

	"github.com/jcolasacco/folio/pkg/errors"
)

// apiError is the JSON body of a failed API request and of a websocket
// error message.
type apiError struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func newAPIError(err error) apiError {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return apiError{Error: code, Message: errors.UserMessage(err)}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		err = errors.Wrap(errors.ErrCodeInternal, err, "internal error")
	}
	s.writeJSON(w, status, newAPIError(err))
}
