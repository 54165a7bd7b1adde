package server

import (
	"encoding/json"
	"io"
	"net/http"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

// maxBody bounds request bodies; prompts may carry a base64 sketch.
const maxBody = 16 << 20

type errorBody struct {
	Error struct {
		Code    errs.Code `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeParse, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeMapNotFound:
		return http.StatusNotFound
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeGeneration, errs.ErrCodeNetwork:
		return http.StatusBadGateway
	case errs.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.opts.Logger.Warn("write response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	var body errorBody
	body.Error.Code = errs.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errs.ErrCodeInternal
	}
	body.Error.Message = errs.UserMessage(err)
	s.respondJSON(w, status, body)
}

// decode reads a JSON request body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
