package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/BilyiPJATK/librarystore/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRequestBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(logMsgEncodingResponseFailed, logAttrError, err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: malformed request body: %s", catalog.ErrValidation, err.Error())
	}

	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id parameter", catalog.ErrValidation)
	}

	return id, nil
}

// writeError maps the error taxonomy onto HTTP status codes. Callers
// never see driver details; those stay in the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	response := errorResponse{Error: err.Error()}

	var validationErr *catalog.ValidationError
	if errors.As(err, &validationErr) {
		response.Fields = validationErr.Fields
	}

	var status int

	switch {
	case errors.Is(err, catalog.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		response.Error = "the request took too long to complete"
	default:
		status = http.StatusInternalServerError
		response.Error = "the server encountered a problem and could not process the request"

		s.logger.Error(logMsgRequestFailed,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrRequestID, requestIDFrom(r.Context()),
			logAttrError, err.Error())
	}

	s.writeJSON(w, status, response)
}
