package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ppiankov/folio/internal/listing"
	"github.com/ppiankov/folio/internal/notion"
)

// Error codes of the JSON error envelope.
const (
	CodeBadRequest        = "bad_request"
	CodeNotFound          = "not_found"
	CodeUpstreamError     = "upstream_error"
	CodeUpstreamMalformed = "upstream_malformed"
	CodeInternal          = "internal"
)

var errBadRequest = errors.New("bad request")

type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error from the listing layer to an HTTP status and code.
func classify(err error) (int, errorDetail) {
	var me *notion.MappingError
	var qe *notion.QueryError
	switch {
	case errors.Is(err, listing.ErrEmptyKeyword), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorDetail{CodeBadRequest, err.Error()}
	case errors.Is(err, notion.ErrNotFound):
		return http.StatusNotFound, errorDetail{CodeNotFound, "article not found"}
	case errors.As(err, &me):
		return http.StatusBadGateway, errorDetail{CodeUpstreamMalformed, "content source returned a malformed record"}
	case errors.As(err, &qe) && qe.Invalid():
		return http.StatusBadRequest, errorDetail{CodeBadRequest, "invalid cursor or query parameter"}
	case errors.As(err, &qe):
		return http.StatusBadGateway, errorDetail{CodeUpstreamError, "content source request failed"}
	default:
		return http.StatusInternalServerError, errorDetail{CodeInternal, "internal error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs err and writes the JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	s.logError(r, status, err)
	writeJSON(w, status, errorEnvelope{Error: detail})
}

func (s *Server) logError(r *http.Request, status int, err error) {
	log := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
		return
	}
	log.Info("request rejected", "status", status, "error", err)
}
