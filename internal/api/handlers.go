package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	msgUnknownRole  = "Unknown role key. Use /roles for options."
	msgFetchTimeout = "Job source timed out. Try again shortly."
	msgFetchFailed  = "Job source request failed."
	msgInternal     = "Internal server error."
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.search.Roles())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if err := s.schema.Validate(doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid search request: "+describeValidation(err))
		return
	}

	var req model.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid search request.")
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("search request failed", "role", req.Role, "status", status, "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorStatus maps search errors to an HTTP status and client message.
func errorStatus(err error) (int, string) {
	var roleErr *model.UnknownRoleError
	if errors.As(err, &roleErr) {
		return http.StatusBadRequest, msgUnknownRole
	}
	var fetchErr *model.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Timeout() {
			return http.StatusGatewayTimeout, msgFetchTimeout
		}
		return http.StatusBadGateway, msgFetchFailed
	}
	return http.StatusInternalServerError, msgInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
