package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accesserrors "karat/contexts/identity-access/access-control/domain/errors"
	accesshttp "karat/contexts/identity-access/access-control/transport/http"
)

func (s *Server) registerAccessRoutes() {
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/authorized", s.handleCheckAuthorized)
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/whitelisted", s.handleCheckWhitelisted)
	s.mux.HandleFunc("POST /api/access/v1/authorizations/grant", s.handleGrantAuthorization)
	s.mux.HandleFunc("POST /api/access/v1/authorizations/revoke", s.handleRevokeAuthorization)
	s.mux.HandleFunc("POST /api/access/v1/whitelist/add", s.handleAddToWhitelist)
	s.mux.HandleFunc("POST /api/access/v1/whitelist/remove", s.handleRemoveFromWhitelist)
}

func (s *Server) handleCheckAuthorized(w http.ResponseWriter, r *http.Request) {
	resp, err := s.access.Handler.CheckAuthorizedHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckWhitelisted(w http.ResponseWriter, r *http.Request) {
	resp, err := s.access.Handler.CheckWhitelistedHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantAuthorization(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.GrantAuthorizationHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeAuthorization(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.RevokeAuthorizationHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddToWhitelist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.AddToWhitelistHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveFromWhitelist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.RemoveFromWhitelistHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrInvalidAccount):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accesserrors.ErrAccessDenied):
		writeAccessError(w, http.StatusForbidden, "access_denied", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
