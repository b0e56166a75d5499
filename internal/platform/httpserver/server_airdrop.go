package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	airdroperrors "karat/contexts/distribution/airdrop-service/domain/errors"
	airdrophttp "karat/contexts/distribution/airdrop-service/transport/http"
	"karat/internal/shared/safemath"
)

func (s *Server) registerAirdropRoutes() {
	s.mux.HandleFunc("POST /api/airdrop/v1/runs", s.handleAirdropRun)
	s.mux.HandleFunc("GET /api/airdrop/v1/runs", s.handleAirdropListRuns)
	s.mux.HandleFunc("GET /api/airdrop/v1/runs/{run_id}", s.handleAirdropGetRun)
	s.mux.HandleFunc("POST /api/airdrop/v1/flags/exchanger", s.handleAirdropSetExchanger)
	s.mux.HandleFunc("POST /api/airdrop/v1/flags/destination", s.handleAirdropSetDestination)
	s.mux.HandleFunc("POST /api/airdrop/v1/flags/treasury-box", s.handleAirdropSetTreasuryBox)
	s.mux.HandleFunc("GET /api/airdrop/v1/accounts/{account}/flags", s.handleAirdropFlags)
}

func (s *Server) handleAirdropRun(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req airdrophttp.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.RunHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}
	resp, err := s.airdrop.Handler.ListRunsHandler(r.Context(), limit)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropGetRun(w http.ResponseWriter, r *http.Request) {
	resp, err := s.airdrop.Handler.GetRunHandler(r.Context(), r.PathValue("run_id"))
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropSetExchanger(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req airdrophttp.SetExchangerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.SetExchangerHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropSetDestination(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req airdrophttp.SetDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.SetDestinationHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropSetTreasuryBox(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req airdrophttp.SetTreasuryBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.SetTreasuryBoxHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropFlags(w http.ResponseWriter, r *http.Request) {
	resp, err := s.airdrop.Handler.FlagsHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAirdropDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, airdroperrors.ErrInvalidAccount):
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, airdroperrors.ErrAccessDenied):
		writeAirdropError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, airdroperrors.ErrEmptyPool):
		writeAirdropError(w, http.StatusConflict, "empty_pool", err.Error())
	case errors.Is(err, airdroperrors.ErrInsufficientFunding):
		writeAirdropError(w, http.StatusConflict, "insufficient_funding", err.Error())
	case errors.Is(err, airdroperrors.ErrRunNotFound):
		writeAirdropError(w, http.StatusNotFound, "run_not_found", err.Error())
	case errors.Is(err, safemath.ErrOverflow),
		errors.Is(err, safemath.ErrUnderflow),
		errors.Is(err, safemath.ErrDivisionByZero):
		writeAirdropError(w, http.StatusUnprocessableEntity, "arithmetic_error", err.Error())
	default:
		writeAirdropError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAirdropError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, airdrophttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
