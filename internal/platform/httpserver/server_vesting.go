package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	vestingerrors "karat/contexts/distribution/vesting-service/domain/errors"
	vestinghttp "karat/contexts/distribution/vesting-service/transport/http"
	"karat/internal/shared/safemath"
)

func (s *Server) registerVestingRoutes() {
	s.mux.HandleFunc("POST /api/vesting/v1/boxes/{box_id}/claim", s.handleVestingClaim)
	s.mux.HandleFunc("GET /api/vesting/v1/boxes/{box_id}", s.handleVestingGetBox)
	s.mux.HandleFunc("GET /api/vesting/v1/boxes/{box_id}/availability", s.handleVestingAvailability)
	s.mux.HandleFunc("GET /api/vesting/v1/beneficiaries/{account}/boxes", s.handleVestingListBoxes)
	s.mux.HandleFunc("POST /api/vesting/v1/grants", s.handleVestingGrant)
	s.mux.HandleFunc("GET /api/vesting/v1/grants", s.handleVestingListGrants)
	s.mux.HandleFunc("GET /api/vesting/v1/grants/{grant_id}", s.handleVestingGetGrant)
	s.mux.HandleFunc("POST /api/vesting/v1/founders", s.handleVestingRegisterFounder)
	s.mux.HandleFunc("GET /api/vesting/v1/pool", s.handleVestingPool)
}

// Claiming needs no caller identity. Anyone may trigger a matured box;
// the value always goes to the recorded beneficiary.
func (s *Server) handleVestingClaim(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.ClaimHandler(r.Context(), r.PathValue("box_id"))
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingGetBox(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.GetBoxHandler(r.Context(), r.PathValue("box_id"))
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingAvailability(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.AvailabilityHandler(r.Context(), r.PathValue("box_id"))
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingListBoxes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.ListBoxesHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingGrant(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req vestinghttp.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVestingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.vesting.Handler.GrantHandler(r.Context(), caller, req)
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingListGrants(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeVestingError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}
	resp, err := s.vesting.Handler.ListGrantsHandler(r.Context(), limit)
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingGetGrant(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.GetGrantHandler(r.Context(), r.PathValue("grant_id"))
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingRegisterFounder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req vestinghttp.RegisterFounderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVestingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.vesting.Handler.RegisterFounderHandler(r.Context(), caller, req)
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVestingPool(w http.ResponseWriter, r *http.Request) {
	resp, err := s.vesting.Handler.PoolHandler(r.Context())
	if err != nil {
		writeVestingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVestingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vestingerrors.ErrInvalidAccount):
		writeVestingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, vestingerrors.ErrAccessDenied):
		writeVestingError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, vestingerrors.ErrOutOfRange):
		writeVestingError(w, http.StatusUnprocessableEntity, "out_of_range", err.Error())
	case errors.Is(err, vestingerrors.ErrNotMatured):
		writeVestingError(w, http.StatusConflict, "not_matured", err.Error())
	case errors.Is(err, vestingerrors.ErrNothingToClaim):
		writeVestingError(w, http.StatusConflict, "nothing_to_claim", err.Error())
	case errors.Is(err, vestingerrors.ErrBoxNotFound):
		writeVestingError(w, http.StatusNotFound, "box_not_found", err.Error())
	case errors.Is(err, vestingerrors.ErrGrantNotFound):
		writeVestingError(w, http.StatusNotFound, "grant_not_found", err.Error())
	case errors.Is(err, safemath.ErrOverflow),
		errors.Is(err, safemath.ErrUnderflow),
		errors.Is(err, safemath.ErrDivisionByZero):
		writeVestingError(w, http.StatusUnprocessableEntity, "arithmetic_error", err.Error())
	default:
		writeVestingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVestingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, vestinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
