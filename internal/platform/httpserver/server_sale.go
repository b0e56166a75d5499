package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	saleerrors "karat/contexts/distribution/sale-window-service/domain/errors"
	salehttp "karat/contexts/distribution/sale-window-service/transport/http"
	"karat/internal/shared/safemath"
)

func (s *Server) registerSaleRoutes() {
	s.mux.HandleFunc("POST /api/sale/v1/purchases", s.handleSalePurchase)
	s.mux.HandleFunc("POST /api/sale/v1/cap-increase", s.handleSaleIncreaseCap)
	s.mux.HandleFunc("GET /api/sale/v1/status", s.handleSaleStatus)
	s.mux.HandleFunc("GET /api/sale/v1/sales", s.handleSaleList)
	s.mux.HandleFunc("GET /api/sale/v1/sales/{sale_id}", s.handleSaleGet)
}

func (s *Server) handleSalePurchase(w http.ResponseWriter, r *http.Request) {
	var req salehttp.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSaleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if req.Buyer == "" {
		req.Buyer = r.Header.Get("X-Account-Id")
	}
	resp, err := s.sale.Handler.PurchaseHandler(r.Context(), req)
	if err != nil {
		writeSaleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaleIncreaseCap(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req salehttp.IncreaseHardCapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSaleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sale.Handler.IncreaseHardCapHandler(r.Context(), caller, req)
	if err != nil {
		writeSaleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.sale.Handler.StatusHandler(r.Context())
	if err != nil {
		writeSaleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaleList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeSaleError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}
	resp, err := s.sale.Handler.ListSalesHandler(r.Context(), limit)
	if err != nil {
		writeSaleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.sale.Handler.GetSaleHandler(r.Context(), r.PathValue("sale_id"))
	if err != nil {
		writeSaleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSaleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, saleerrors.ErrInvalidAccount):
		writeSaleError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, saleerrors.ErrAccessDenied):
		writeSaleError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, saleerrors.ErrNotWhitelisted):
		writeSaleError(w, http.StatusForbidden, "not_whitelisted", err.Error())
	case errors.Is(err, saleerrors.ErrOutOfRange):
		writeSaleError(w, http.StatusUnprocessableEntity, "out_of_range", err.Error())
	case errors.Is(err, saleerrors.ErrCapExceeded):
		writeSaleError(w, http.StatusConflict, "cap_exceeded", err.Error())
	case errors.Is(err, saleerrors.ErrZeroRate):
		writeSaleError(w, http.StatusBadGateway, "zero_rate", err.Error())
	case errors.Is(err, saleerrors.ErrPaymentForwardFailed):
		writeSaleError(w, http.StatusBadGateway, "payment_forward_failed", err.Error())
	case errors.Is(err, saleerrors.ErrSaleNotFound):
		writeSaleError(w, http.StatusNotFound, "sale_not_found", err.Error())
	case errors.Is(err, safemath.ErrOverflow),
		errors.Is(err, safemath.ErrUnderflow),
		errors.Is(err, safemath.ErrDivisionByZero):
		writeSaleError(w, http.StatusUnprocessableEntity, "arithmetic_error", err.Error())
	default:
		writeSaleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSaleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, salehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
