package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	airdropservice "karat/contexts/distribution/airdrop-service"
	salewindowservice "karat/contexts/distribution/sale-window-service"
	vestingservice "karat/contexts/distribution/vesting-service"
	accesscontrol "karat/contexts/identity-access/access-control"
	tokenledger "karat/contexts/ledger-core/token-ledger"
	ledgererrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	ledgerhttp "karat/contexts/ledger-core/token-ledger/transport/http"
	"karat/internal/shared/safemath"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ledger  tokenledger.Module
	access  accesscontrol.Module
	airdrop airdropservice.Module
	sale    salewindowservice.Module
	vesting vestingservice.Module
}

func New(
	ledger tokenledger.Module,
	access accesscontrol.Module,
	airdrop airdropservice.Module,
	sale salewindowservice.Module,
	vesting vestingservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ledger:  ledger,
		access:  access,
		airdrop: airdrop,
		sale:    sale,
		vesting: vesting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	// TODO: generate the swagger doc.json once the surface settles.
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/ledger/v1/transfers", s.handleTransfer)
	s.mux.HandleFunc("POST /api/ledger/v1/delegated-transfers", s.handleTransferFrom)
	s.mux.HandleFunc("POST /api/ledger/v1/approvals", s.handleApprove)
	s.mux.HandleFunc("POST /api/ledger/v1/approvals/increase", s.handleIncreaseApproval)
	s.mux.HandleFunc("POST /api/ledger/v1/approvals/decrease", s.handleDecreaseApproval)
	s.mux.HandleFunc("POST /api/ledger/v1/mint", s.handleMint)
	s.mux.HandleFunc("POST /api/ledger/v1/burn", s.handleBurn)
	s.mux.HandleFunc("GET /api/ledger/v1/accounts/{account}/balance", s.handleBalance)
	s.mux.HandleFunc("GET /api/ledger/v1/accounts/{owner}/allowances/{spender}", s.handleAllowance)
	s.mux.HandleFunc("GET /api/ledger/v1/supply", s.handleSupply)
	s.mux.HandleFunc("GET /api/ledger/v1/holders", s.handleHolders)

	s.registerAccessRoutes()
	s.registerAirdropRoutes()
	s.registerSaleRoutes()
	s.registerVestingRoutes()
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.TransferHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferFromRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.TransferFromHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.ApproveHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIncreaseApproval(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.AdjustApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.IncreaseApprovalHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecreaseApproval(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.AdjustApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.DecreaseApprovalHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.MintHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.BurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.BurnHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.BalanceHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.AllowanceHandler(r.Context(), r.PathValue("owner"), r.PathValue("spender"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.SupplyHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHolders(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.HoldersHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidAccount),
		errors.Is(err, ledgererrors.ErrInvalidLedgerInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writeLedgerError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientAllowance):
		writeLedgerError(w, http.StatusConflict, "insufficient_allowance", err.Error())
	case errors.Is(err, ledgererrors.ErrAccessDenied):
		writeLedgerError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, ledgererrors.ErrRecordNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, safemath.ErrOverflow),
		errors.Is(err, safemath.ErrUnderflow),
		errors.Is(err, safemath.ErrDivisionByZero):
		writeLedgerError(w, http.StatusUnprocessableEntity, "arithmetic_error", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// requireCaller resolves the acting account from the X-Account-Id
// header.
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Account-Id"))
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return "", false
	}
	return caller, true
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
