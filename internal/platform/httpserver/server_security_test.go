package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	airdropservice "karat/contexts/distribution/airdrop-service"
	salewindowservice "karat/contexts/distribution/sale-window-service"
	salememory "karat/contexts/distribution/sale-window-service/adapters/memory"
	saleentities "karat/contexts/distribution/sale-window-service/domain/entities"
	vestingservice "karat/contexts/distribution/vesting-service"
	vestingentities "karat/contexts/distribution/vesting-service/domain/entities"
	accesscontrol "karat/contexts/identity-access/access-control"
	tokenledger "karat/contexts/ledger-core/token-ledger"
	ledgerhttp "karat/contexts/ledger-core/token-ledger/transport/http"
)

const (
	testOwner = "root"
	testBuyer = "alice"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	access := accesscontrol.NewInMemoryModule(nil, testOwner)
	ledger, err := tokenledger.NewInMemoryModule(nil, access.Service, testOwner, 1_000_000)
	if err != nil {
		t.Fatalf("build ledger: %v", err)
	}

	airdrop := airdropservice.NewInMemoryModule(nil, ledger.Service, access.Service, testOwner, 10)

	sale := salewindowservice.NewInMemoryModule(
		nil,
		saleentities.WindowState{
			HardCap:   10_000,
			Remaining: 10_000,
			StartTime: time.Now().Add(-time.Hour),
			StopTime:  time.Now().Add(24 * time.Hour),
			MinTx:     10,
			MaxTx:     1_000,
		},
		ledger.Service,
		access.Service,
		salememory.NewRateSource(2),
		access.Service,
		testOwner,
		"sale-window",
		"company-wallet",
		1,
	)

	vesting := vestingservice.NewInMemoryModule(
		nil,
		vestingentities.GrantPool{Remaining: 100_000, MinTx: 100},
		ledger.Service,
		airdrop.Service,
		access.Service,
		testOwner,
		"vesting-orchestrator",
		time.Now().Add(180*24*time.Hour),
		time.Now().Add(365*24*time.Hour),
	)

	ctx := context.Background()
	if err := ledger.Service.Approve(ctx, testOwner, "sale-window", 10_000); err != nil {
		t.Fatalf("seed sale allowance: %v", err)
	}
	if err := ledger.Service.Approve(ctx, testOwner, "vesting-orchestrator", 100_000); err != nil {
		t.Fatalf("seed vesting allowance: %v", err)
	}

	return New(ledger, access, airdrop, sale, vesting, nil, "")
}

func TestTransferRequiresAccountHeader(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/v1/transfers", bytes.NewReader([]byte(`{"to":"alice","value":100}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransferMovesBalanceBetweenAccounts(t *testing.T) {
	server := newTestServer(t)

	transferReq := httptest.NewRequest(http.MethodPost, "/api/ledger/v1/transfers", bytes.NewReader([]byte(`{"to":"alice","value":100}`)))
	transferReq.Header.Set("Content-Type", "application/json")
	transferReq.Header.Set("X-Account-Id", testOwner)
	transferRR := httptest.NewRecorder()
	server.mux.ServeHTTP(transferRR, transferReq)
	if transferRR.Code != http.StatusOK {
		t.Fatalf("expected 200 transfer, got %d body=%s", transferRR.Code, transferRR.Body.String())
	}

	balanceReq := httptest.NewRequest(http.MethodGet, "/api/ledger/v1/accounts/alice/balance", nil)
	balanceRR := httptest.NewRecorder()
	server.mux.ServeHTTP(balanceRR, balanceReq)
	if balanceRR.Code != http.StatusOK {
		t.Fatalf("expected 200 balance, got %d body=%s", balanceRR.Code, balanceRR.Body.String())
	}

	var resp ledgerhttp.BalanceResponse
	if err := json.NewDecoder(balanceRR.Body).Decode(&resp); err != nil {
		t.Fatalf("decode balance response: %v", err)
	}
	if resp.Data.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", resp.Data.Balance)
	}
}

func TestMintRejectsNonOwner(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/v1/mint", bytes.NewReader([]byte(`{"to":"mallory","value":1}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account-Id", "mallory")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSalePurchaseRequiresWhitelist(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sale/v1/purchases", bytes.NewReader([]byte(`{"payment_value":50}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account-Id", testBuyer)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without whitelist, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSalePurchaseDeliversTokensToWhitelistedBuyer(t *testing.T) {
	server := newTestServer(t)

	whitelistReq := httptest.NewRequest(http.MethodPost, "/api/access/v1/whitelist/add", bytes.NewReader([]byte(`{"account":"alice"}`)))
	whitelistReq.Header.Set("Content-Type", "application/json")
	whitelistReq.Header.Set("X-Account-Id", testOwner)
	whitelistRR := httptest.NewRecorder()
	server.mux.ServeHTTP(whitelistRR, whitelistReq)
	if whitelistRR.Code != http.StatusOK {
		t.Fatalf("expected 200 whitelist add, got %d body=%s", whitelistRR.Code, whitelistRR.Body.String())
	}

	purchaseReq := httptest.NewRequest(http.MethodPost, "/api/sale/v1/purchases", bytes.NewReader([]byte(`{"payment_value":50}`)))
	purchaseReq.Header.Set("Content-Type", "application/json")
	purchaseReq.Header.Set("X-Account-Id", testBuyer)
	purchaseRR := httptest.NewRecorder()
	server.mux.ServeHTTP(purchaseRR, purchaseReq)
	if purchaseRR.Code != http.StatusOK {
		t.Fatalf("expected 200 purchase, got %d body=%s", purchaseRR.Code, purchaseRR.Body.String())
	}

	balanceReq := httptest.NewRequest(http.MethodGet, "/api/ledger/v1/accounts/alice/balance", nil)
	balanceRR := httptest.NewRecorder()
	server.mux.ServeHTTP(balanceRR, balanceReq)

	var resp ledgerhttp.BalanceResponse
	if err := json.NewDecoder(balanceRR.Body).Decode(&resp); err != nil {
		t.Fatalf("decode balance response: %v", err)
	}
	if resp.Data.Balance != 100 {
		t.Fatalf("expected 100 tokens delivered at rate 2, got %d", resp.Data.Balance)
	}
}

func TestVestingClaimUnknownBox(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/vesting/v1/boxes/missing/claim", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAirdropRunRequiresAuthorization(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/airdrop/v1/runs", bytes.NewReader([]byte(`{"pool_amount":100}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account-Id", "mallory")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}
