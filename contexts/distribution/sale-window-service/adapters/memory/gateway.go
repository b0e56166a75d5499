package memory

import (
	"context"
	"sync"

	domainerrors "karat/contexts/distribution/sale-window-service/domain/errors"
	"karat/contexts/distribution/sale-window-service/ports"
)

// Gateway is an in-process payment transport. Collected value sits in
// escrow until it is forwarded to the beneficiary or refunded to the
// payer.
type Gateway struct {
	mu sync.Mutex

	escrow    uint64
	forwarded map[string]uint64
	refunded  map[string]uint64

	// ForwardErr, when set, makes every Forward call fail.
	ForwardErr error
}

func NewGateway() *Gateway {
	return &Gateway{
		forwarded: make(map[string]uint64),
		refunded:  make(map[string]uint64),
	}
}

func (g *Gateway) Collect(_ context.Context, payer string, value uint64) error {
	if payer == "" {
		return domainerrors.ErrInvalidAccount
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.escrow += value
	return nil
}

func (g *Gateway) Forward(_ context.Context, beneficiary string, value uint64) error {
	if beneficiary == "" {
		return domainerrors.ErrInvalidAccount
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ForwardErr != nil {
		return g.ForwardErr
	}
	if value > g.escrow {
		return domainerrors.ErrPaymentForwardFailed
	}
	g.escrow -= value
	g.forwarded[beneficiary] += value
	return nil
}

func (g *Gateway) Refund(_ context.Context, payer string, value uint64) error {
	if payer == "" {
		return domainerrors.ErrInvalidAccount
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if value > g.escrow {
		return domainerrors.ErrPaymentForwardFailed
	}
	g.escrow -= value
	g.refunded[payer] += value
	return nil
}

func (g *Gateway) Escrow() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.escrow
}

func (g *Gateway) ForwardedTo(beneficiary string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.forwarded[beneficiary]
}

func (g *Gateway) RefundedTo(payer string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunded[payer]
}

var _ ports.PaymentGateway = (*Gateway)(nil)

// RateSource serves a mutable fixed rate. The zero rate is legal here;
// the application guards against it per purchase.
type RateSource struct {
	mu   sync.RWMutex
	rate uint64
}

func NewRateSource(rate uint64) *RateSource {
	return &RateSource{rate: rate}
}

func (r *RateSource) CurrentRate(_ context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate, nil
}

func (r *RateSource) SetRate(rate uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rate = rate
}

var _ ports.RateSource = (*RateSource)(nil)
