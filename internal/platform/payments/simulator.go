package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Simulator stands in for the PSP while the external integration is
// finalized. Intents, refunds, and transfers succeed deterministically and
// are recorded so callers and tests can inspect what was charged.
type Simulator struct {
	mu        sync.Mutex
	seq       int
	intents   map[string]intentRecord
	refunded  map[string]bool
	incapable map[string]bool
	logger    *slog.Logger
}

type intentRecord struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

func NewSimulator(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		intents:   make(map[string]intentRecord),
		refunded:  make(map[string]bool),
		incapable: make(map[string]bool),
		logger:    logger,
	}
}

func (s *Simulator) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	if amount <= 0 {
		return "", errors.New("payment amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ref := fmt.Sprintf("pi_sim_%06d", s.seq)
	s.intents[ref] = intentRecord{Amount: amount, Currency: currency, Metadata: metadata}

	s.logger.Info("payment intent created",
		"event", "psp_intent_created",
		"module", "internal/platform/payments",
		"layer", "platform",
		"payment_ref", ref,
		"amount", amount,
		"currency", currency,
	)
	return ref, nil
}

func (s *Simulator) Refund(_ context.Context, paymentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.intents[paymentRef]; !ok {
		return fmt.Errorf("unknown payment reference %q", paymentRef)
	}
	if s.refunded[paymentRef] {
		return nil
	}
	s.refunded[paymentRef] = true

	s.logger.Info("payment refunded",
		"event", "psp_refunded",
		"module", "internal/platform/payments",
		"layer", "platform",
		"payment_ref", paymentRef,
	)
	return nil
}

func (s *Simulator) AccountPayoutCapable(_ context.Context, sellerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.incapable[sellerID], nil
}

func (s *Simulator) Transfer(_ context.Context, sellerID string, amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", errors.New("transfer amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incapable[sellerID] {
		return "", fmt.Errorf("account %q is not payout capable", sellerID)
	}
	s.seq++
	transferID := fmt.Sprintf("tr_sim_%06d", s.seq)

	s.logger.Info("payout transfer sent",
		"event", "psp_transfer_sent",
		"module", "internal/platform/payments",
		"layer", "platform",
		"transfer_id", transferID,
		"seller_id", sellerID,
		"amount", amount,
		"currency", currency,
	)
	return transferID, nil
}

// SetPayoutCapable toggles a seller's payout eligibility. Used by wiring
// and tests to model unonboarded accounts.
func (s *Simulator) SetPayoutCapable(sellerID string, capable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if capable {
		delete(s.incapable, sellerID)
	} else {
		s.incapable[sellerID] = true
	}
}

// Refunded reports whether a payment reference was refunded.
func (s *Simulator) Refunded(paymentRef string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refunded[paymentRef]
}
