package workers

import (
	"context"
	"log/slog"
	"time"

	application "bazaar/contexts/marketplace/offer-engine/application"
	"bazaar/contexts/marketplace/offer-engine/ports"
)

// OfferExpirer sweeps open offers that crossed expires_at. Reads already
// treat such offers as expired; the sweep persists that state and frees
// the open slot for the (buyer, listing) pair.
type OfferExpirer struct {
	Offers ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (e OfferExpirer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(e.Logger)
	now := time.Now().UTC()
	if e.Clock != nil {
		now = e.Clock.Now().UTC()
	}

	expired, err := e.Offers.ExpireOpenOffers(ctx, now)
	if err != nil {
		logger.Error("offer expiry sweep failed",
			"event", "offer_expiry_failed",
			"module", "marketplace/offer-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if expired > 0 {
		logger.Info("offer expiry sweep completed",
			"event", "offer_expiry_completed",
			"module", "marketplace/offer-engine",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
