package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	sellerledger "bazaar/contexts/finance-core/seller-ledger"
	ledgerpg "bazaar/contexts/finance-core/seller-ledger/adapters/postgres"
	ledgerworkers "bazaar/contexts/finance-core/seller-ledger/application/workers"
	accessguard "bazaar/contexts/identity-access/access-guard"
	guardpg "bazaar/contexts/identity-access/access-guard/adapters/postgres"
	authcontext "bazaar/contexts/identity-access/auth-context"
	escroworder "bazaar/contexts/marketplace/escrow-order"
	orderpg "bazaar/contexts/marketplace/escrow-order/adapters/postgres"
	orderworkers "bazaar/contexts/marketplace/escrow-order/application/workers"
	listingregistry "bazaar/contexts/marketplace/listing-registry"
	listingpg "bazaar/contexts/marketplace/listing-registry/adapters/postgres"
	offerengine "bazaar/contexts/marketplace/offer-engine"
	offerpg "bazaar/contexts/marketplace/offer-engine/adapters/postgres"
	offercommands "bazaar/contexts/marketplace/offer-engine/application/commands"
	offerworkers "bazaar/contexts/marketplace/offer-engine/application/workers"
	"bazaar/internal/platform/config"
	"bazaar/internal/platform/db"
	"bazaar/internal/platform/httpserver"
	"bazaar/internal/platform/messaging"
	"bazaar/internal/platform/payments"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	cfg      config.Config
	logger   *slog.Logger

	offerExpirer   offerworkers.OfferExpirer
	autoAcceptor   orderworkers.AutoAcceptor
	paymentSweeper orderworkers.PaymentTimeoutSweeper
	outboxRelay    orderworkers.OutboxRelay
	maturator      ledgerworkers.ClearanceMaturator
	payouts        ledgerworkers.PayoutProcessor

	pollInterval time.Duration
}

type modules struct {
	auth     authcontext.Module
	guard    accessguard.Module
	listings listingregistry.Module
	offers   offerengine.Module
	orders   escroworder.Module
	ledger   sellerledger.Module
}

func buildModules(cfg config.Config, pg *db.Postgres, bus *messaging.Bus, logger *slog.Logger) (modules, error) {
	if err := pg.Migrate(allModels()...); err != nil {
		return modules{}, err
	}

	listingRepo := listingpg.NewRepository(pg.DB, logger)
	offerRepo := offerpg.NewRepository(pg.DB, logger)
	orderRepo := orderpg.NewRepository(pg.DB, logger)
	ledgerRepo := ledgerpg.NewRepository(pg.DB, logger)
	guardRepo := guardpg.NewRepository(pg.DB, logger)

	psp := payments.NewSimulator(logger)
	notifier := logNotifier{logger: logger}

	listingModule := listingregistry.NewModule(listingregistry.Dependencies{
		Repository: listingRepo,
		Clock:      listingpg.SystemClock{},
		IDGen:      listingpg.UUIDGenerator{},
		Logger:     logger,
	})

	ledgerModule := sellerledger.NewModule(sellerledger.Dependencies{
		Repository:         ledgerRepo,
		Gateway:            psp,
		Clock:              ledgerpg.SystemClock{},
		IDGen:              ledgerpg.UUIDGenerator{},
		FeeBps:             cfg.PlatformFeeBPS,
		MinWithdrawalMinor: cfg.MinWithdrawalMinor,
		ClearanceDelay:     cfg.ClearanceDelay,
		Logger:             logger,
	})

	// The offer lapser only needs the offer store, which breaks the cycle
	// between the offer and escrow modules.
	lapse := offercommands.LapseOfferUseCase{
		Offers:   offerRepo,
		Notifier: notifier,
		Clock:    offerpg.SystemClock{},
		Logger:   logger,
	}

	orderModule := escroworder.NewModule(escroworder.Dependencies{
		Repository:       orderRepo,
		Outbox:           orderRepo,
		Listings:         orderListingSource{listings: listingRepo, clock: listingpg.SystemClock{}},
		Payments:         psp,
		Ledger:           ledgerModule.Service,
		Offers:           offerLapser{lapse: lapse},
		Publisher:        bus,
		Clock:            orderpg.SystemClock{},
		IDGen:            orderpg.UUIDGenerator{},
		PaymentTimeout:   cfg.PaymentTimeout,
		AutoAcceptWindow: cfg.AutoAcceptWindow,
		Logger:           logger,
	})

	offerModule := offerengine.NewModule(offerengine.Dependencies{
		Repository:        offerRepo,
		Listings:          offerListingSource{listings: listingRepo},
		Orders:            orderFactory{create: orderModule.CreateOrder},
		Notifier:          notifier,
		Clock:             offerpg.SystemClock{},
		IDGen:             offerpg.UUIDGenerator{},
		OfferTTL:          cfg.OfferTTL,
		CeilingMultiplier: cfg.OfferCeilingMultiplier,
		Logger:            logger,
	})

	authModule := authcontext.NewModule(authcontext.Dependencies{
		Secret:   cfg.AuthJWTSecret,
		Issuer:   cfg.AuthJWTIssuer,
		Audience: cfg.AuthJWTAudience,
		Logger:   logger,
	})

	guardModule := accessguard.NewModule(accessguard.Dependencies{
		Identities: guardRepo,
		Resources: ownerResolver{
			listings: listingRepo,
			offers:   offerRepo,
			orders:   orderRepo,
		},
		Logger: logger,
	})

	return modules{
		auth:     authModule,
		guard:    guardModule,
		listings: listingModule,
		offers:   offerModule,
		orders:   orderModule,
		ledger:   ledgerModule,
	}, nil
}

func allModels() []any {
	var models []any
	models = append(models, listingpg.Models()...)
	models = append(models, offerpg.Models()...)
	models = append(models, orderpg.Models()...)
	models = append(models, ledgerpg.Models()...)
	models = append(models, guardpg.Models()...)
	return models
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.AuthJWTSecret) == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(
		mods.auth,
		mods.guard,
		mods.listings,
		mods.offers,
		mods.orders,
		mods.ledger,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	mods, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres:       pg,
		cfg:            cfg,
		logger:         logger,
		offerExpirer:   mods.offers.OfferExpirer,
		autoAcceptor:   mods.orders.AutoAcceptor,
		paymentSweeper: mods.orders.PaymentSweeper,
		outboxRelay:    mods.orders.OutboxRelay,
		maturator:      mods.ledger.ClearanceMaturator,
		payouts:        mods.ledger.PayoutProcessor,
		pollInterval:   2 * time.Second,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.runCycle(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) runCycle(ctx context.Context) error {
	if w.cfg.EnableOfferExpirySweep {
		if err := w.offerExpirer.RunOnce(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnablePaymentTimeoutSweep {
		if err := w.paymentSweeper.RunOnce(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnableAutoAccept {
		if err := w.autoAcceptor.RunOnce(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnableClearanceMaturation {
		if err := w.maturator.RunOnce(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnablePayoutProcessor {
		if err := w.payouts.RunOnce(ctx); err != nil {
			return err
		}
	}
	if w.cfg.EnableOutboxRelay {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
