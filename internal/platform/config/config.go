package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	AuthJWTSecret   string
	AuthJWTIssuer   string
	AuthJWTAudience string

	PlatformFeeBPS         int
	MinWithdrawalMinor     int64
	ClearanceDelay         time.Duration
	OfferTTL               time.Duration
	OfferCeilingMultiplier int
	AutoAcceptWindow       time.Duration
	PaymentTimeout         time.Duration
	DefaultMaxRevisions    int

	EnableOfferExpirySweep    bool
	EnableAutoAccept          bool
	EnablePaymentTimeoutSweep bool
	EnableClearanceMaturation bool
	EnablePayoutProcessor     bool
	EnableOutboxRelay         bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "bazaar"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	issuer := os.Getenv("AUTH_JWT_ISSUER")
	if issuer == "" {
		issuer = "bazaar"
	}
	audience := os.Getenv("AUTH_JWT_AUDIENCE")
	if audience == "" {
		audience = "bazaar-api"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		AuthJWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTIssuer:   issuer,
		AuthJWTAudience: audience,

		PlatformFeeBPS:         envInt("PLATFORM_FEE_BPS", 1000),
		MinWithdrawalMinor:     int64(envInt("MIN_WITHDRAWAL_MINOR", 500)),
		ClearanceDelay:         envDuration("CLEARANCE_DELAY", 72*time.Hour),
		OfferTTL:               envDuration("OFFER_TTL", 7*24*time.Hour),
		OfferCeilingMultiplier: envInt("OFFER_CEILING_MULTIPLIER", 3),
		AutoAcceptWindow:       envDuration("AUTO_ACCEPT_WINDOW", 72*time.Hour),
		PaymentTimeout:         envDuration("PAYMENT_TIMEOUT", 24*time.Hour),
		DefaultMaxRevisions:    envInt("DEFAULT_MAX_REVISIONS", 2),

		EnableOfferExpirySweep:    envBool("ENABLE_OFFER_EXPIRY_SWEEP", true),
		EnableAutoAccept:          envBool("ENABLE_AUTO_ACCEPT", true),
		EnablePaymentTimeoutSweep: envBool("ENABLE_PAYMENT_TIMEOUT_SWEEP", true),
		EnableClearanceMaturation: envBool("ENABLE_CLEARANCE_MATURATION", true),
		EnablePayoutProcessor:     envBool("ENABLE_PAYOUT_PROCESSOR", true),
		EnableOutboxRelay:         envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
