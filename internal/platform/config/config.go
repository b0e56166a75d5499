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

	// Ledger seed.
	OwnerAccount  string
	InitialSupply uint64

	// Airdrop distribution.
	AirdropFundingAccount string
	MinHolderBalance      uint64

	// Sale window.
	SaleFundingAccount string
	SaleBeneficiary    string
	SaleStartTime      time.Time
	SaleStopTime       time.Time
	SaleMinTx          uint64
	SaleMaxTx          uint64
	SaleHardCap        uint64
	SaleRate           uint64
	SaleRateUnit       uint64

	// Founder vesting.
	VestingFundingAccount string
	VestingPoolRemaining  uint64
	VestingMinTx          uint64
	VestingMaturity1      time.Time
	VestingMaturity2      time.Time

	EnableLedgerArchiveConsumer bool
	EnableOutboxRelays          bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "karat"
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

	now := time.Now().UTC()

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		OwnerAccount:  envString("OWNER_ACCOUNT", "owner"),
		InitialSupply: envUint("INITIAL_SUPPLY", 12_000_000_000),

		AirdropFundingAccount: envString("AIRDROP_FUNDING_ACCOUNT", "owner"),
		MinHolderBalance:      envUint("MIN_HOLDER_BALANCE", 1),

		SaleFundingAccount: envString("SALE_FUNDING_ACCOUNT", "owner"),
		SaleBeneficiary:    envString("SALE_BENEFICIARY", "owner"),
		SaleStartTime:      envTime("SALE_START_TIME", now),
		SaleStopTime:       envTime("SALE_STOP_TIME", now.Add(30*24*time.Hour)),
		SaleMinTx:          envUint("SALE_MIN_TX", 1),
		SaleMaxTx:          envUint("SALE_MAX_TX", 1_000_000),
		SaleHardCap:        envUint("SALE_HARD_CAP", 1_000_000_000),
		SaleRate:           envUint("SALE_RATE", 1),
		SaleRateUnit:       envUint("SALE_RATE_UNIT", 1),

		VestingFundingAccount: envString("VESTING_FUNDING_ACCOUNT", "owner"),
		VestingPoolRemaining:  envUint("VESTING_POOL_REMAINING", 1_000_000_000),
		VestingMinTx:          envUint("VESTING_MIN_TX", 1),
		VestingMaturity1:      envTime("VESTING_MATURITY_1", now.Add(180*24*time.Hour)),
		VestingMaturity2:      envTime("VESTING_MATURITY_2", now.Add(365*24*time.Hour)),

		EnableLedgerArchiveConsumer: envBool("ENABLE_LEDGER_ARCHIVE_CONSUMER", true),
		EnableOutboxRelays:          envBool("ENABLE_OUTBOX_RELAYS", true),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envUint(name string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envTime(name string, fallback time.Time) time.Time {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fallback
	}
	return value.UTC()
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
