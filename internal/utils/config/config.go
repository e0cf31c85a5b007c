package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/shieldtip/shieldtip-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Wallet      WalletConfig
	Swap        SwapConfig
	Shielded    ShieldedConfig
	Oracle      OracleConfig
	Reconcile   ReconcileConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type WalletConfig struct {
	BridgeURL      string
	ConnectTimeout time.Duration
	ApproveTimeout time.Duration
}

type SwapConfig struct {
	APIURL         string
	TargetAsset    string
	QuoteTimeout   time.Duration
	ExecuteTimeout time.Duration
}

type ShieldedConfig struct {
	APIURL         string
	SubmitTimeout  time.Duration
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	RequiredDepth  int
}

type OracleConfig struct {
	PriceFeedURL      string
	ReferenceCurrency string
	SettlementToken   string
	CacheTTL          time.Duration
}

type ReconcileConfig struct {
	Period       string
	PendingGrace time.Duration
	AbandonAfter time.Duration
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// will not override env variables that already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarWithDefault("API_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Wallet: WalletConfig{
			BridgeURL:      os.Getenv("WALLET_BRIDGE_URL"),
			ConnectTimeout: envVarDuration("WALLET_CONNECT_TIMEOUT", 30*time.Second),
			ApproveTimeout: envVarDuration("WALLET_APPROVE_TIMEOUT", 2*time.Minute),
		},
		Swap: SwapConfig{
			APIURL:         os.Getenv("SWAP_API_URL"),
			TargetAsset:    envVarWithDefault("SWAP_TARGET_ASSET", "ZEC"),
			QuoteTimeout:   envVarDuration("SWAP_QUOTE_TIMEOUT", 15*time.Second),
			ExecuteTimeout: envVarDuration("SWAP_EXECUTE_TIMEOUT", 3*time.Minute),
		},
		Shielded: ShieldedConfig{
			APIURL:         os.Getenv("SHIELDED_API_URL"),
			SubmitTimeout:  envVarDuration("SHIELDED_SUBMIT_TIMEOUT", 1*time.Minute),
			ConfirmTimeout: envVarDuration("SHIELDED_CONFIRM_TIMEOUT", 10*time.Minute),
			PollInterval:   envVarDuration("SHIELDED_POLL_INTERVAL", 5*time.Second),
			RequiredDepth:  envVarIntWithDefault("SHIELDED_REQUIRED_DEPTH", 1),
		},
		Oracle: OracleConfig{
			PriceFeedURL:      os.Getenv("ORACLE_PRICE_FEED_URL"),
			ReferenceCurrency: envVarWithDefault("ORACLE_REFERENCE_CURRENCY", "USD"),
			SettlementToken:   envVarWithDefault("ORACLE_SETTLEMENT_TOKEN", "ZEC"),
			CacheTTL:          envVarDuration("ORACLE_CACHE_TTL", 1*time.Minute),
		},
		Reconcile: ReconcileConfig{
			Period:       envVarWithDefault("RECONCILE_PERIOD", "@every 2m"),
			PendingGrace: envVarDuration("RECONCILE_PENDING_GRACE", 10*time.Minute),
			AbandonAfter: envVarDuration("RECONCILE_ABANDON_AFTER", 24*time.Hour),
		},
	}
}

func envVarWithDefault(envName, defaultValue string) string {
	value := os.Getenv(envName)
	if value == "" {
		return defaultValue
	}

	return value
}

func envVarIntWithDefault(envName string, defaultValue int) int {
	valueStr := os.Getenv(envName)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func envVarDuration(envName string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
