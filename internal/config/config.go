package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Jackpot  JackpotConfig
	Solana   SolanaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string
	OwnerWallet    string
	CommissionRate string
}

// JackpotConfig holds the jackpot round engine tuning parameters.
// These are deployment knobs, not constants: a staging deployment can
// run short rounds with a different ticket rate.
type JackpotConfig struct {
	TicketsPerSOL int
	RoundDuration time.Duration
	DrawInterval  time.Duration
}

// SolanaConfig holds Solana RPC settings
type SolanaConfig struct {
	Network     string
	RPCEndpoint string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "bolada"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			OwnerWallet:    getEnv("OWNER_WALLET", ""),
			CommissionRate: getEnv("REFERRAL_COMMISSION_RATE", "0.07"),
		},
		Jackpot: JackpotConfig{
			TicketsPerSOL: getEnvInt("JACKPOT_TICKETS_PER_SOL", 10),
			RoundDuration: getEnvDuration("JACKPOT_ROUND_DURATION", 60*time.Second),
			DrawInterval:  getEnvDuration("JACKPOT_DRAW_INTERVAL", time.Second),
		},
		Solana: SolanaConfig{
			Network:     getEnv("SOLANA_NETWORK", "devnet"),
			RPCEndpoint: getEnv("SOLANA_RPC_ENDPOINT", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.OwnerWallet == "" {
		return nil, fmt.Errorf("OWNER_WALLET is required")
	}

	if config.Jackpot.TicketsPerSOL <= 0 {
		return nil, fmt.Errorf("JACKPOT_TICKETS_PER_SOL must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration gets a duration environment variable with a fallback default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
