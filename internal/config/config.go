package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the API server.
type Config struct {
	Addr               string        `env:"ADDR,default=:9000"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RedisURL           string        `env:"REDIS_URL"`
	SolanaStrictVerify bool          `env:"SOLANA_STRICT_VERIFY,default=false"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
	CookieDomain       string        `env:"COOKIE_DOMAIN"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CLIConfig holds configuration for the wallet CLI.
type CLIConfig struct {
	Home       string `env:"WALLETCTL_HOME"`
	APIURL     string `env:"WALLETCTL_API_URL,default=http://localhost:9000"`
	PrivateKey string `env:"WALLETCTL_PRIVATE_KEY"`
	LogLevel   string `env:"LOG_LEVEL,default=warn"`
}

// LoadCLI returns a CLIConfig populated from environment variables.
func LoadCLI(ctx context.Context) (CLIConfig, error) {
	var cfg CLIConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}
