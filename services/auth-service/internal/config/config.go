package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// AuthServiceConfig holds the auth service configuration parsed from
// environment variables.
type AuthServiceConfig struct {
	Env      string `env:"ENV"       envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8081"`

	Mongo MongoConfig
	Token TokenConfig
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"bookplatform"`
}

// TokenConfig holds the signing secrets and validity windows for the token
// pair. Both secrets are required in every environment; there is no
// built-in default to fall back to.
type TokenConfig struct {
	Issuer                string        `env:"TOKEN_ISSUER"             envDefault:"book-platform-api"`
	AccessTokenSecret     string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret    string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"168h"`
}

// NewAuthServiceConfig parses and validates the configuration, terminating
// the process on any error so a misconfigured service never starts.
func NewAuthServiceConfig(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate auth service configuration")
	}

	return &cfg
}

// validate checks the invariants that env parsing alone cannot enforce.
func (c *AuthServiceConfig) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}
	if c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.Token.AccessTokenExpiresIn <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRES_IN must be positive")
	}
	if c.Token.RefreshTokenExpiresIn <= c.Token.AccessTokenExpiresIn {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRES_IN must be longer than ACCESS_TOKEN_EXPIRES_IN")
	}

	return nil
}
