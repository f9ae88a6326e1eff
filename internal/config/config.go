package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	//App
	Env string `env:"ENV" envDefault:"dev"` // dev / staging / prod
	//HTTP
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"1m"`

	//Auth / Security
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"account-service"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`

	// Policy
	AdminCanCreateAdmin bool `env:"ADMIN_CAN_CREATE_ADMIN" envDefault:"false"`

	// Bootstrap account, created only when the store is empty
	DefaultAdminName     string `env:"DEFAULT_ADMIN_NAME"`
	DefaultAdminEmail    string `env:"DEFAULT_ADMIN_EMAIL"`
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD"`

	// Role migration
	MigrateOnStart    bool          `env:"MIGRATE_ON_START" envDefault:"false"`
	MigrationLeaseTTL time.Duration `env:"MIGRATION_LEASE_TTL" envDefault:"5m"`

	// Infrastructure. Postgres is required; Redis and RabbitMQ are optional
	// and degrade to no lease and no event fan-out.
	DBAddr        string        `env:"DB_ADDR,required,notEmpty"`
	DBDebug       bool          `env:"DB_DEBUG" envDefault:"false"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RabbitURL     string        `env:"RABBIT_URL"`
	RabbitExch    string        `env:"RABBIT_EXCHANGE" envDefault:"admin.events"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be within [4,31], got %d", c.BcryptCost)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.Env == "prod" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in prod")
	}
	return nil
}
