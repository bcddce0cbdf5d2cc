package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment overrides are named RESTO_<SECTION>_<FIELD>, e.g. RESTO_DATABASE_HOST
// or RESTO_ORDERS_TAX_RATE.
const EnvPrefix = "RESTO"

type Config struct {
	App      AppConfig      `yaml:"app" envconfig:"APP"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq" envconfig:"RABBITMQ"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Orders   OrdersConfig   `yaml:"orders" envconfig:"ORDERS"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
}

type AppConfig struct {
	Port     int    `yaml:"port"`
	Store    string `yaml:"store"`
	Timezone string `yaml:"timezone"`
	LogLevel string `yaml:"log_level" split_words:"true"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns" split_words:"true"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type RedisConfig struct {
	Addr                  string `yaml:"addr"`
	Password              string `yaml:"password"`
	DB                    int    `yaml:"db"`
	IdempotencyTTLSeconds int    `yaml:"idempotency_ttl_seconds" split_words:"true"`
}

type OrdersConfig struct {
	TaxRate          string `yaml:"tax_rate" split_words:"true"`
	DeliveryFeeCents int64  `yaml:"delivery_fee_cents" split_words:"true"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name" split_words:"true"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:     3000,
			Store:    "postgres",
			Timezone: "UTC",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "restaurant",
			Password: "restaurant",
			Database: "restaurant",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			IdempotencyTTLSeconds: 86400,
		},
		Orders: OrdersConfig{
			TaxRate: "0",
		},
		Tracing: TracingConfig{
			ServiceName: "restaurant",
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// RESTO_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Store != "postgres" && c.App.Store != "memory" {
		return fmt.Errorf("app.store must be postgres or memory, got %q", c.App.Store)
	}
	if _, err := c.App.Location(); err != nil {
		return err
	}
	rate, err := c.Orders.TaxRateDecimal()
	if err != nil {
		return err
	}
	if rate.IsNegative() {
		return fmt.Errorf("orders.tax_rate must not be negative")
	}
	if c.Orders.DeliveryFeeCents < 0 {
		return fmt.Errorf("orders.delivery_fee_cents must not be negative")
	}
	return nil
}

func (o OrdersConfig) TaxRateDecimal() (decimal.Decimal, error) {
	if o.TaxRate == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(o.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid orders.tax_rate %q: %w", o.TaxRate, err)
	}
	return rate, nil
}

// Location is the zone used to decide which reservations are still ahead.
func (a AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Database)
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", r.User, r.Password, r.Host, r.Port, r.VHost)
}

func (r RabbitMQConfig) Enabled() bool {
	return r.Host != ""
}
