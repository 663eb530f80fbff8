package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Printer   PrinterConfig
	Billing   BillingConfig
	Inventory InventoryConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
	// SeedDemoData loads the sample catalog into an empty store on start.
	SeedDemoData bool
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

// RedisConfig enables the barcode price cache when URL is set.
type RedisConfig struct {
	URL             string
	PriceTTLMinutes int
}

type PrinterConfig struct {
	Type    string // usb, network or none
	USBPath string
	Address string
}

type BillingConfig struct {
	BillPrefix       string
	NumberAttempts   int
	AllocationPolicy enum.AllocationPolicy
}

type InventoryConfig struct {
	SkipExpired      bool
	ExpiringSoonDays int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "retailpos")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "retailpos")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PRICE_TTL_MINUTES", 240)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("BILL_PREFIX", "INV")
	v.SetDefault("BILL_NUMBER_ATTEMPTS", 5)
	v.SetDefault("ALLOCATION_POLICY", string(enum.AllocationFEFO))
	v.SetDefault("SKIP_EXPIRED_BATCHES", false)
	v.SetDefault("EXPIRING_SOON_DAYS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load reads .env (if present) and the environment. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	policy, err := enum.ParseAllocationPolicy(v.GetString("ALLOCATION_POLICY"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(v.GetString("STORE_DRIVER")),
			SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			Timezone:     v.GetString("DB_TIMEZONE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			URL:             v.GetString("REDIS_URL"),
			PriceTTLMinutes: v.GetInt("REDIS_PRICE_TTL_MINUTES"),
		},
		Printer: PrinterConfig{
			Type:    strings.ToLower(v.GetString("PRINTER_TYPE")),
			USBPath: v.GetString("PRINTER_USB_PATH"),
			Address: v.GetString("PRINTER_ADDRESS"),
		},
		Billing: BillingConfig{
			BillPrefix:       v.GetString("BILL_PREFIX"),
			NumberAttempts:   v.GetInt("BILL_NUMBER_ATTEMPTS"),
			AllocationPolicy: policy,
		},
		Inventory: InventoryConfig{
			SkipExpired:      v.GetBool("SKIP_EXPIRED_BATCHES"),
			ExpiringSoonDays: v.GetInt("EXPIRING_SOON_DAYS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Printer.Type {
	case "none", "", "usb", "network":
	default:
		return fmt.Errorf("config: unknown PRINTER_TYPE %q", c.Printer.Type)
	}
	if c.Billing.BillPrefix == "" {
		return fmt.Errorf("config: BILL_PREFIX must not be empty")
	}
	if c.Billing.NumberAttempts < 1 {
		return fmt.Errorf("config: BILL_NUMBER_ATTEMPTS must be at least 1")
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Duration < 1 {
		return fmt.Errorf("config: RATE_LIMIT_REQUESTS and RATE_LIMIT_DURATION must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
