package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Store     StoreConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// JWTConfig enables bearer verification on printer routes when Secret is set.
type JWTConfig struct {
	Secret string
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

type PrinterConfig struct {
	Name          string
	Host          string
	Port          int
	USBPath       string
	USBVendorID   string
	USBProductID  string
	ColumnWidth   int
	Strategies    []string
	RawFormat     string
	CutPaper      bool
	OpenDrawer    bool
	CodePage      string
	LogoPath      string
	QREnabled     bool
	MaxImageWidth int
	PaperWidthMM  float64
	ChromeBin     string

	USBTimeout     time.Duration
	NetworkTimeout time.Duration
	SpoolTimeout   time.Duration
	DialogTimeout  time.Duration

	SpoolCleanupDelay time.Duration
	ListCacheTTL      time.Duration
}

type StoreConfig struct {
	Name     string
	Tagline  string
	Subtitle string
	Footer   string
	Currency string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn(".env file not found, using environment variables", "error", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "posprint")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "posprint")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_LOCK_TTL", "60s")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	viper.SetDefault("THERMAL_PRINTER_NAME", "POS-80")
	viper.SetDefault("THERMAL_PRINTER_HOST", "")
	viper.SetDefault("THERMAL_PRINTER_PORT", 9100)
	viper.SetDefault("PRINTER_USB_PATH", "")
	viper.SetDefault("PRINTER_USB_VENDOR_ID", "")
	viper.SetDefault("PRINTER_USB_PRODUCT_ID", "")
	viper.SetDefault("PRINTER_COLUMN_WIDTH", 48)
	viper.SetDefault("PRINTER_STRATEGIES", "usb,network,spool,dialog")
	viper.SetDefault("PRINTER_RAW_FORMAT", "escpos")
	viper.SetDefault("PRINTER_CUT_PAPER", true)
	viper.SetDefault("PRINTER_OPEN_DRAWER", false)
	viper.SetDefault("PRINTER_CODE_PAGE", "cp437")
	viper.SetDefault("PRINTER_LOGO_PATH", "")
	viper.SetDefault("PRINTER_QR_ENABLED", false)
	viper.SetDefault("PRINTER_MAX_IMAGE_WIDTH", 384)
	viper.SetDefault("PRINTER_PAPER_WIDTH_MM", 80)
	viper.SetDefault("PRINTER_CHROME_BIN", "")
	viper.SetDefault("PRINTER_USB_TIMEOUT", "5s")
	viper.SetDefault("PRINTER_NETWORK_TIMEOUT", "5s")
	viper.SetDefault("PRINTER_SPOOL_TIMEOUT", "15s")
	viper.SetDefault("PRINTER_DIALOG_TIMEOUT", "60s")
	viper.SetDefault("PRINTER_SPOOL_CLEANUP_DELAY", "30s")
	viper.SetDefault("PRINTER_LIST_CACHE_TTL", "30s")

	viper.SetDefault("STORE_NAME", "Creative Hands")
	viper.SetDefault("STORE_TAGLINE", "By TEVTA")
	viper.SetDefault("STORE_SUBTITLE", "Point of Sale System")
	viper.SetDefault("STORE_FOOTER", "")
	viper.SetDefault("CURRENCY_SYMBOL", "Rs")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			LockTTL:  viper.GetDuration("REDIS_LOCK_TTL"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Name:              viper.GetString("THERMAL_PRINTER_NAME"),
			Host:              viper.GetString("THERMAL_PRINTER_HOST"),
			Port:              viper.GetInt("THERMAL_PRINTER_PORT"),
			USBPath:           viper.GetString("PRINTER_USB_PATH"),
			USBVendorID:       viper.GetString("PRINTER_USB_VENDOR_ID"),
			USBProductID:      viper.GetString("PRINTER_USB_PRODUCT_ID"),
			ColumnWidth:       viper.GetInt("PRINTER_COLUMN_WIDTH"),
			Strategies:        splitList(viper.GetString("PRINTER_STRATEGIES")),
			RawFormat:         strings.ToLower(viper.GetString("PRINTER_RAW_FORMAT")),
			CutPaper:          viper.GetBool("PRINTER_CUT_PAPER"),
			OpenDrawer:        viper.GetBool("PRINTER_OPEN_DRAWER"),
			CodePage:          viper.GetString("PRINTER_CODE_PAGE"),
			LogoPath:          viper.GetString("PRINTER_LOGO_PATH"),
			QREnabled:         viper.GetBool("PRINTER_QR_ENABLED"),
			MaxImageWidth:     viper.GetInt("PRINTER_MAX_IMAGE_WIDTH"),
			PaperWidthMM:      viper.GetFloat64("PRINTER_PAPER_WIDTH_MM"),
			ChromeBin:         viper.GetString("PRINTER_CHROME_BIN"),
			USBTimeout:        viper.GetDuration("PRINTER_USB_TIMEOUT"),
			NetworkTimeout:    viper.GetDuration("PRINTER_NETWORK_TIMEOUT"),
			SpoolTimeout:      viper.GetDuration("PRINTER_SPOOL_TIMEOUT"),
			DialogTimeout:     viper.GetDuration("PRINTER_DIALOG_TIMEOUT"),
			SpoolCleanupDelay: viper.GetDuration("PRINTER_SPOOL_CLEANUP_DELAY"),
			ListCacheTTL:      viper.GetDuration("PRINTER_LIST_CACHE_TTL"),
		},
		Store: StoreConfig{
			Name:     viper.GetString("STORE_NAME"),
			Tagline:  viper.GetString("STORE_TAGLINE"),
			Subtitle: viper.GetString("STORE_SUBTITLE"),
			Footer:   viper.GetString("STORE_FOOTER"),
			Currency: viper.GetString("CURRENCY_SYMBOL"),
		},
	}
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
