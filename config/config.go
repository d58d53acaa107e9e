package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Sheet   SheetConfig
	Data    DataConfig
	Assets  AssetsConfig
	Output  OutputConfig
	Session SessionConfig
	Render  RenderConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	BasePath string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// SheetConfig points to a sheet description file; empty uses the built-in A4 sheet
type SheetConfig struct {
	Path string
}

// DataConfig holds the product catalog location
type DataConfig struct {
	ProductsFile string
}

// AssetsConfig holds optional artwork
type AssetsConfig struct {
	LogoPath string
}

// OutputConfig selects where generated sheets are stored
type OutputConfig struct {
	Backend string // fs, s3
	Dir     string
	S3      S3Config
}

// S3Config holds S3-compatible bucket settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// SessionConfig selects the custom ticket store
type SessionConfig struct {
	Backend       string // memory, redis
	TTL           time.Duration
	CookieName    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// RenderConfig holds ticket rendering switches that override the sheet file
type RenderConfig struct {
	NameOverflow string // drop, ellipsis
	PriceCenter  string // metric, legacy
	DebugJSON    string
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables with PRICETAG_ prefix (e.g., PRICETAG_OUTPUT_DIR)
// 2. .env file (outside production)
// 3. config.toml (or the file given by path)
// 4. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/app")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PRICETAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("app.env") != "production" {
		// .env is optional; values already in the environment win
		_ = godotenv.Load()
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			BasePath: v.GetString("app.base_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Sheet:  SheetConfig{Path: v.GetString("sheet.path")},
		Data:   DataConfig{ProductsFile: v.GetString("data.products_file")},
		Assets: AssetsConfig{LogoPath: v.GetString("assets.logo_path")},
		Output: OutputConfig{
			Backend: v.GetString("output.backend"),
			Dir:     v.GetString("output.dir"),
			S3: S3Config{
				Endpoint:     v.GetString("output.s3.endpoint"),
				Region:       v.GetString("output.s3.region"),
				Bucket:       v.GetString("output.s3.bucket"),
				Prefix:       v.GetString("output.s3.prefix"),
				AccessKey:    v.GetString("output.s3.access_key"),
				SecretKey:    v.GetString("output.s3.secret_key"),
				UseSSL:       v.GetBool("output.s3.use_ssl"),
				UsePathStyle: v.GetBool("output.s3.use_path_style"),
			},
		},
		Session: SessionConfig{
			Backend:       v.GetString("session.backend"),
			TTL:           v.GetDuration("session.ttl"),
			CookieName:    v.GetString("session.cookie_name"),
			RedisAddr:     v.GetString("session.redis_addr"),
			RedisPassword: v.GetString("session.redis_password"),
			RedisDB:       v.GetInt("session.redis_db"),
		},
		Render: RenderConfig{
			NameOverflow: v.GetString("render.name_overflow"),
			PriceCenter:  v.GetString("render.price_center"),
			DebugJSON:    v.GetString("render.debug_json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pricetag")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5002")
	v.SetDefault("app.base_path", "/rubi-price-ticket")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("data.products_file", "products.json")
	v.SetDefault("assets.logo_path", "rubi.png")
	v.SetDefault("output.backend", "fs")
	v.SetDefault("output.dir", "generated_tickets")
	v.SetDefault("output.s3.region", "us-east-1")
	v.SetDefault("output.s3.use_path_style", true)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "pricetag_sid")
	v.SetDefault("session.redis_addr", "localhost:6379")
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Output.Backend {
	case "fs":
		if c.Output.Dir == "" {
			return fmt.Errorf("output.dir is required for the fs backend")
		}
	case "s3":
		if c.Output.S3.Bucket == "" {
			return fmt.Errorf("output.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("output.backend must be fs or s3, got %q", c.Output.Backend)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl cannot be negative")
	}
	switch c.Render.NameOverflow {
	case "", "drop", "ellipsis":
	default:
		return fmt.Errorf("render.name_overflow must be drop or ellipsis, got %q", c.Render.NameOverflow)
	}
	switch c.Render.PriceCenter {
	case "", "metric", "legacy":
	default:
		return fmt.Errorf("render.price_center must be metric or legacy, got %q", c.Render.PriceCenter)
	}
	return nil
}
