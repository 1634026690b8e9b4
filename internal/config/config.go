// Package config carga la configuración del proceso desde variables de entorno,
// con un YAML opcional (PETFINDER_CONFIG) como base. El entorno siempre gana.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-yaml/yaml"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ExtractorStatic = "static"
	ExtractorGemini = "gemini"
)

type Config struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	AppName   string `yaml:"app_name"`

	StoreDriver string `yaml:"store_driver"`
	DBDSN       string `yaml:"db_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`

	S3 S3Config `yaml:"s3"`

	Extractor         string        `yaml:"extractor"`
	Gemini            GeminiConfig  `yaml:"gemini"`
	ExtractionTimeout time.Duration `yaml:"extraction_timeout"`

	SMTP          SMTPConfig    `yaml:"smtp"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	Redis RedisConfig `yaml:"redis"`

	SentryDSN         string `yaml:"sentry_dsn"`
	SentryEnvironment string `yaml:"sentry_environment"`

	CORSOrigins      []string `yaml:"cors_origins"`
	AutomatedUserIDs []string `yaml:"automated_user_ids"`
	MaxUploadMB      int      `yaml:"max_upload_mb"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	PublicBaseURL   string `yaml:"public_base_url"`
	KeyPrefix       string `yaml:"key_prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type GeminiConfig struct {
	APIKey  string   `yaml:"api_key"`
	BaseURL string   `yaml:"base_url"`
	Models  []string `yaml:"models"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Defaults devuelve la config de modo dev: todo en memoria, extractor estático.
func Defaults() Config {
	return Config{
		Port:              "8080",
		LogLevel:          "info",
		LogFormat:         "json",
		AppName:           "pet-lost-found",
		StoreDriver:       DriverMemory,
		SQLitePath:        "petfinder.db",
		S3:                S3Config{Region: "us-east-1", KeyPrefix: "pet-reports"},
		Extractor:         ExtractorStatic,
		ExtractionTimeout: 30 * time.Second,
		SMTP:              SMTPConfig{Host: "smtp.gmail.com", Port: 587},
		NotifyTimeout:     10 * time.Second,
		Redis:             RedisConfig{Channel: "petfinder:matches"},
		SentryEnvironment: "development",
		CORSOrigins:       []string{"http://localhost:3000"},
		AutomatedUserIDs:  []string{"scraper_bot"},
		MaxUploadMB:       32,
	}
}

// Load usa os.LookupEnv.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom permite inyectar el lookup de variables (tests).
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	if path, ok := lookup("PETFINDER_CONFIG"); ok && strings.TrimSpace(path) != "" {
		if err := loadFile(strings.TrimSpace(path), &cfg); err != nil {
			return Config{}, err
		}
	}

	e := env{lookup: lookup}
	e.str("PORT", &cfg.Port)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.str("LOG_FORMAT", &cfg.LogFormat)
	e.str("APP_NAME", &cfg.AppName)

	e.str("STORE_DRIVER", &cfg.StoreDriver)
	e.str("DB_DSN", &cfg.DBDSN)
	e.str("SQLITE_PATH", &cfg.SQLitePath)

	e.str("S3_BUCKET", &cfg.S3.Bucket)
	e.str("S3_REGION", &cfg.S3.Region)
	e.str("S3_ENDPOINT", &cfg.S3.Endpoint)
	e.boolean("S3_PATH_STYLE", &cfg.S3.PathStyle)
	e.str("S3_PUBLIC_BASE_URL", &cfg.S3.PublicBaseURL)
	e.str("S3_KEY_PREFIX", &cfg.S3.KeyPrefix)
	e.str("AWS_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	e.str("AWS_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)

	e.str("EXTRACTOR", &cfg.Extractor)
	e.str("GEMINI_API_KEY", &cfg.Gemini.APIKey)
	e.str("GEMINI_BASE_URL", &cfg.Gemini.BaseURL)
	e.list("GEMINI_MODELS", &cfg.Gemini.Models)
	e.duration("EXTRACTION_TIMEOUT", &cfg.ExtractionTimeout)

	e.str("SMTP_HOST", &cfg.SMTP.Host)
	e.integer("SMTP_PORT", &cfg.SMTP.Port)
	e.str("SMTP_USERNAME", &cfg.SMTP.Username)
	e.str("SMTP_PASSWORD", &cfg.SMTP.Password)
	e.str("SMTP_FROM", &cfg.SMTP.From)
	e.duration("NOTIFY_TIMEOUT", &cfg.NotifyTimeout)

	e.str("REDIS_ADDR", &cfg.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Redis.Password)
	e.integer("REDIS_DB", &cfg.Redis.DB)
	e.str("REDIS_CHANNEL", &cfg.Redis.Channel)

	e.str("SENTRY_DSN", &cfg.SentryDSN)
	e.str("SENTRY_ENVIRONMENT", &cfg.SentryEnvironment)

	e.list("CORS_ORIGINS", &cfg.CORSOrigins)
	e.list("AUTOMATED_USER_IDS", &cfg.AutomatedUserIDs)
	e.integer("MAX_UPLOAD_MB", &cfg.MaxUploadMB)

	if e.err != nil {
		return Config{}, e.err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.Extractor = strings.ToLower(strings.TrimSpace(cfg.Extractor))
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("config: DB_DSN required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Extractor {
	case ExtractorStatic:
	case ExtractorGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("config: GEMINI_API_KEY required for extractor %q", c.Extractor)
		}
	default:
		return fmt.Errorf("config: unknown EXTRACTOR %q", c.Extractor)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// env aplica overrides; el primer error de parseo queda registrado.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *env) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *env) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *env) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

// duration acepta "30s" o segundos enteros ("30").
func (e *env) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config: invalid %s: %w", key, err)
	}
}
