package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != DriverMemory || cfg.Extractor != ExtractorStatic {
		t.Fatalf("unexpected drivers: %s %s", cfg.StoreDriver, cfg.Extractor)
	}
	if cfg.Addr() != ":8080" || cfg.ExtractionTimeout != 30*time.Second || cfg.MaxUploadMB != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AutomatedUserIDs) != 1 || cfg.AutomatedUserIDs[0] != "scraper_bot" {
		t.Fatalf("unexpected automated users: %v", cfg.AutomatedUserIDs)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(map[string]string{
		"PORT":               "9090",
		"STORE_DRIVER":       "SQLite",
		"EXTRACTOR":          "gemini",
		"GEMINI_API_KEY":     "k",
		"GEMINI_MODELS":      "a, b,,c",
		"EXTRACTION_TIMEOUT": "5",
		"NOTIFY_TIMEOUT":     "1500ms",
		"S3_PATH_STYLE":      "true",
		"REDIS_DB":           "2",
		"AUTOMATED_USER_IDS": "scraper_bot,importer",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":9090" || cfg.StoreDriver != DriverSQLite || cfg.Extractor != ExtractorGemini {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Gemini.Models) != 3 || cfg.Gemini.Models[2] != "c" {
		t.Fatalf("unexpected models: %v", cfg.Gemini.Models)
	}
	if cfg.ExtractionTimeout != 5*time.Second || cfg.NotifyTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeouts: %v %v", cfg.ExtractionTimeout, cfg.NotifyTimeout)
	}
	if !cfg.S3.PathStyle || cfg.Redis.DB != 2 || len(cfg.AutomatedUserIDs) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFrom_YAMLOverlayEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petfinder.yaml")
	content := `
port: "7000"
store_driver: postgres
db_dsn: postgres://file
s3:
  bucket: pets
  region: eu-west-1
smtp:
  host: mail.local
  port: 2525
extraction_timeout: 12s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFrom(lookupFrom(map[string]string{
		"PETFINDER_CONFIG": path,
		"DB_DSN":           "postgres://env",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" || cfg.StoreDriver != DriverPostgres || cfg.S3.Bucket != "pets" || cfg.S3.Region != "eu-west-1" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.DBDSN != "postgres://env" {
		t.Fatalf("env should win, got %q", cfg.DBDSN)
	}
	if cfg.SMTP.Port != 2525 || cfg.ExtractionTimeout != 12*time.Second {
		t.Fatalf("unexpected smtp/timeout: %+v", cfg)
	}
	if cfg.S3.KeyPrefix != "pet-reports" {
		t.Fatalf("defaults lost under yaml: %q", cfg.S3.KeyPrefix)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"bad int":         {"REDIS_DB": "x"},
		"bad bool":        {"S3_PATH_STYLE": "maybe"},
		"bad duration":    {"NOTIFY_TIMEOUT": "soon"},
		"unknown driver":  {"STORE_DRIVER": "mongo"},
		"postgres no dsn": {"STORE_DRIVER": "postgres"},
		"gemini no key":   {"EXTRACTOR": "gemini"},
		"missing file":    {"PETFINDER_CONFIG": "/nonexistent/petfinder.yaml"},
		"zero upload":     {"MAX_UPLOAD_MB": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(lookupFrom(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
