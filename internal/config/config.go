package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stockroom/internal/domain"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	SeedDemo bool

	UploadBackend    string
	UploadDir        string
	UploadMaxBytes   int64
	GCSBucket        string
	GCSPrefix        string
	GCSEndpoint      string
	GCSPublicBaseURL string

	RequireCategory      bool
	CategoryDeletePolicy domain.DeletePolicy

	APITokenHash    string
	CORSOrigins     string
	RateLimitPerMin int
	BodyLimitBytes  int
	LogFile         string

	DashboardPort string
	APIBaseURL    string
	APIToken      string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "stockroom.db") // sqlite file in project root
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("UPLOAD_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 2<<20)
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GCS_PREFIX", "inventory")
	v.SetDefault("GCS_ENDPOINT", "")
	v.SetDefault("GCS_PUBLIC_BASE_URL", "")
	v.SetDefault("REQUIRE_CATEGORY", true)
	v.SetDefault("CATEGORY_DELETE_POLICY", string(domain.DeleteNullify))
	v.SetDefault("API_TOKEN_HASH", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MIN", 120)
	v.SetDefault("BODY_LIMIT_BYTES", 4<<20)
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("DASHBOARD_PORT", "3001")
	v.SetDefault("API_BASE_URL", "http://localhost:3000")
	v.SetDefault("API_TOKEN", "")
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	cfg := FromViper(v)
	log.Printf("[config] PORT=%s DB_DRIVER=%s UPLOAD_BACKEND=%s REQUIRE_CATEGORY=%t CATEGORY_DELETE_POLICY=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDriver, cfg.UploadBackend, cfg.RequireCategory, cfg.CategoryDeletePolicy, cfg.LogFile)
	return cfg
}

// FromViper builds a Config from v, which must already carry defaults.
func FromViper(v *viper.Viper) Config {
	policy := domain.DeletePolicy(strings.ToLower(strings.TrimSpace(v.GetString("CATEGORY_DELETE_POLICY"))))
	switch policy {
	case domain.DeleteNullify, domain.DeleteRestrict, domain.DeleteCascade:
	default:
		log.Printf("[config] unknown CATEGORY_DELETE_POLICY %q, using %s", policy, domain.DeleteNullify)
		policy = domain.DeleteNullify
	}
	backend := strings.ToLower(strings.TrimSpace(v.GetString("UPLOAD_BACKEND")))
	switch backend {
	case "local", "gcs":
	default:
		log.Printf("[config] unknown UPLOAD_BACKEND %q, using local", backend)
		backend = "local"
	}
	return Config{
		Port:     v.GetString("PORT"),
		DBDriver: strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:    v.GetString("DB_DSN"),
		SeedDemo: v.GetBool("SEED_DEMO"),

		UploadBackend:    backend,
		UploadDir:        v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:   v.GetInt64("UPLOAD_MAX_BYTES"),
		GCSBucket:        v.GetString("GCS_BUCKET"),
		GCSPrefix:        v.GetString("GCS_PREFIX"),
		GCSEndpoint:      v.GetString("GCS_ENDPOINT"),
		GCSPublicBaseURL: v.GetString("GCS_PUBLIC_BASE_URL"),

		RequireCategory:      v.GetBool("REQUIRE_CATEGORY"),
		CategoryDeletePolicy: policy,

		APITokenHash:    v.GetString("API_TOKEN_HASH"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		BodyLimitBytes:  v.GetInt("BODY_LIMIT_BYTES"),
		LogFile:         v.GetString("LOG_FILE"),

		DashboardPort: v.GetString("DASHBOARD_PORT"),
		APIBaseURL:    strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APIToken:      v.GetString("API_TOKEN"),
	}
}

// Defaults returns the configuration used when no environment is set.
func Defaults() Config {
	v := viper.New()
	defaults(v)
	return FromViper(v)
}
