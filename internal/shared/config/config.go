package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resume-importer/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	UploadsBucket      string
	UploadsPrefix      string
	ImportQueueURL     string
	PDFPrimaryDecoder  bool
	SkillsCatalogFile  string
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOBucket        string
	MinIOUseSSL        bool
	WorkerConcurrency  int
	VisibilitySeconds  int
	DatabaseURL        string
	Env                string
	LogLevel           string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		UploadsBucket:      getEnv("UPLOADS_S3_BUCKET", ""),
		UploadsPrefix:      getEnv("UPLOADS_S3_PREFIX", "imports/"),
		ImportQueueURL:     getEnv("IMPORT_QUEUE_URL", ""),
		PDFPrimaryDecoder:  getBool("PDF_PRIMARY_DECODER", true),
		SkillsCatalogFile:  getEnv("SKILLS_CATALOG_FILE", ""),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:        getEnv("MINIO_BUCKET", ""),
		MinIOUseSSL:        getBool("MINIO_USE_SSL", false),
		WorkerConcurrency:  getInt("IMPORT_WORKER_CONCURRENCY", 4),
		VisibilitySeconds:  getInt("IMPORT_SQS_VISIBILITY_TIMEOUT_SECONDS", 300),
		DatabaseURL:        dbURL,
		Env:                env,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	default:
		warnInvalid(key, raw, def)
		return def
	}
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		warnInvalid(key, raw, def)
		return def
	}
	return val
}

func warnInvalid(key, raw string, def any) {
	telemetry.Warn("config.value_ignored", map[string]any{
		"key":     key,
		"value":   raw,
		"default": def,
	})
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

// Validate reports settings that cannot work together. All problems are
// returned at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		errs = append(errs, &SettingError{Name: "PORT", Problem: fmt.Sprintf("%q is not a port number", c.Port)})
	}
	switch c.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			errs = append(errs, requiredBy("S3_BUCKET", "OBJECT_STORE=s3"))
		}
	case "minio":
		required := [][2]string{
			{"MINIO_ENDPOINT", c.MinIOEndpoint},
			{"MINIO_BUCKET", c.MinIOBucket},
			{"MINIO_ACCESS_KEY", c.MinIOAccessKey},
			{"MINIO_SECRET_KEY", c.MinIOSecretKey},
		}
		for _, kv := range required {
			if strings.TrimSpace(kv[1]) == "" {
				errs = append(errs, requiredBy(kv[0], "OBJECT_STORE=minio"))
			}
		}
	}
	if c.Env == "production" {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, requiredBy("DATABASE_URL", "ENV=production"))
		}
		if c.ObjectStoreType == "local" {
			errs = append(errs, &SettingError{Name: "OBJECT_STORE", Problem: "local is not allowed in production"})
		}
	}
	return errors.Join(errs...)
}

// SettingError reports one invalid or missing setting.
type SettingError struct {
	Name    string
	Problem string
}

func (e *SettingError) Error() string { return e.Name + ": " + e.Problem }

func requiredBy(name, by string) *SettingError {
	return &SettingError{Name: name, Problem: "required when " + by}
}

// InvalidSettings returns the setting names reported anywhere in err's tree.
func InvalidSettings(err error) []string {
	var names []string
	var walk func(error)
	walk = func(err error) {
		if se, ok := err.(*SettingError); ok {
			names = append(names, se.Name)
			return
		}
		switch e := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return names
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local" || c.Env == ""
}
