package config

import (
	"os"

	"github.com/joho/godotenv"

	"resume-importer/internal/shared/telemetry"
)

// loadEnvFiles applies the given dotenv files when they exist. Variables
// already present in the process environment are left untouched.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			telemetry.Warn("config.env_file_invalid", map[string]any{"path": path, "error": err.Error()})
		}
	}
}
