// Package config reads environment-driven settings and the optional YAML
// stage-defaults file.
package config

import "os"

// Config holds process settings, populated from FLOWGENIUS_* env vars.
type Config struct {
	Port     string
	LogLevel string
	Debug    bool

	// StorageBackend selects the state store: "memory" or "redis".
	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// StageDefaultsFile optionally points at a YAML file overriding the
	// built-in per-stage prompts and models.
	StageDefaultsFile string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads all env vars and builds the config.
func Load() *Config {
	return &Config{
		Port:     getEnv("FLOWGENIUS_PORT", "8080"),
		LogLevel: getEnv("FLOWGENIUS_LOG_LEVEL", "info"),
		Debug:    getBoolEnv("FLOWGENIUS_DEBUG", false),

		StorageBackend: getEnv("FLOWGENIUS_STORAGE_BACKEND", "memory"),
		RedisAddr:      getEnv("FLOWGENIUS_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("FLOWGENIUS_REDIS_PASSWORD", ""),
		RedisDB:        0,

		StageDefaultsFile: getEnv("FLOWGENIUS_STAGE_DEFAULTS", ""),
	}
}
