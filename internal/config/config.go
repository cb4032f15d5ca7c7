package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Watch   WatchConfig
}

type AppConfig struct {
	Environment        string
	LogFilePath        string
	ListenAddr         string
	CorsAllowedOrigins string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration // 0 disables the transport deadline
}

type WatchConfig struct {
	Dir string // empty disables auto upload
}

// IsProduction reports whether logs should be machine-formatted everywhere.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}
	return fromEnv()
}

func fromEnv() *Config {
	timeoutSeconds := getEnvAsInt("DOCQA_HTTP_TIMEOUT_SECONDS", 120)
	if timeoutSeconds < 0 {
		timeoutSeconds = 0
	}

	return &Config{
		App: AppConfig{
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "docqa.log"),
			ListenAddr:         getEnv("DOCQA_LISTEN_ADDR", "127.0.0.1:8090"),
			CorsAllowedOrigins: getEnv("DOCQA_CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("DOCQA_BACKEND_URL", "http://localhost:8000"),
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		Watch: WatchConfig{
			Dir: getEnv("DOCQA_WATCH_DIR", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
