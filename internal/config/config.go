package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Portal struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	OpenMeteo struct {
		ForecastURL  string
		GeocodingURL string
		Timeout      time.Duration
		RateLimit    float64
		RateBurst    int
	}

	Retry struct {
		MaxAttempts int
		Delay       time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Cycle struct {
		InteractionWindow    time.Duration
		InteractionPoll      time.Duration
		FailureRetryInterval time.Duration
		WakeCause            string
		SleepResolution      time.Duration
	}

	Location struct {
		DefaultCity      string
		DefaultLatitude  float64
		DefaultLongitude float64
	}

	Settings struct {
		Backend       string
		Path          string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		Namespace     string
	}

	Display struct {
		Width        int
		Height       int
		ButtonWidth  int
		ButtonHeight int
		TouchDriver  string
		TouchBus     string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	cfg.Portal.Port = getEnv("PORTAL_PORT", "8080")
	cfg.Portal.ReadTimeout = parseDuration(getEnv("PORTAL_READ_TIMEOUT", "10s"))
	cfg.Portal.WriteTimeout = parseDuration(getEnv("PORTAL_WRITE_TIMEOUT", "10s"))
	cfg.Portal.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.OpenMeteo.ForecastURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.OpenMeteo.GeocodingURL = getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.OpenMeteo.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))
	cfg.OpenMeteo.RateLimit = parseFloat(getEnv("RATE_LIMIT_RPS", "2"))
	cfg.OpenMeteo.RateBurst = parseInt(getEnv("RATE_LIMIT_BURST", "1"))

	cfg.Retry.MaxAttempts = parseInt(getEnv("HTTP_RETRY_ATTEMPTS", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("HTTP_RETRY_DELAY", "2s"))

	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "5"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	cfg.Cycle.InteractionWindow = parseDuration(getEnv("INTERACTION_WINDOW", "30s"))
	cfg.Cycle.InteractionPoll = parseDuration(getEnv("INTERACTION_POLL", "100ms"))
	cfg.Cycle.FailureRetryInterval = parseDuration(getEnv("FAILURE_RETRY_INTERVAL", "1m"))
	cfg.Cycle.WakeCause = getEnv("WAKE_CAUSE", "auto")
	cfg.Cycle.SleepResolution = parseDuration(getEnv("SLEEP_RESOLUTION", "1s"))

	cfg.Location.DefaultCity = getEnv("DEFAULT_CITY", "Auckland")
	cfg.Location.DefaultLatitude = parseFloat(getEnv("DEFAULT_LATITUDE", "-36.8485"))
	cfg.Location.DefaultLongitude = parseFloat(getEnv("DEFAULT_LONGITUDE", "174.7633"))

	cfg.Settings.Backend = getEnv("SETTINGS_BACKEND", "file")
	cfg.Settings.Path = getEnv("SETTINGS_PATH", "settings.yaml")
	cfg.Settings.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Settings.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.Settings.RedisDB = parseInt(getEnv("REDIS_DB", "0"))
	cfg.Settings.Namespace = getEnv("SETTINGS_NAMESPACE", "weather")

	cfg.Display.Width = parseInt(getEnv("SCREEN_WIDTH", "960"))
	cfg.Display.Height = parseInt(getEnv("SCREEN_HEIGHT", "540"))
	cfg.Display.ButtonWidth = parseInt(getEnv("CFG_BUTTON_WIDTH", "100"))
	cfg.Display.ButtonHeight = parseInt(getEnv("CFG_BUTTON_HEIGHT", "40"))
	cfg.Display.TouchDriver = getEnv("TOUCH_DRIVER", "none")
	cfg.Display.TouchBus = getEnv("TOUCH_I2C_BUS", "1")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
