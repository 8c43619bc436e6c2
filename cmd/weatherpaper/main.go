package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/weather-paper/internal/config"
	"github.com/bobby-s-dev/weather-paper/internal/device"
	"github.com/bobby-s-dev/weather-paper/internal/metrics"
	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/portal"
	"github.com/bobby-s-dev/weather-paper/internal/power"
	"github.com/bobby-s-dev/weather-paper/internal/render"
	"github.com/bobby-s-dev/weather-paper/internal/scheduler"
	"github.com/bobby-s-dev/weather-paper/internal/services"
	"github.com/bobby-s-dev/weather-paper/internal/settings"
	"github.com/bobby-s-dev/weather-paper/pkg/client"
)

func main() {
	// Bootstrap logger until the configured level is known
	zap.ReplaceGlobals(newLogger("info"))

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Portal.LogLevel)
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting weather display", zap.String("log_level", cfg.Portal.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open settings store", zap.Error(err))
	}
	defer closeStore()

	clientCfg := client.ClientConfig{
		Timeout:        cfg.OpenMeteo.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
		RateLimit:      cfg.OpenMeteo.RateLimit,
		RateBurst:      cfg.OpenMeteo.RateBurst,
	}
	geoCfg := clientCfg
	geoCfg.Observe = metrics.HTTPObserver("geocoding")
	forecastCfg := clientCfg
	forecastCfg.Observe = metrics.HTTPObserver("forecast")

	retry := client.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
		Logger:      logger,
	}

	geocoder := client.NewGeocodingClient(cfg.OpenMeteo.GeocodingURL, geoCfg, logger)
	openMeteo := client.NewOpenMeteoClient(cfg.OpenMeteo.ForecastURL, forecastCfg, logger)

	resolver := services.NewLocationResolver(geocoder, retry, logger)
	forecast := services.NewForecastService(openMeteo, retry, logger)
	engine := scheduler.NewEngine(store, cfg.Cycle.SleepResolution, logger)

	cause, err := power.ParseWakeCause(cfg.Cycle.WakeCause)
	if err != nil {
		logger.Warn("Invalid wake cause, assuming manual", zap.Error(err))
	}
	timer := scheduler.NewWakeTimer(logger)
	defer timer.Stop()
	driver := power.NewHostDriver(cause, timer, logger)
	driver.OnNetworkOff(func(ctx context.Context) error {
		geocoder.CloseIdleConnections()
		openMeteo.CloseIdleConnections()
		return nil
	})

	input, closeInput := openInput(cfg, logger)
	defer closeInput()

	ctrl := services.NewController(services.ControllerDeps{
		Store:    store,
		Resolver: resolver,
		Forecast: forecast,
		Engine:   engine,
		Renderer: render.NewLogRenderer(logger),
		Power:    driver,
		Portal: portal.NewServer(portal.Config{
			Port:         cfg.Portal.Port,
			ReadTimeout:  cfg.Portal.ReadTimeout,
			WriteTimeout: cfg.Portal.WriteTimeout,
		}, store, logger),
	}, services.ControllerConfig{
		Interaction: services.InteractionWindow{
			Input:    input,
			Region:   device.ConfigButton(cfg.Display.Width, cfg.Display.Height, cfg.Display.ButtonWidth, cfg.Display.ButtonHeight),
			Duration: cfg.Cycle.InteractionWindow,
			Poll:     cfg.Cycle.InteractionPoll,
		},
		FailureRetryInterval: cfg.Cycle.FailureRetryInterval,
		DefaultLocation: models.Location{
			Name:      cfg.Location.DefaultCity,
			Latitude:  cfg.Location.DefaultLatitude,
			Longitude: cfg.Location.DefaultLongitude,
			Resolved:  true,
		},
	}, logger)

	for {
		cycle, err := ctrl.Run(ctx)
		if ctx.Err() != nil {
			break
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Cycle failed", zap.Stringer("state", cycle.Final), zap.Error(err))
		}
		if cycle.Final == services.StatePortal {
			// A portal session ends in a restart.
			driver.Reset()
		}
	}

	logger.Info("Weather display stopped")
}

// newLogger returns a development logger for "debug" and a production logger
// at the given level otherwise. Unknown levels mean info.
func newLogger(level string) *zap.Logger {
	if strings.EqualFold(level, "debug") {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStore(ctx context.Context, cfg *config.Config) (*settings.Store, func(), error) {
	switch cfg.Settings.Backend {
	case "redis":
		backend := settings.NewRedisBackend(settings.RedisConfig{
			Addr:      cfg.Settings.RedisAddr,
			Password:  cfg.Settings.RedisPassword,
			DB:        cfg.Settings.RedisDB,
			Namespace: cfg.Settings.Namespace,
		})
		if err := backend.Ping(ctx); err != nil {
			backend.Close()
			return nil, nil, err
		}
		return settings.NewStore(backend), func() { backend.Close() }, nil
	case "memory":
		return settings.NewStore(settings.NewMemoryBackend(nil)), func() {}, nil
	case "file", "":
		return settings.NewStore(settings.NewFileBackend(cfg.Settings.Path)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.Settings.Backend)
	}
}

func openInput(cfg *config.Config, logger *zap.Logger) (services.InputSurface, func()) {
	if cfg.Display.TouchDriver != "gt1151" {
		return device.NoInput{}, func() {}
	}
	touch, err := device.OpenGT1151(cfg.Display.TouchBus)
	if err != nil {
		logger.Warn("Touch controller unavailable, interaction window disabled", zap.Error(err))
		return device.NoInput{}, func() {}
	}
	return touch, func() { touch.Close() }
}
