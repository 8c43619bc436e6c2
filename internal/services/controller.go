package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/metrics"
	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/settings"
)

type State int

const (
	StateBooting State = iota
	StateInteractionWindow
	StateAcquiring
	StateDisplaying
	StateScheduling
	StateSuspended
	StatePortal
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateInteractionWindow:
		return "interaction_window"
	case StateAcquiring:
		return "acquiring"
	case StateDisplaying:
		return "displaying"
	case StateScheduling:
		return "scheduling"
	case StateSuspended:
		return "suspended"
	case StatePortal:
		return "portal"
	default:
		return "unknown"
	}
}

// PowerDriver is the wake-cause query and the suspend primitive. On hardware
// Suspend does not return.
type PowerDriver interface {
	WakeCause(ctx context.Context) (models.WakeCause, error)
	DisableNetwork(ctx context.Context) error
	ArmTimerWake(ctx context.Context, d time.Duration) error
	Suspend(ctx context.Context) error
}

// PortalLauncher runs the configuration portal until the user is done.
type PortalLauncher interface {
	Launch(ctx context.Context) error
}

// View is the read-only input of the renderer.
type View struct {
	Snapshot *models.WeatherSnapshot
	Location models.Location
	Units    models.Units
	FetchErr error
	Now      time.Time
}

type Renderer interface {
	Render(ctx context.Context, v View) error
}

type Resolver interface {
	Resolve(ctx context.Context, name string, cachedLat, cachedLon *float64) (models.Location, error)
}

type Forecaster interface {
	Fetch(ctx context.Context, q ForecastQuery, prior models.WeatherSnapshot) (models.WeatherSnapshot, error)
}

type Scheduler interface {
	NextInterval(ctx context.Context, localHour int) time.Duration
	IsNight(ctx context.Context, localHour int) bool
}

type ControllerConfig struct {
	Interaction          InteractionWindow
	FailureRetryInterval time.Duration
	DefaultLocation      models.Location
}

// Cycle summarises one boot.
type Cycle struct {
	Wake                models.WakeContext
	Final               State
	Location            models.Location
	UsedDefaultLocation bool
	FetchOK             bool
	Night               bool
	SleepFor            time.Duration
}

// Controller runs the wake, acquire, display, schedule, suspend cycle. It owns
// the snapshot for the lifetime of the process.
type Controller struct {
	store    *settings.Store
	resolver Resolver
	forecast Forecaster
	engine   Scheduler
	renderer Renderer
	power    PowerDriver
	portal   PortalLauncher
	cfg      ControllerConfig
	logger   *zap.Logger
	now      func() time.Time

	state    State
	snapshot models.WeatherSnapshot
}

type ControllerDeps struct {
	Store    *settings.Store
	Resolver Resolver
	Forecast Forecaster
	Engine   Scheduler
	Renderer Renderer
	Power    PowerDriver
	Portal   PortalLauncher
	Clock    func() time.Time
}

func NewController(deps ControllerDeps, cfg ControllerConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	if cfg.FailureRetryInterval <= 0 {
		cfg.FailureRetryInterval = time.Minute
	}
	return &Controller{
		store:    deps.Store,
		resolver: deps.Resolver,
		forecast: deps.Forecast,
		engine:   deps.Engine,
		renderer: deps.Renderer,
		power:    deps.Power,
		portal:   deps.Portal,
		cfg:      cfg,
		logger:   logger,
		now:      clock,
	}
}

func (c *Controller) State() State {
	return c.state
}

// Snapshot returns a copy of the last successful acquisition.
func (c *Controller) Snapshot() models.WeatherSnapshot {
	return c.snapshot
}

func (c *Controller) enter(s State) {
	c.logger.Debug("State transition", zap.Stringer("from", c.state), zap.Stringer("to", s))
	c.state = s
}

// Run executes one boot cycle. It returns after Suspend returns, which only
// happens on hosts that emulate the timer wake, or after the portal hands back.
func (c *Controller) Run(ctx context.Context) (Cycle, error) {
	c.state = StateBooting
	wake := c.boot(ctx)
	logger := c.logger.With(zap.String("boot_id", wake.BootID))
	cycle := Cycle{Wake: wake}

	if wake.Cause == models.WakeManual {
		c.enter(StateInteractionWindow)
		window := c.cfg.Interaction
		window.Logger = logger
		if window.Input != nil && window.Wait(ctx) {
			c.enter(StatePortal)
			cycle.Final = StatePortal
			logger.Info("Entering configuration portal")
			if c.portal == nil {
				return cycle, nil
			}
			return cycle, c.portal.Launch(ctx)
		}
	} else {
		logger.Debug("Timer wake, skipping interaction window")
	}

	c.enter(StateAcquiring)
	ds, err := settings.LoadDeviceSettings(ctx, c.store)
	if err != nil {
		logger.Warn("Failed to read device settings, using defaults", zap.Error(err))
	}
	loc, usedDefault := c.resolveLocation(ctx, logger, ds)
	cycle.Location = loc
	cycle.UsedDefaultLocation = usedDefault

	hour := c.now().Hour()
	snap, fetchErr := c.forecast.Fetch(ctx, ForecastQuery{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Units:     ds.Units,
		LocalHour: hour,
	}, c.snapshot)
	if fetchErr == nil {
		c.snapshot = snap
		cycle.FetchOK = true
	} else {
		metrics.RecordFetchFailure()
		logger.Error("Weather fetch failed, keeping previous data", zap.Error(fetchErr))
	}

	c.enter(StateDisplaying)
	if c.renderer != nil {
		err := c.renderer.Render(ctx, View{
			Snapshot: &c.snapshot,
			Location: loc,
			Units:    ds.Units,
			FetchErr: fetchErr,
			Now:      c.now(),
		})
		if err != nil {
			logger.Warn("Render failed", zap.Error(err))
		}
	}

	c.enter(StateScheduling)
	hour = c.now().Hour()
	sleep := c.engine.NextInterval(ctx, hour)
	cycle.Night = c.engine.IsNight(ctx, hour)
	mode := "day"
	if cycle.Night {
		mode = "night"
	}
	if fetchErr != nil && c.cfg.FailureRetryInterval < sleep {
		sleep = c.cfg.FailureRetryInterval
		mode = "retry"
		logger.Info("Shortening sleep to retry the fetch sooner", zap.Duration("sleep", sleep))
	}
	cycle.SleepFor = sleep
	metrics.RecordNextWake(mode, sleep)

	c.enter(StateSuspended)
	cycle.Final = StateSuspended
	return cycle, c.suspend(ctx, logger, sleep)
}

func (c *Controller) boot(ctx context.Context) models.WakeContext {
	cause, err := c.power.WakeCause(ctx)
	if err != nil {
		c.logger.Warn("Wake cause unavailable, treating as manual", zap.Error(err))
		cause = models.WakeManual
	}
	wake := models.WakeContext{
		Cause:    cause,
		BootTime: c.now(),
		BootID:   uuid.NewString(),
	}
	metrics.RecordBoot(cause.String())
	c.logger.Info("Booted",
		zap.String("boot_id", wake.BootID),
		zap.Stringer("wake_cause", cause))
	return wake
}

func (c *Controller) resolveLocation(ctx context.Context, logger *zap.Logger, ds settings.DeviceSettings) (models.Location, bool) {
	freshLookup := ds.CachedLatitude == nil || ds.CachedLongitude == nil

	loc, err := c.resolver.Resolve(ctx, ds.City, ds.CachedLatitude, ds.CachedLongitude)
	if err != nil {
		var resolveErr *ResolveError
		if errors.As(err, &resolveErr) {
			logger.Warn("Location unresolved, using default location",
				zap.String("city", ds.City),
				zap.String("default", c.cfg.DefaultLocation.Name),
				zap.Error(err))
		} else {
			logger.Error("Location resolver failed", zap.Error(err))
		}
		def := c.cfg.DefaultLocation
		def.Resolved = true
		return def, true
	}

	if freshLookup {
		if err := settings.SaveCoordinates(ctx, c.store, loc.Latitude, loc.Longitude); err != nil {
			logger.Warn("Failed to persist coordinates", zap.Error(err))
		}
	}
	return loc, false
}

func (c *Controller) suspend(ctx context.Context, logger *zap.Logger, d time.Duration) error {
	if err := c.power.DisableNetwork(ctx); err != nil {
		logger.Warn("Failed to disable network", zap.Error(err))
	}
	if err := c.power.ArmTimerWake(ctx, d); err != nil {
		return err
	}
	logger.Info("Suspending", zap.Duration("sleep", d))
	return c.power.Suspend(ctx)
}
