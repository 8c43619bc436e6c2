package portal

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/settings"
)

// SettingsForm is the body of POST /api/v1/settings, as JSON or form data.
type SettingsForm struct {
	SSID          string `json:"ssid" form:"ssid" validate:"required,max=32"`
	Password      string `json:"password,omitempty" form:"password" validate:"max=64"`
	City          string `json:"city" form:"city" validate:"required,max=64"`
	Latitude      string `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude     string `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	TempUnit      string `json:"tempunit" form:"tempunit" validate:"required,oneof=C F"`
	NightMode     bool   `json:"nightmode" form:"nightmode"`
	DayInterval   int    `json:"day_interval" form:"day_interval" validate:"min=5,max=120"`
	NightInterval int    `json:"night_interval" form:"night_interval" validate:"min=15,max=240"`
	NightStart    int    `json:"night_start" form:"night_start" validate:"min=0,max=23"`
	NightEnd      int    `json:"night_end" form:"night_end" validate:"min=0,max=23"`
}

type Handler struct {
	store    *settings.Store
	validate *validator.Validate
	logger   *zap.Logger
	saved    chan struct{}
}

func NewHandler(store *settings.Store, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		validate: validator.New(),
		logger:   logger,
		saved:    make(chan struct{}, 1),
	}
}

// Saved is signalled after every successful settings update.
func (h *Handler) Saved() <-chan struct{} {
	return h.saved
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "configuring",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

// GetSettings handles GET /api/v1/settings
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	s, err := settings.LoadPortalSettings(c.UserContext(), h.store)
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load settings")
	}

	form := SettingsForm{
		SSID:          s.SSID,
		City:          s.City,
		TempUnit:      s.Units.Code(),
		NightMode:     s.Policy.NightModeEnabled,
		DayInterval:   s.Policy.DayIntervalMinutes,
		NightInterval: s.Policy.NightIntervalMinutes,
		NightStart:    s.Policy.NightStartHour,
		NightEnd:      s.Policy.NightEndHour,
	}
	if s.Latitude != nil && s.Longitude != nil {
		form.Latitude = strconv.FormatFloat(*s.Latitude, 'f', 4, 64)
		form.Longitude = strconv.FormatFloat(*s.Longitude, 'f', 4, 64)
	}
	return c.JSON(form)
}

// SaveSettings handles POST /api/v1/settings
func (h *Handler) SaveSettings(c *fiber.Ctx) error {
	var form SettingsForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	form.SSID = strings.TrimSpace(form.SSID)
	form.City = strings.TrimSpace(form.City)
	form.Latitude = strings.TrimSpace(form.Latitude)
	form.Longitude = strings.TrimSpace(form.Longitude)
	form.TempUnit = strings.ToUpper(strings.TrimSpace(form.TempUnit))

	if err := h.validate.Struct(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "validation failed",
			"fields":  fieldErrors(err),
		})
	}

	in := settings.PortalSettings{
		SSID:     form.SSID,
		Password: form.Password,
		City:     form.City,
		Units:    models.ParseUnits(form.TempUnit),
		Policy: models.SchedulePolicy{
			DayIntervalMinutes:   form.DayInterval,
			NightIntervalMinutes: form.NightInterval,
			NightStartHour:       form.NightStart,
			NightEndHour:         form.NightEnd,
			NightModeEnabled:     form.NightMode,
		},
	}
	if form.Latitude != "" && form.Longitude != "" {
		lat, errLat := strconv.ParseFloat(form.Latitude, 64)
		lon, errLon := strconv.ParseFloat(form.Longitude, 64)
		if errLat != nil || errLon != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid coordinates")
		}
		in.Latitude, in.Longitude = &lat, &lon
	}

	if err := settings.SavePortalSettings(c.UserContext(), h.store, in); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
	}

	h.logger.Info("Settings saved",
		zap.String("city", in.City),
		zap.Bool("coordinates_set", in.Latitude != nil),
		zap.String("tempunit", form.TempUnit),
		zap.Int("day_interval", form.DayInterval),
		zap.Int("night_interval", form.NightInterval))

	select {
	case h.saved <- struct{}{}:
	default:
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"restarting": true,
	})
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

var startTime = time.Now()
