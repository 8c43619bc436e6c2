package render

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/internal/services"
)

// LogRenderer writes the view to the log instead of a panel. It stands in for
// the e-paper renderer on hosts without a display.
type LogRenderer struct {
	logger *zap.Logger
}

func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(ctx context.Context, v services.View) error {
	if v.FetchErr != nil {
		r.logger.Warn("Failed to fetch weather, will retry soon",
			zap.String("location", v.Location.Name),
			zap.Bool("has_previous_data", v.Snapshot != nil && !v.Snapshot.Empty()),
			zap.Error(v.FetchErr))
	}
	if v.Snapshot == nil || v.Snapshot.Empty() {
		return nil
	}

	s := v.Snapshot
	hour := v.Now.Hour()
	daytime := s.IsDaytime(hour)

	r.logger.Info("Current conditions",
		zap.String("location", v.Location.Name),
		zap.Float64("latitude", v.Location.Latitude),
		zap.Float64("longitude", v.Location.Longitude),
		zap.String("temperature", formatTemp(s.Current.Temperature, v.Units)),
		zap.String("feels_like", formatTemp(s.Current.ApparentTemperature, v.Units)),
		zap.String("condition", models.ConditionText(s.Current.WeatherCode)),
		zap.String("icon", models.ConditionIcon(s.Current.WeatherCode, daytime)),
		zap.Float64("humidity", s.Current.Humidity),
		zap.Float64("wind_speed", s.Current.WindSpeed),
		zap.Float64("wind_direction", s.Current.WindDirectionDeg),
		zap.String("sunrise", s.Sunrise),
		zap.String("sunset", s.Sunset),
		zap.Float64("moon_phase", models.MoonPhase(v.Now)))

	if s.HasTodayRange {
		r.logger.Info("Today",
			zap.String("min", formatTemp(s.TodayMinTemp, v.Units)),
			zap.String("max", formatTemp(s.TodayMaxTemp, v.Units)))
	}

	for i := 0; i < s.HourlyCount; i++ {
		p := s.Hourly[i]
		r.logger.Debug("Hourly",
			zap.Int("hour", (hour+1+i)%24),
			zap.String("temperature", formatTemp(p.Temp, v.Units)),
			zap.Float64("precip_probability", p.PrecipProbability),
			zap.Float64("uv_index", p.UVIndex),
			zap.String("condition", models.ConditionText(p.WeatherCode)))
	}
	for i := 0; i < s.DailyCount; i++ {
		d := s.Daily[i]
		r.logger.Debug("Daily",
			zap.Int("day", i),
			zap.String("max", formatTemp(d.MaxTemp, v.Units)),
			zap.String("min", formatTemp(d.MinTemp, v.Units)),
			zap.Float64("rain_sum", d.RainSum))
	}
	return nil
}

func formatTemp(v float64, u models.Units) string {
	return fmt.Sprintf("%.1f%s", v, u.Symbol())
}

var _ services.Renderer = (*LogRenderer)(nil)
