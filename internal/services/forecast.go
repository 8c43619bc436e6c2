package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/pkg/client"
)

// ForecastSource performs one forecast request.
type ForecastSource interface {
	GetForecast(ctx context.Context, p client.ForecastParams) (*client.ForecastResponse, error)
}

type ForecastQuery struct {
	Latitude  float64
	Longitude float64
	Units     models.Units
	LocalHour int
}

// ForecastService fetches and decodes the forecast into a WeatherSnapshot.
type ForecastService struct {
	source ForecastSource
	retry  client.RetryPolicy
	logger *zap.Logger
	now    func() time.Time
}

func NewForecastService(source ForecastSource, retry client.RetryPolicy, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry.Name = "forecast"
	retry.Logger = logger
	return &ForecastService{
		source: source,
		retry:  retry,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch returns a new snapshot built on top of prior. Fields the response does
// not carry keep their prior value. On error the returned snapshot is the zero
// value and prior is untouched.
func (s *ForecastService) Fetch(ctx context.Context, q ForecastQuery, prior models.WeatherSnapshot) (models.WeatherSnapshot, error) {
	if q.LocalHour < 0 || q.LocalHour > 23 {
		return models.WeatherSnapshot{}, &FetchError{Err: ErrInvalidHour}
	}

	params := client.ForecastParams{
		Latitude:          q.Latitude,
		Longitude:         q.Longitude,
		TemperatureUnit:   q.Units.TemperatureUnit(),
		WindSpeedUnit:     q.Units.WindSpeedUnit(),
		PrecipitationUnit: q.Units.PrecipitationUnit(),
		ForecastDays:      models.MaxDaily,
	}

	resp, attempts, err := client.Execute(ctx, s.retry, func(ctx context.Context, attempt int) (*client.ForecastResponse, error) {
		return s.source.GetForecast(ctx, params)
	})
	if err != nil {
		return models.WeatherSnapshot{}, &FetchError{Attempts: attempts, Err: err}
	}

	snap := BuildSnapshot(resp, q.LocalHour, prior)
	snap.FetchedAt = s.now()

	s.logger.Info("Forecast decoded",
		zap.Int("local_hour", q.LocalHour),
		zap.Int("hourly_slots", snap.HourlyCount),
		zap.Int("daily_slots", snap.DailyCount),
		zap.String("sunrise", snap.Sunrise),
		zap.String("sunset", snap.Sunset))

	return snap, nil
}

// BuildSnapshot merges the scalar fields of a decoded response onto prior.
// The hourly and daily series are rebuilt from scratch: slots the response does
// not fill are left at their zero value. Hourly slot i is read from source
// index localHour+i because the service indexes hourly arrays from midnight of
// the local day.
func BuildSnapshot(resp *client.ForecastResponse, localHour int, prior models.WeatherSnapshot) models.WeatherSnapshot {
	snap := prior

	if cur := resp.Current; cur != nil {
		mergeFloat(&snap.Current.Temperature, cur.Temperature2M)
		mergeFloat(&snap.Current.ApparentTemperature, cur.ApparentTemperature)
		mergeFloat(&snap.Current.Humidity, cur.RelativeHumidity2M)
		mergeFloat(&snap.Current.Precipitation, cur.Precipitation)
		mergeFloat(&snap.Current.WindSpeed, cur.WindSpeed10M)
		mergeFloat(&snap.Current.WindDirectionDeg, cur.WindDirection10M)
		mergeCode(&snap.Current.WeatherCode, cur.WeatherCode)
	}

	if len(resp.Daily.Sunrise) > 0 {
		mergeClock(&snap.Sunrise, resp.Daily.Sunrise[0])
	}
	if len(resp.Daily.Sunset) > 0 {
		mergeClock(&snap.Sunset, resp.Daily.Sunset[0])
	}

	snap.Hourly = [models.MaxHourly]models.HourlyPoint{}
	snap.Daily = [models.MaxDaily]models.DailyPoint{}

	h := resp.Hourly
	required := minLen(len(h.Temperature2M), len(h.PrecipitationProbability),
		len(h.RelativeHumidity2M), len(h.PressureMSL), len(h.WeatherCode))
	count := 0
	for i := 0; i < models.MaxHourly && localHour+i < required; i++ {
		src := localHour + i
		slot := &snap.Hourly[i]
		mergeFloat(&slot.Temp, h.Temperature2M[src])
		mergeFloat(&slot.PrecipProbability, h.PrecipitationProbability[src])
		mergeFloat(&slot.Humidity, h.RelativeHumidity2M[src])
		mergeFloat(&slot.Pressure, h.PressureMSL[src])
		mergeCode(&slot.WeatherCode, h.WeatherCode[src])
		if src < len(h.UVIndex) {
			mergeFloat(&slot.UVIndex, h.UVIndex[src])
		}
		count++
	}
	snap.HourlyCount = count

	d := resp.Daily
	days := minLen(models.MaxDaily, len(d.Temperature2MMax))
	for i := 0; i < days; i++ {
		slot := &snap.Daily[i]
		mergeFloat(&slot.MaxTemp, d.Temperature2MMax[i])
		mergeAt(&slot.MinTemp, d.Temperature2MMin, i)
		mergeAt(&slot.RainSum, d.PrecipitationSum, i)
		mergeAt(&slot.HumidityMean, d.RelativeHumidity2MMean, i)
		mergeAt(&slot.PressureMean, d.PressureMSLMean, i)
	}
	snap.DailyCount = days

	if len(d.Temperature2MMax) > 0 && len(d.Temperature2MMin) > 0 &&
		d.Temperature2MMax[0] != nil && d.Temperature2MMin[0] != nil {
		snap.TodayMaxTemp = *d.Temperature2MMax[0]
		snap.TodayMinTemp = *d.Temperature2MMin[0]
		snap.HasTodayRange = true
	}

	return snap
}

func mergeFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func mergeCode(dst *int, v *float64) {
	if v != nil {
		*dst = int(math.Round(*v))
	}
}

func mergeAt(dst *float64, src []*float64, i int) {
	if i < len(src) {
		mergeFloat(dst, src[i])
	}
}

// mergeClock extracts "HH:MM" from an ISO local time like 2024-01-15T06:42.
func mergeClock(dst *string, iso string) {
	if len(iso) <= 10 {
		return
	}
	end := 16
	if len(iso) < end {
		end = len(iso)
	}
	*dst = iso[11:end]
}

func minLen(first int, rest ...int) int {
	m := first
	for _, n := range rest {
		if n < m {
			m = n
		}
	}
	return m
}
