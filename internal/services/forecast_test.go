package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/pkg/client"
)

type fakeSource struct {
	calls  int
	params []client.ForecastParams
	fail   int
	err    error
	resp   *client.ForecastResponse
}

func (f *fakeSource) GetForecast(ctx context.Context, p client.ForecastParams) (*client.ForecastResponse, error) {
	f.calls++
	f.params = append(f.params, p)
	if f.calls <= f.fail {
		return nil, f.err
	}
	return f.resp, nil
}

func series(n int, f func(i int) float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		v := f(i)
		out[i] = &v
	}
	return out
}

func dayResponse(hours int) *client.ForecastResponse {
	resp := &client.ForecastResponse{}
	resp.Current = &client.ForecastCurrent{
		Temperature2M: ptr(21.5),
		WeatherCode:   ptr(61),
	}
	resp.Hourly.Temperature2M = series(hours, func(i int) float64 { return float64(100 + i) })
	resp.Hourly.PrecipitationProbability = series(hours, func(i int) float64 { return float64(i) })
	resp.Hourly.RelativeHumidity2M = series(hours, func(i int) float64 { return 50 })
	resp.Hourly.PressureMSL = series(hours, func(i int) float64 { return 1000 + float64(i) })
	resp.Hourly.UVIndex = series(hours, func(i int) float64 { return float64(i) / 2 })
	resp.Hourly.WeatherCode = series(hours, func(i int) float64 { return 3 })

	resp.Daily.Temperature2MMax = series(7, func(i int) float64 { return 20 + float64(i) })
	resp.Daily.Temperature2MMin = series(7, func(i int) float64 { return 10 + float64(i) })
	resp.Daily.PrecipitationSum = series(7, func(i int) float64 { return float64(i) })
	resp.Daily.RelativeHumidity2MMean = series(7, func(i int) float64 { return 60 })
	resp.Daily.PressureMSLMean = series(7, func(i int) float64 { return 1010 })
	resp.Daily.Sunrise = []string{"2024-06-01T06:42"}
	resp.Daily.Sunset = []string{"2024-06-01T17:09"}
	return resp
}

func TestHourAlignment(t *testing.T) {
	snap := BuildSnapshot(dayResponse(24), 14, models.WeatherSnapshot{})

	for i := 0; i < models.MaxHourly; i++ {
		if 14+i < 24 {
			assert.Equal(t, float64(100+14+i), snap.Hourly[i].Temp, "slot %d", i)
			assert.Equal(t, float64(14+i)/2, snap.Hourly[i].UVIndex, "slot %d", i)
		}
	}
	assert.Equal(t, models.MaxHourly, snap.HourlyCount)
}

func TestHourAlignmentTruncatesAtEndOfSeries(t *testing.T) {
	snap := BuildSnapshot(dayResponse(24), 20, models.WeatherSnapshot{})

	assert.Equal(t, 4, snap.HourlyCount)
	for i := 0; i < 4; i++ {
		assert.Equal(t, float64(120+i), snap.Hourly[i].Temp)
	}
	for i := 4; i < models.MaxHourly; i++ {
		assert.Equal(t, models.HourlyPoint{}, snap.Hourly[i], "slot %d left at default", i)
	}
}

func TestUVIndexIsOptional(t *testing.T) {
	resp := dayResponse(24)
	resp.Hourly.UVIndex = resp.Hourly.UVIndex[:3]
	resp.Hourly.UVIndex[1] = nil

	snap := BuildSnapshot(resp, 0, models.WeatherSnapshot{})

	assert.Equal(t, models.MaxHourly, snap.HourlyCount)
	assert.Equal(t, 0.0, snap.Hourly[0].UVIndex)
	assert.Equal(t, 0.0, snap.Hourly[1].UVIndex)
	assert.Equal(t, 1.0, snap.Hourly[2].UVIndex)
	assert.Equal(t, 0.0, snap.Hourly[5].UVIndex)
}

func TestShortRequiredHourlyArrayBoundsSlots(t *testing.T) {
	resp := dayResponse(24)
	resp.Hourly.PressureMSL = resp.Hourly.PressureMSL[:10]

	snap := BuildSnapshot(resp, 6, models.WeatherSnapshot{})
	assert.Equal(t, 4, snap.HourlyCount)
}

func TestDailyAndCurrentDecoding(t *testing.T) {
	snap := BuildSnapshot(dayResponse(24), 0, models.WeatherSnapshot{})

	assert.Equal(t, 21.5, snap.Current.Temperature)
	assert.Equal(t, 61, snap.Current.WeatherCode)
	assert.Equal(t, "06:42", snap.Sunrise)
	assert.Equal(t, "17:09", snap.Sunset)
	assert.Equal(t, 7, snap.DailyCount)
	assert.Equal(t, 26.0, snap.Daily[6].MaxTemp)
	assert.Equal(t, 16.0, snap.Daily[6].MinTemp)
	assert.True(t, snap.HasTodayRange)
	assert.Equal(t, 20.0, snap.TodayMaxTemp)
	assert.Equal(t, 10.0, snap.TodayMinTemp)
}

func TestPartialFieldsKeepPriorValues(t *testing.T) {
	prior := models.WeatherSnapshot{Sunrise: "05:55", Sunset: "20:01"}
	prior.Current.ApparentTemperature = 12
	prior.Daily[2].PressureMean = 999
	prior.Daily[2].MinTemp = 3

	resp := dayResponse(24)
	resp.Daily.Sunrise = []string{"2024-06-01"}
	resp.Daily.Sunset = nil
	resp.Daily.PressureMSLMean = resp.Daily.PressureMSLMean[:2]
	resp.Daily.Temperature2MMin = nil

	snap := BuildSnapshot(resp, 0, prior)

	assert.Equal(t, "05:55", snap.Sunrise, "short sunrise string leaves prior value")
	assert.Equal(t, "20:01", snap.Sunset)
	assert.Equal(t, 12.0, snap.Current.ApparentTemperature)
	assert.Equal(t, 0.0, snap.Daily[2].PressureMean, "daily series never carry prior values")
	assert.Equal(t, 0.0, snap.Daily[2].MinTemp)
	assert.Equal(t, 1010.0, snap.Daily[1].PressureMean)
	assert.False(t, snap.HasTodayRange, "needs both min and max")
	assert.Equal(t, 7, snap.DailyCount)
}

func TestSeriesAreRebuiltOverPriorSnapshot(t *testing.T) {
	prior := BuildSnapshot(dayResponse(24), 10, models.WeatherSnapshot{})
	require.Equal(t, models.MaxHourly, prior.HourlyCount)

	snap := BuildSnapshot(dayResponse(24), 20, prior)

	assert.Equal(t, 4, snap.HourlyCount)
	for i := 0; i < 4; i++ {
		assert.Equal(t, float64(120+i), snap.Hourly[i].Temp, "slot %d", i)
	}
	for i := 4; i < models.MaxHourly; i++ {
		assert.Equal(t, models.HourlyPoint{}, snap.Hourly[i], "slot %d left at default", i)
	}
}

func TestMissingSeriesClearPriorSlots(t *testing.T) {
	prior := BuildSnapshot(dayResponse(24), 10, models.WeatherSnapshot{})
	require.Equal(t, 7, prior.DailyCount)

	resp := dayResponse(24)
	resp.Hourly.Temperature2M = nil
	resp.Daily.Temperature2MMax = nil

	snap := BuildSnapshot(resp, 10, prior)

	assert.Equal(t, 0, snap.HourlyCount)
	assert.Equal(t, 0, snap.DailyCount)
	assert.Equal(t, [models.MaxHourly]models.HourlyPoint{}, snap.Hourly)
	assert.Equal(t, [models.MaxDaily]models.DailyPoint{}, snap.Daily)
	assert.Equal(t, 21.5, snap.Current.Temperature, "scalar fields still merge")
}

func TestFetchRetriesAndBuildsQuery(t *testing.T) {
	src := &fakeSource{
		fail: 2,
		err:  &client.NetworkError{Op: "openmeteo", StatusCode: 502},
		resp: dayResponse(24),
	}
	svc := NewForecastService(src, client.RetryPolicy{MaxAttempts: 3}, nil)

	snap, err := svc.Fetch(context.Background(), ForecastQuery{
		Latitude: 1.5, Longitude: 2.5, Units: models.Celsius, LocalHour: 3,
	}, models.WeatherSnapshot{})
	require.NoError(t, err)

	assert.Equal(t, 3, src.calls)
	assert.Equal(t, "celsius", src.params[0].TemperatureUnit)
	assert.Equal(t, "kmh", src.params[0].WindSpeedUnit)
	assert.Equal(t, "mm", src.params[0].PrecipitationUnit)
	assert.Equal(t, 7, src.params[0].ForecastDays)
	assert.Equal(t, 103.0, snap.Hourly[0].Temp)
	assert.False(t, snap.Empty())
}

func TestFetchFailsAfterAllAttempts(t *testing.T) {
	src := &fakeSource{fail: 10, err: &client.DecodeError{Op: "forecast", Err: errors.New("bad json")}}
	svc := NewForecastService(src, client.RetryPolicy{MaxAttempts: 3}, nil)

	snap, err := svc.Fetch(context.Background(), ForecastQuery{Units: models.Fahrenheit, LocalHour: 12}, models.WeatherSnapshot{})
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 3, fetchErr.Attempts)
	var decErr *client.DecodeError
	assert.True(t, errors.As(err, &decErr))
	assert.Equal(t, 3, src.calls)
	assert.True(t, snap.Empty())
}

func TestFetchRejectsInvalidHour(t *testing.T) {
	src := &fakeSource{resp: dayResponse(24)}
	svc := NewForecastService(src, client.RetryPolicy{MaxAttempts: 3}, nil)

	for _, h := range []int{-1, 24} {
		_, err := svc.Fetch(context.Background(), ForecastQuery{LocalHour: h}, models.WeatherSnapshot{})
		assert.ErrorIs(t, err, ErrInvalidHour)
	}
	assert.Zero(t, src.calls)
}
