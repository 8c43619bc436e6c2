package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const DefaultForecastURL = "https://api.open-meteo.com/v1"

var (
	currentFields = []string{
		"temperature_2m",
		"apparent_temperature",
		"relative_humidity_2m",
		"precipitation",
		"wind_speed_10m",
		"wind_direction_10m",
		"weather_code",
	}
	hourlyFields = []string{
		"temperature_2m",
		"precipitation_probability",
		"relative_humidity_2m",
		"pressure_msl",
		"uv_index",
		"weather_code",
	}
	dailyFields = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
		"relative_humidity_2m_mean",
		"pressure_msl_mean",
		"sunrise",
		"sunset",
	}
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

// ForecastParams selects location and unit system for a forecast request.
type ForecastParams struct {
	Latitude          float64
	Longitude         float64
	TemperatureUnit   string
	WindSpeedUnit     string
	PrecipitationUnit string
	ForecastDays      int
}

// ForecastResponse mirrors the Open-Meteo document. Numeric array elements are
// pointers so that a JSON null stays distinguishable from a value.
type ForecastResponse struct {
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Timezone  string           `json:"timezone"`
	Current   *ForecastCurrent `json:"current"`
	Hourly    struct {
		Time                     []string   `json:"time"`
		Temperature2M            []*float64 `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		RelativeHumidity2M       []*float64 `json:"relative_humidity_2m"`
		PressureMSL              []*float64 `json:"pressure_msl"`
		UVIndex                  []*float64 `json:"uv_index"`
		WeatherCode              []*float64 `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time                   []string   `json:"time"`
		Temperature2MMax       []*float64 `json:"temperature_2m_max"`
		Temperature2MMin       []*float64 `json:"temperature_2m_min"`
		PrecipitationSum       []*float64 `json:"precipitation_sum"`
		RelativeHumidity2MMean []*float64 `json:"relative_humidity_2m_mean"`
		PressureMSLMean        []*float64 `json:"pressure_msl_mean"`
		Sunrise                []string   `json:"sunrise"`
		Sunset                 []string   `json:"sunset"`
	} `json:"daily"`
}

type ForecastCurrent struct {
	Time                string   `json:"time"`
	Temperature2M       *float64 `json:"temperature_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	RelativeHumidity2M  *float64 `json:"relative_humidity_2m"`
	Precipitation       *float64 `json:"precipitation"`
	WindSpeed10M        *float64 `json:"wind_speed_10m"`
	WindDirection10M    *float64 `json:"wind_direction_10m"`
	WeatherCode         *float64 `json:"weather_code"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("openmeteo", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BuildForecastURL assembles the forecast query. Coordinates use four decimals.
func BuildForecastURL(baseURL string, p ForecastParams) string {
	days := p.ForecastDays
	if days <= 0 {
		days = 7
	}
	return fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&current=%s&hourly=%s&daily=%s"+
		"&temperature_unit=%s&wind_speed_unit=%s&precipitation_unit=%s&timezone=auto&forecast_days=%d",
		strings.TrimRight(baseURL, "/"),
		p.Latitude,
		p.Longitude,
		strings.Join(currentFields, ","),
		strings.Join(hourlyFields, ","),
		strings.Join(dailyFields, ","),
		p.TemperatureUnit,
		p.WindSpeedUnit,
		p.PrecipitationUnit,
		days,
	)
}

// GetForecast performs one forecast request and decodes the document.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, p ForecastParams) (*ForecastResponse, error) {
	data, err := c.Get(ctx, BuildForecastURL(c.baseURL, p))
	if err != nil {
		return nil, err
	}

	var response ForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &DecodeError{Op: "forecast", Err: err}
	}
	if response.Current == nil {
		return nil, &DecodeError{Op: "forecast", Err: fmt.Errorf("missing current section")}
	}

	return &response, nil
}
