package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1"

type GeocodingClient struct {
	*BaseClient
	baseURL string
}

type GeoResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geocodingResponse struct {
	Results []GeoResult `json:"results"`
}

func NewGeocodingClient(baseURL string, config ClientConfig, logger *zap.Logger) *GeocodingClient {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &GeocodingClient{
		BaseClient: NewBaseClient("geocoding", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// EncodeName percent-encodes a place name for the query string: space becomes
// '+', letters, digits and "-_.~" pass through, every other byte is %XX.
func EncodeName(name string) string {
	return url.QueryEscape(name)
}

func (c *GeocodingClient) SearchURL(name string) string {
	return fmt.Sprintf("%s/search?name=%s&count=1&language=en&format=json", c.baseURL, EncodeName(name))
}

// Search looks up a single best match for name.
func (c *GeocodingClient) Search(ctx context.Context, name string) (GeoResult, error) {
	data, err := c.Get(ctx, c.SearchURL(name))
	if err != nil {
		return GeoResult{}, err
	}

	var response geocodingResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return GeoResult{}, &DecodeError{Op: "geocoding", Err: err}
	}
	if len(response.Results) == 0 {
		return GeoResult{}, fmt.Errorf("geocoding %q: %w", name, ErrNoResults)
	}

	return response.Results[0], nil
}
