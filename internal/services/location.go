package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/metrics"
	"github.com/bobby-s-dev/weather-paper/internal/models"
	"github.com/bobby-s-dev/weather-paper/pkg/client"
)

// Geocoder looks up one place by name.
type Geocoder interface {
	Search(ctx context.Context, name string) (client.GeoResult, error)
}

// LocationResolver turns a place name into coordinates. It never writes to
// storage; persisting a fresh result is up to the caller.
type LocationResolver struct {
	geocoder Geocoder
	retry    client.RetryPolicy
	logger   *zap.Logger
}

func NewLocationResolver(geocoder Geocoder, retry client.RetryPolicy, logger *zap.Logger) *LocationResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry.Name = "geocoding"
	retry.Logger = logger
	return &LocationResolver{
		geocoder: geocoder,
		retry:    retry,
		logger:   logger,
	}
}

// Resolve returns the cached coordinates when both are present and in range,
// otherwise geocodes name. On failure it returns a *ResolveError and no
// coordinates.
func (r *LocationResolver) Resolve(ctx context.Context, name string, cachedLat, cachedLon *float64) (models.Location, error) {
	if cachedLat != nil && cachedLon != nil && models.ValidCoordinates(*cachedLat, *cachedLon) {
		metrics.RecordGeocodeCache(true)
		r.logger.Debug("Using stored coordinates",
			zap.String("city", name),
			zap.Float64("latitude", *cachedLat),
			zap.Float64("longitude", *cachedLon))
		return models.Location{
			Name:      name,
			Latitude:  *cachedLat,
			Longitude: *cachedLon,
			Resolved:  true,
		}, nil
	}

	metrics.RecordGeocodeCache(false)
	r.logger.Info("Geocoding city", zap.String("city", name))

	result, _, err := client.Execute(ctx, r.retry, func(ctx context.Context, attempt int) (client.GeoResult, error) {
		res, err := r.geocoder.Search(ctx, name)
		if err != nil {
			return client.GeoResult{}, err
		}
		if !models.ValidCoordinates(res.Latitude, res.Longitude) {
			return client.GeoResult{}, &client.DecodeError{
				Op:  "geocoding",
				Err: fmt.Errorf("coordinates out of range: %f,%f", res.Latitude, res.Longitude),
			}
		}
		return res, nil
	})
	if err != nil {
		return models.Location{Name: name}, &ResolveError{Name: name, Err: err}
	}

	r.logger.Info("City geocoded",
		zap.String("city", name),
		zap.String("match", result.Name),
		zap.String("country", result.Country),
		zap.Float64("latitude", result.Latitude),
		zap.Float64("longitude", result.Longitude))

	return models.Location{
		Name:      name,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		Resolved:  true,
	}, nil
}
