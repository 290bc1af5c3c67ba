package geocode

import (
	"context"

	"go.uber.org/zap"
)

// queryStep is one fallible strategy of the wide cascade. A step either
// yields a coordinate pair or an error; errors never propagate past the step
// that raised them.
type queryStep struct {
	name string
	fn   func(ctx context.Context, daddr, fullURL string) (lat, lon float64, err error)
}

// querySteps is the wide cascade, in strict order. First success wins.
func (r *Resolver) querySteps() []queryStep {
	return []queryStep{
		{"nominatim", func(ctx context.Context, daddr, _ string) (float64, float64, error) {
			loc, err := r.forwardNominatim(ctx, daddr)
			if err != nil {
				return 0, 0, err
			}
			if loc == nil {
				return 0, 0, errNoResult
			}
			return *loc.Lat, *loc.Lon, nil
		}},
		{"photon", func(ctx context.Context, daddr, _ string) (float64, float64, error) {
			return r.forwardPhoton(ctx, daddr)
		}},
		{"pb-scrape", func(_ context.Context, _, fullURL string) (float64, float64, error) {
			return scrapePB(fullURL)
		}},
		{"icbm-meta", func(ctx context.Context, _, fullURL string) (float64, float64, error) {
			return r.scrapeICBM(ctx, fullURL)
		}},
		{"polyline", func(_ context.Context, _, fullURL string) (float64, float64, error) {
			return decodePolylineParam(fullURL)
		}},
		{"geonames", func(ctx context.Context, daddr, _ string) (float64, float64, error) {
			return r.forwardGeoNames(ctx, daddr)
		}},
		{"region-retry", func(ctx context.Context, daddr, _ string) (float64, float64, error) {
			loc, err := r.forwardNominatim(ctx, daddr+", "+r.region)
			if err != nil {
				return 0, 0, err
			}
			if loc == nil {
				return 0, 0, errNoResult
			}
			return *loc.Lat, *loc.Lon, nil
		}},
	}
}

// ResolveQuery runs the wide cascade for an opaque mobile-app destination.
// It returns a "lat, lon" string suitable for Resolve, or "" when every step
// misses.
func (r *Resolver) ResolveQuery(ctx context.Context, daddr, fullURL string) string {
	for _, step := range r.querySteps() {
		lat, lon, err := step.fn(ctx, daddr, fullURL)
		if err != nil {
			zap.L().Debug("geocode: cascade step missed",
				zap.String("step", step.name),
				zap.Error(err),
			)
			continue
		}
		zap.L().Debug("geocode: cascade step hit",
			zap.String("step", step.name),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
		)
		return formatCoordPair(lat, lon)
	}
	return ""
}
