package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Cache stores geocoder answers keyed by normalized query.
type Cache interface {
	Get(ctx context.Context, query string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, query string, coords domain.Coordinates) error
}

type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond throttles outbound calls; Nominatim's usage policy allows 1.
	RequestsPerSecond float64
}

// Geocoder queries a Nominatim compatible /search endpoint.
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	cache     Cache
}

func NewGeocoder(cfg GeocoderConfig, cache Cache) (*Geocoder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("geocoder base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid geocoder url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	return &Geocoder{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:     cache,
	}, nil
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) Resolve(ctx context.Context, query string) (domain.Coordinates, error) {
	logger := zerolog.Ctx(ctx)
	key := normalizeName(query)

	if g.cache != nil {
		coords, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("location", key).Msg("geocode cache read failed")
		} else if ok {
			return coords, nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrUpstreamGeocoder, err)
	}

	coords, err := g.search(ctx, query)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, key, coords); err != nil {
			logger.Warn().Err(err).Str("location", key).Msg("geocode cache write failed")
		}
	}
	return coords, nil
}

func (g *Geocoder) search(ctx context.Context, query string) (domain.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrUpstreamGeocoder, err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrUpstreamGeocoder, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("%w: status %d", domain.ErrUpstreamGeocoder, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamGeocoder, err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, domain.ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: bad latitude %q", domain.ErrUpstreamGeocoder, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: bad longitude %q", domain.ErrUpstreamGeocoder, results[0].Lon)
	}
	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
