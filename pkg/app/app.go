package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/config"
	"github.com/de-tools/jyotish-atlas/pkg/metrics"
	"github.com/de-tools/jyotish-atlas/pkg/services/analysis"
	"github.com/de-tools/jyotish-atlas/pkg/services/chart"
	"github.com/de-tools/jyotish-atlas/pkg/services/ephemeris"
	"github.com/de-tools/jyotish-atlas/pkg/services/events"
	"github.com/de-tools/jyotish-atlas/pkg/services/location"
	"github.com/de-tools/jyotish-atlas/pkg/services/orchestrator"
	"github.com/de-tools/jyotish-atlas/pkg/services/report"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb/geocache"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb/reports"
	s3sink "github.com/de-tools/jyotish-atlas/pkg/store/s3"
	"github.com/rs/zerolog"
)

// App is the dependency graph shared by the web server and the CLI.
type App struct {
	Service *orchestrator.Service
	Metrics *metrics.Metrics
	Reports reports.Store

	closers []func()
}

// NewLogger builds the root logger at the configured level.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Build wires every component from cfg. The logger is taken from ctx.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)
	a := &App{Metrics: metrics.New()}

	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	zodiac, err := ephemeris.ParseZodiac(cfg.Chart.Zodiac)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.Storage.DbPath != "" {
		db, err = duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DbPath})
		if err != nil {
			return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })

		a.Reports, err = reports.NewStore(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create report store: %w", err)
		}
	}

	resolver, err := a.buildResolver(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	computer, err := chart.NewAdapter(ephemeris.New(zodiac), resolver)
	if err != nil {
		return nil, err
	}

	sinks, err := a.buildSinks(ctx, cfg)
	if err != nil {
		return nil, err
	}
	exporter := report.NewExporter(report.Settings{
		OutputDir:   cfg.Export.OutputDir,
		RichFormats: cfg.Export.RichFormats,
	}, report.WithSinks(sinks...))

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		p, closeFn, err := events.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeFn)
		publisher = p
		logger.Info().Str("url", cfg.NATS.URL).Str("subject", cfg.NATS.Subject).Msg("publishing analysis events")
	}

	a.Service, err = orchestrator.New(computer, analysis.NewRegistry(),
		orchestrator.WithExporter(exporter),
		orchestrator.WithPublisher(publisher),
		orchestrator.WithMetrics(a.Metrics),
	)
	if err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

func (a *App) buildResolver(ctx context.Context, cfg *config.Config, db *sql.DB) (location.Resolver, error) {
	logger := zerolog.Ctx(ctx)

	gazetteer, err := location.NewGazetteer(cfg.Location.GazetteerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gazetteer: %w", err)
	}
	if cfg.Location.GazetteerPath != "" && cfg.Location.WatchGazetteer {
		watchCtx, cancel := context.WithCancel(ctx)
		a.closers = append(a.closers, cancel)
		if err := gazetteer.Watch(watchCtx); err != nil {
			return nil, err
		}
	}
	logger.Info().Int("places", gazetteer.Len()).Msg("gazetteer loaded")

	chain := location.Chain{location.Literal{}, gazetteer}
	if cfg.Location.GeocoderURL != "" {
		geocoder, err := a.buildGeocoder(cfg, db)
		if err != nil {
			return nil, err
		}
		chain = append(chain, geocoder)
	}

	if !cfg.Location.Strict {
		fallback, err := location.ParseDefault(cfg.Location.DefaultCoordinates)
		if err != nil {
			return nil, err
		}
		chain = append(chain, fallback)
	}
	return chain, nil
}

func (a *App) buildGeocoder(cfg *config.Config, db *sql.DB) (*location.Geocoder, error) {
	var cache location.Cache
	if db != nil {
		store, err := geocache.NewStore(db, cfg.Location.GeocodeCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create geocode cache: %w", err)
		}
		cache = store
	}

	return location.NewGeocoder(location.GeocoderConfig{
		BaseURL:   cfg.Location.GeocoderURL,
		UserAgent: cfg.Location.GeocoderUserAgent,
		Timeout:   cfg.Location.GeocoderTimeout,
	}, cache)
}

func (a *App) buildSinks(ctx context.Context, cfg *config.Config) ([]report.Sink, error) {
	var sinks []report.Sink
	if a.Reports != nil {
		sinks = append(sinks, report.NewIndexSink(a.Reports))
	}

	if cfg.S3.Bucket != "" {
		settings := s3sink.Settings{
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.S3.Prefix,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			Profile:  cfg.S3.Profile,
		}
		awsCfg, err := s3sink.LoadConfig(ctx, settings)
		if err != nil {
			return nil, err
		}
		sink, err := s3sink.NewSink(awsCfg, settings)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// Close releases connections and stops background watchers.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
