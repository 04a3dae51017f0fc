package location

import (
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

//go:embed data/places.ini
var builtinPlaces []byte

// Gazetteer resolves place names from an INI file with one section per place:
//
//	[Karachi]
//	lat = 24.8607
//	lon = 67.0011
type Gazetteer struct {
	path string

	mu     sync.RWMutex
	places map[string]domain.Coordinates
}

// NewGazetteer loads path, or the built-in place list when path is empty.
func NewGazetteer(path string) (*Gazetteer, error) {
	g := &Gazetteer{path: path}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gazetteer) Resolve(_ context.Context, query string) (domain.Coordinates, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	coords, ok := g.places[normalizeName(query)]
	if !ok {
		return domain.Coordinates{}, domain.ErrLocationNotFound
	}
	return coords, nil
}

// Len returns the number of known places.
func (g *Gazetteer) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.places)
}

// Reload re-reads the source and swaps the table in one step. On error the
// previous table stays in place.
func (g *Gazetteer) Reload() error {
	var source any = builtinPlaces
	if g.path != "" {
		source = g.path
	}

	cfg, err := ini.Load(source)
	if err != nil {
		return fmt.Errorf("failed to load gazetteer: %w", err)
	}

	places := make(map[string]domain.Coordinates)
	for _, section := range cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		lat, err := section.Key("lat").Float64()
		if err != nil {
			return fmt.Errorf("place %q: invalid lat: %w", section.Name(), err)
		}
		lon, err := section.Key("lon").Float64()
		if err != nil {
			return fmt.Errorf("place %q: invalid lon: %w", section.Name(), err)
		}
		coords := domain.Coordinates{Latitude: lat, Longitude: lon}
		if !coords.Valid() {
			return fmt.Errorf("place %q: coordinates out of range", section.Name())
		}
		places[normalizeName(section.Name())] = coords
	}

	g.mu.Lock()
	g.places = places
	g.mu.Unlock()
	return nil
}

// Watch reloads the gazetteer whenever its file changes, until ctx is done. It is a
// no-op for the built-in list. The directory is watched so that editors replacing
// the file are noticed.
func (g *Gazetteer) Watch(ctx context.Context) error {
	if g.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(g.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", g.path, err)
	}

	logger := zerolog.Ctx(ctx)
	target := filepath.Clean(g.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if err := g.Reload(); err != nil {
					logger.Error().Err(err).Str("path", g.path).Msg("gazetteer reload failed")
					continue
				}
				logger.Info().Str("path", g.path).Int("places", g.Len()).Msg("gazetteer reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error().Err(err).Msg("gazetteer watcher error")
			}
		}
	}()
	return nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
