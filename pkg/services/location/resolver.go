package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Resolver turns free-form location text into coordinates. Implementations return
// domain.ErrLocationNotFound when they do not know the place.
type Resolver interface {
	Resolve(ctx context.Context, query string) (domain.Coordinates, error)
}

// Chain asks each resolver in turn; the first hit wins. Errors other than
// domain.ErrLocationNotFound stop the chain.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, query string) (domain.Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: empty location", domain.ErrLocationNotFound)
	}

	for _, r := range c {
		coords, err := r.Resolve(ctx, query)
		if err == nil {
			zerolog.Ctx(ctx).Debug().
				Str("location", query).
				Stringer("coordinates", coords).
				Msgf("location resolved by %T", r)
			return coords, nil
		}
		if !errors.Is(err, domain.ErrLocationNotFound) {
			return domain.Coordinates{}, err
		}
	}
	return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, query)
}
