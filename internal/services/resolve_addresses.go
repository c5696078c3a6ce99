package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"
	"visit-model-service/internal/ports"

	"golang.org/x/time/rate"
)

// AddressResolver fills in coordinates for occurrences that only carry an
// address. Lookups go cache first, then the geocoder, paced by a limiter.
// One resolver belongs to one run: failed addresses are remembered for the
// rest of the run and never retried.
type AddressResolver struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
	limiter  *rate.Limiter
	failed   map[string]struct{}
}

// NewAddressResolver paces geocoder calls at least delay apart. A zero delay
// disables pacing. geocoder may be nil, in which case only the cache and
// source coordinates are used.
func NewAddressResolver(geocoder ports.Geocoder, cache ports.GeocodeCache, delay time.Duration) *AddressResolver {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &AddressResolver{
		geocoder: geocoder,
		cache:    cache,
		limiter:  rate.NewLimiter(limit, 1),
		failed:   make(map[string]struct{}),
	}
}

// Resolve returns the occurrences that have coordinates after lookup.
// Occurrences that cannot be located are dropped and reported. The only
// error is a cancelled context.
func (a *AddressResolver) Resolve(
	ctx context.Context,
	occs []domain.VisitOccurrence,
	report *BuildReport,
) (_ []domain.VisitOccurrence, err error) {
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	out := make([]domain.VisitOccurrence, 0, len(occs))
	dropped := make(map[string]struct{})

	for _, occ := range occs {
		if !occ.Location.IsZero() {
			out = append(out, occ)
			continue
		}

		c, ok, err := a.lookup(ctx, occ.Address, report)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.inc(func(r *BuildReport) { r.MissingCoordinates++ })
			if _, seen := dropped[occ.SourceID]; !seen {
				dropped[occ.SourceID] = struct{}{}
				report.record(domain.Skipped(occ.SourceID, domain.ReasonMissingCoordinates))
			}
			continue
		}

		occ.Location = c
		out = append(out, occ)
	}

	if len(dropped) > 0 {
		log.Printf("resolver: dropped occurrences without coordinates sources=%d", len(dropped))
	}
	return out, nil
}

// lookup reports ok=false for addresses that cannot be located. Cache
// errors degrade to a geocoder call.
func (a *AddressResolver) lookup(ctx context.Context, address string, report *BuildReport) (domain.Coordinates, bool, error) {
	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return domain.Coordinates{}, false, nil
	}
	if _, bad := a.failed[norm]; bad {
		return domain.Coordinates{}, false, nil
	}

	if a.cache != nil {
		c, hit, err := a.cache.Get(ctx, norm)
		if err != nil {
			log.Printf("resolver: cache get failed address=%q err=%v", norm, err)
		} else if hit {
			report.inc(func(r *BuildReport) { r.GeocodeCacheHits++ })
			return c, true, nil
		}
	}

	if a.geocoder == nil {
		a.failed[norm] = struct{}{}
		return domain.Coordinates{}, false, nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("resolve %q: %w", norm, err)
	}

	report.inc(func(r *BuildReport) { r.GeocodeCalls++ })
	c, err := a.geocoder.Geocode(ctx, norm)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Coordinates{}, false, fmt.Errorf("resolve %q: %w", norm, ctxErr)
		}
		log.Printf("resolver: geocode failed address=%q err=%v", norm, err)
		a.failed[norm] = struct{}{}
		return domain.Coordinates{}, false, nil
	}

	if a.cache != nil {
		if err := a.cache.Put(ctx, norm, c); err != nil {
			log.Printf("resolver: cache put failed address=%q err=%v", norm, err)
		}
	}
	return c, true, nil
}
