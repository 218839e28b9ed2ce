// Package geocoder resolves coordinates for season teams and events through
// a layered lookup: manual overrides first, then the on-disk archive, then a
// live call to the geocoding provider. Resolved batches are deduplicated so
// identical coordinates do not stack on the map, and written back to the
// archive so the next run skips the provider.
package geocoder

import (
	"context"
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/flashrun24/frc-season-map/internal/archive"
	"github.com/flashrun24/frc-season-map/internal/model"
	"github.com/flashrun24/frc-season-map/pkg/geocode"
)

// EventEnricher backfills an event's venue fields from the official record
// before a geocoding attempt.
type EventEnricher interface {
	EnhanceEvent(ctx context.Context, event *model.Event) error
}

// Geocoder is the location engine. It is not safe for concurrent use; runs
// against the same archive directory must be serialized by the caller.
type Geocoder struct {
	provider geocode.Client
	enricher EventEnricher
	store    *archive.Store

	teamOverrides  map[string]model.Coordinates
	eventOverrides map[string]model.Coordinates
	teamArchive    map[string]model.Coordinates
	eventArchive   map[string]model.Coordinates

	rng *rand.Rand
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithTeamOverrides supplies manual team coordinates, keyed by team key.
func WithTeamOverrides(overrides map[string]model.Coordinates) Option {
	return func(g *Geocoder) {
		g.teamOverrides = overrides
	}
}

// WithEventOverrides supplies manual event coordinates, keyed by event key.
func WithEventOverrides(overrides map[string]model.Coordinates) Option {
	return func(g *Geocoder) {
		g.eventOverrides = overrides
	}
}

// WithRand sets the randomness source for collision jitter. Tests use a
// seeded source for reproducible perturbation.
func WithRand(rng *rand.Rand) Option {
	return func(g *Geocoder) {
		g.rng = rng
	}
}

// New creates a Geocoder and loads both archives from the store. A corrupt
// archive file fails construction: silently starting from an empty archive
// would mask the corruption behind a full re-geocode.
func New(provider geocode.Client, enricher EventEnricher, store *archive.Store, opts ...Option) (*Geocoder, error) {
	g := &Geocoder{
		provider:       provider,
		enricher:       enricher,
		store:          store,
		teamOverrides:  map[string]model.Coordinates{},
		eventOverrides: map[string]model.Coordinates{},
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}

	var err error
	if g.teamArchive, err = store.LoadTeams(); err != nil {
		return nil, err
	}
	if g.eventArchive, err = store.LoadEvents(); err != nil {
		return nil, err
	}
	return g, nil
}

// PopulateTeamLocations resolves coordinates for every team in the batch,
// mutating the records in place, then deduplicates collisions and rewrites
// the team archive for the given year from exactly this batch's outcomes.
func (g *Geocoder) PopulateTeamLocations(ctx context.Context, teams []*model.Team, year int) error {
	log := zap.L().With(zap.Int("year", year))
	log.Info("geolocating teams", zap.Int("count", len(teams)))

	for _, team := range teams {
		res := g.resolveTeam(ctx, team)
		if res.Source == sourceUnresolved {
			team.ClearCoordinates()
			log.Error("could not locate team",
				zap.String("key", team.Key),
				zap.Error(res.Err))
			continue
		}
		team.SetCoordinates(res.Coords)
		log.Debug("located team",
			zap.String("key", team.Key),
			zap.String("source", string(res.Source)))
	}

	dedupLocations(g.rng, teams, "team")

	if err := g.store.SaveTeams(year, teams); err != nil {
		return err
	}
	log.Info("geolocating teams finished")
	return nil
}

// resolveTeam walks the team lookup tiers. The tiers are exclusive: an
// override or archive hit means the provider is never called for that team.
func (g *Geocoder) resolveTeam(ctx context.Context, team *model.Team) resolution {
	if c, ok := g.teamOverrides[team.Key]; ok {
		return resolution{Source: sourceOverride, Coords: c}
	}
	if c, ok := g.teamArchive[team.Key]; ok {
		return resolution{Source: sourceArchive, Coords: c}
	}

	addr := TeamAddress(team)
	if addr == "" {
		return resolution{Source: sourceUnresolved, Err: ErrNoAddress}
	}
	zap.L().Debug("geocoding team", zap.String("key", team.Key), zap.String("address", addr))
	c, err := g.geocode(ctx, addr)
	if err != nil {
		return resolution{Source: sourceUnresolved, Err: err}
	}
	return resolution{Source: sourceGeocoded, Coords: c}
}

// PopulateEventLocations resolves coordinates for every event in the batch,
// mutating the records in place. Events that no tier can locate are flagged
// Ignore. The event archive is written before deduplication on purpose: it
// stores the true resolved coordinates, never jittered ones.
func (g *Geocoder) PopulateEventLocations(ctx context.Context, events []*model.Event) error {
	zap.L().Info("geolocating events", zap.Int("count", len(events)))

	for _, event := range events {
		if c, ok := g.eventOverrides[event.Key]; ok {
			event.SetCoordinates(c)
		}

		if _, ok := event.Coordinates(); !ok {
			res := g.resolveEvent(ctx, event)
			if res.Source == sourceUnresolved {
				zap.L().Error("could not locate event",
					zap.String("key", event.Key),
					zap.Error(res.Err))
			} else {
				event.SetCoordinates(res.Coords)
				zap.L().Debug("located event",
					zap.String("key", event.Key),
					zap.String("source", string(res.Source)))
			}
		}

		if _, ok := event.Coordinates(); !ok {
			event.Ignore = true
			zap.L().Error("event has no location, excluding from map",
				zap.String("key", event.Key))
		}
	}

	if err := g.store.SaveEvents(events); err != nil {
		return err
	}

	dedupLocations(g.rng, events, "event")
	zap.L().Info("geolocating events finished")
	return nil
}

// resolveEvent handles an event that has no location after overrides:
// archive hit, else enrich-and-geocode for official events.
func (g *Geocoder) resolveEvent(ctx context.Context, event *model.Event) resolution {
	if c, ok := g.eventArchive[event.Key]; ok {
		return resolution{Source: sourceArchive, Coords: c}
	}
	if !event.IsOfficial {
		return resolution{Source: sourceUnresolved, Err: ErrUnofficial}
	}

	if g.enricher != nil {
		if err := g.enricher.EnhanceEvent(ctx, event); err != nil {
			return resolution{
				Source: sourceUnresolved,
				Err:    eris.Wrapf(err, "geocoder: enrich event %s", event.Key),
			}
		}
	}

	addr := EventAddress(event)
	if addr == "" {
		return resolution{Source: sourceUnresolved, Err: ErrNoAddress}
	}
	zap.L().Debug("geocoding event", zap.String("key", event.Key), zap.String("address", addr))
	c, err := g.geocode(ctx, addr)
	if err != nil {
		return resolution{Source: sourceUnresolved, Err: err}
	}
	return resolution{Source: sourceGeocoded, Coords: c}
}

// geocode makes the single live provider call for an address. No retries:
// a failed entity stays unknown until a future run.
func (g *Geocoder) geocode(ctx context.Context, addr string) (model.Coordinates, error) {
	result, err := g.provider.Geocode(ctx, addr)
	if err != nil {
		return model.Coordinates{}, eris.Wrap(err, "geocoder: provider call")
	}
	if !result.Matched {
		return model.Coordinates{}, ErrProviderMiss
	}
	return model.Coordinates{Lat: result.Latitude, Lng: result.Longitude}, nil
}
