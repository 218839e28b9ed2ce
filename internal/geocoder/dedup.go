package geocoder

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// jitterSigma is the standard deviation of collision jitter in degrees,
// roughly 100m at mid latitudes.
const jitterSigma = 0.001

// dedupLocations perturbs entities whose coordinates exactly collide with an
// earlier entity's, so markers do not stack on the map. The first entity in
// slice order keeps the coordinate; later colliders get independent Gaussian
// noise on each axis. Entities with unknown location are skipped. Best
// effort: a perturbed coordinate is not re-checked for new collisions.
func dedupLocations[E model.Entity](rng *rand.Rand, entities []E, kind string) {
	claimed := make(map[model.Coordinates]string, len(entities))

	for _, e := range entities {
		c, ok := e.Coordinates()
		if !ok {
			continue
		}

		holder, taken := claimed[c]
		if !taken {
			claimed[c] = e.EntityKey()
			continue
		}

		zap.L().Warn("location collision, perturbing",
			zap.String(kind, e.EntityKey()),
			zap.String("overlaps", holder),
			zap.Float64("lat", c.Lat),
			zap.Float64("lng", c.Lng))
		e.SetCoordinates(model.Coordinates{
			Lat: rng.NormFloat64()*jitterSigma + c.Lat,
			Lng: rng.NormFloat64()*jitterSigma + c.Lng,
		})
	}
}
