package geocoder

import (
	"github.com/rotisserie/eris"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// Per-entity failure kinds. They degrade a single entity to unknown and are
// logged; they never abort a batch.
var (
	// ErrNoAddress means the entity's fields synthesize to an empty address.
	ErrNoAddress = eris.New("geocoder: no usable address")

	// ErrProviderMiss means the geocoding provider returned no usable result.
	ErrProviderMiss = eris.New("geocoder: provider returned no match")

	// ErrUnofficial means an event has no archived location and is not
	// official, so there is no enrichment source to geocode from.
	ErrUnofficial = eris.New("geocoder: event is not official and cannot be geocoded")
)

// source tags where a resolved location came from.
type source string

const (
	sourceOverride   source = "override"
	sourceArchive    source = "archive"
	sourceGeocoded   source = "geocoded"
	sourceUnresolved source = "unresolved"
)

// resolution is the outcome of one entity's lookup chain. Coords is valid
// only when Source is not sourceUnresolved; Err explains an unresolved
// outcome.
type resolution struct {
	Source source
	Coords model.Coordinates
	Err    error
}
