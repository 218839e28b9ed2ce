// Package overrides loads manually curated coordinates that take precedence
// over both the archive and live geocoding. Overrides live in a YAML file
// maintained by hand, keyed by entity key:
//
//	teams:
//	  frc254: {lat: 37.3861, lng: -122.0839}
//	events:
//	  2024cc: {lat: 34.0266, lng: -118.2791}
//
// Overrides are read-only input; they are never written back to disk and
// never copied into the archives.
package overrides

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// file is the on-disk layout.
type file struct {
	Teams  map[string]entry `yaml:"teams"`
	Events map[string]entry `yaml:"events"`
}

// entry uses pointers so a missing field can be told apart from zero: an
// override at (0, 0) is legal, a half-specified one is not.
type entry struct {
	Lat *float64 `yaml:"lat"`
	Lng *float64 `yaml:"lng"`
}

// Load reads the override file at path. Overrides are optional, so a missing
// file is not an error, but a present file must parse, and every entry must
// carry both lat and lng, since a partial pair would leave a record
// half-located.
func Load(path string) (teams, events map[string]model.Coordinates, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.Coordinates{}, map[string]model.Coordinates{}, nil
		}
		return nil, nil, eris.Wrapf(err, "overrides: read %s", path)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, eris.Wrapf(err, "overrides: parse %s", path)
	}

	teams, err = convert("teams", f.Teams)
	if err != nil {
		return nil, nil, err
	}
	events, err = convert("events", f.Events)
	if err != nil {
		return nil, nil, err
	}
	return teams, events, nil
}

func convert(section string, entries map[string]entry) (map[string]model.Coordinates, error) {
	out := make(map[string]model.Coordinates, len(entries))
	for key, e := range entries {
		if e.Lat == nil || e.Lng == nil {
			return nil, eris.Errorf("overrides: %s entry %q must set both lat and lng", section, key)
		}
		out[key] = model.Coordinates{Lat: *e.Lat, Lng: *e.Lng}
	}
	return out, nil
}
