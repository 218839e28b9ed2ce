// Package render writes located season data as GeoJSON FeatureCollections
// for the map frontend.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// TeamCollection builds a FeatureCollection of located teams. Teams with an
// unknown location are left out rather than rendered at (0, 0).
func TeamCollection(teams []*model.Team) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, t := range teams {
		c, ok := t.Coordinates()
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       t.Key,
			Geometry: geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}),
			Properties: map[string]any{
				"key":         t.Key,
				"team_number": t.TeamNumber,
				"nickname":    t.Nickname,
				"city":        t.City,
				"state_prov":  t.StateProv,
				"country":     t.Country,
				"website":     t.Website,
			},
		})
	}
	return fc
}

// EventCollection builds a FeatureCollection of located events, skipping
// ignored events and any without a location.
func EventCollection(events []*model.Event) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, e := range events {
		if e.Ignore {
			continue
		}
		c, ok := e.Coordinates()
		if !ok {
			continue
		}
		props := map[string]any{
			"key":         e.Key,
			"name":        e.Name,
			"venue":       e.Venue,
			"city":        e.City,
			"state_prov":  e.StateProv,
			"country":     e.Country,
			"is_official": e.IsOfficial,
		}
		if e.District != "" {
			props["district"] = e.District
		}
		if e.Week != nil {
			props["week"] = *e.Week
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         e.Key,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}),
			Properties: props,
		})
	}
	return fc
}

// WriteSeason writes teams_<year>.geojson and events_<year>.geojson to dir,
// creating the directory if needed.
func WriteSeason(dir string, year int, teams []*model.Team, events []*model.Event) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "render: create output dir %s", dir)
	}

	teamFC := TeamCollection(teams)
	if err := writeCollection(filepath.Join(dir, fmt.Sprintf("teams_%d.geojson", year)), teamFC); err != nil {
		return err
	}
	eventFC := EventCollection(events)
	if err := writeCollection(filepath.Join(dir, fmt.Sprintf("events_%d.geojson", year)), eventFC); err != nil {
		return err
	}

	zap.L().Info("wrote season geojson",
		zap.String("dir", dir),
		zap.Int("year", year),
		zap.Int("teams", len(teamFC.Features)),
		zap.Int("events", len(eventFC.Features)))
	return nil
}

func writeCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "render: marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}
