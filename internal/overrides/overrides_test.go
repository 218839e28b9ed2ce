package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashrun24/frc-season-map/internal/model"
)

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeOverrides(t, `
teams:
  frc254: {lat: 37.3861, lng: -122.0839}
  frc1114: {lat: 43.2557, lng: -79.8711}
events:
  2024cc: {lat: 34.0266, lng: -118.2791}
`)

	teams, events, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Coordinates{
		"frc254":  {Lat: 37.3861, Lng: -122.0839},
		"frc1114": {Lat: 43.2557, Lng: -79.8711},
	}, teams)
	assert.Equal(t, map[string]model.Coordinates{
		"2024cc": {Lat: 34.0266, Lng: -118.2791},
	}, events)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	teams, events, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Empty(t, events)
}

func TestLoad_PartialPairRejected(t *testing.T) {
	path := writeOverrides(t, `
teams:
  frc254: {lat: 37.3861}
`)

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frc254")
	assert.Contains(t, err.Error(), "both lat and lng")
}

func TestLoad_ZeroCoordinatesAllowed(t *testing.T) {
	path := writeOverrides(t, `
events:
  2024null: {lat: 0, lng: 0}
`)

	_, events, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.Coordinates{Lat: 0, Lng: 0}, events["2024null"])
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeOverrides(t, "teams: [not a map")
	_, _, err := Load(path)
	assert.Error(t, err)
}
