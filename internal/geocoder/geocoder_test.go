package geocoder

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashrun24/frc-season-map/internal/archive"
	"github.com/flashrun24/frc-season-map/internal/model"
	"github.com/flashrun24/frc-season-map/pkg/geocode"
)

// fakeProvider resolves canned addresses and records every call.
type fakeProvider struct {
	results map[string]*geocode.Result
	err     error
	calls   []string
}

func (f *fakeProvider) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	f.calls = append(f.calls, address)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[address]; ok {
		return r, nil
	}
	return &geocode.Result{Matched: false}, nil
}

// fakeEnricher optionally mutates events and records call counts.
type fakeEnricher struct {
	err   error
	fill  func(*model.Event)
	calls int
}

func (f *fakeEnricher) EnhanceEvent(_ context.Context, e *model.Event) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.fill != nil {
		f.fill(e)
	}
	return nil
}

func matched(lat, lng float64) *geocode.Result {
	return &geocode.Result{Latitude: lat, Longitude: lng, Matched: true}
}

func newTestGeocoder(t *testing.T, dir string, provider geocode.Client, enricher EventEnricher, opts ...Option) *Geocoder {
	t.Helper()
	opts = append(opts, WithRand(testRand()))
	g, err := New(provider, enricher, archive.NewStore(dir), opts...)
	require.NoError(t, err)
	return g
}

func seedArchive(t *testing.T, dir, name string, locations map[string]model.Coordinates) {
	t.Helper()
	data, err := json.Marshal(locations)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func readArchiveFile(t *testing.T, dir, name string) map[string]model.Coordinates {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	var locations map[string]model.Coordinates
	require.NoError(t, json.Unmarshal(data, &locations))
	return locations
}

func TestNew_CorruptArchiveFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all_team_locations_2024.json"), []byte("{"), 0o644))

	_, err := New(&fakeProvider{}, nil, archive.NewStore(dir))
	assert.Error(t, err)
}

func TestPopulateTeamLocations_OverrideAndGeocode(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{results: map[string]*geocode.Result{
		"Davis California USA": matched(30, 40),
	}}

	teamA := &model.Team{Key: "frcA", City: "San Jose", StateProv: "CA"}
	teamB := &model.Team{Key: "frcB", City: "Davis", StateProv: "California", Country: "USA"}

	g := newTestGeocoder(t, dir, provider, nil,
		WithTeamOverrides(map[string]model.Coordinates{"frcA": {Lat: 10, Lng: 20}}))
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{teamA, teamB}, 2024))

	ca, ok := teamA.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 10, Lng: 20}, ca)

	cb, ok := teamB.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 30, Lng: 40}, cb)

	// Override tier never touches the provider.
	assert.Equal(t, []string{"Davis California USA"}, provider.calls)

	archived := readArchiveFile(t, dir, "all_team_locations_2024.json")
	assert.Equal(t, map[string]model.Coordinates{
		"frcA": {Lat: 10, Lng: 20},
		"frcB": {Lat: 30, Lng: 40},
	}, archived)
}

func TestPopulateTeamLocations_ArchivePrecedence(t *testing.T) {
	dir := t.TempDir()
	seedArchive(t, dir, "all_team_locations_2023.json", map[string]model.Coordinates{
		"frc254": {Lat: 37.38, Lng: -122.08},
	})
	provider := &fakeProvider{}

	team := &model.Team{Key: "frc254", City: "San Jose", StateProv: "CA", Country: "USA"}
	g := newTestGeocoder(t, dir, provider, nil)
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{team}, 2024))

	c, ok := team.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 37.38, Lng: -122.08}, c)
	assert.Empty(t, provider.calls, "archived team must not hit the provider")
}

func TestPopulateTeamLocations_OverrideBeatsArchive(t *testing.T) {
	dir := t.TempDir()
	seedArchive(t, dir, "all_team_locations_2023.json", map[string]model.Coordinates{
		"frc1": {Lat: 1, Lng: 1},
	})

	team := &model.Team{Key: "frc1"}
	g := newTestGeocoder(t, dir, &fakeProvider{}, nil,
		WithTeamOverrides(map[string]model.Coordinates{"frc1": {Lat: 9, Lng: 9}}))
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{team}, 2024))

	c, _ := team.Coordinates()
	assert.Equal(t, model.Coordinates{Lat: 9, Lng: 9}, c)
}

func TestPopulateTeamLocations_NoAddress(t *testing.T) {
	dir := t.TempDir()
	team := &model.Team{Key: "frc9999"}

	g := newTestGeocoder(t, dir, &fakeProvider{}, nil)
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{team}, 2024))

	assert.Nil(t, team.Lat)
	assert.Nil(t, team.Lng)
	assert.Empty(t, readArchiveFile(t, dir, "all_team_locations_2024.json"),
		"unresolved team never enters the archive")
}

func TestPopulateTeamLocations_ProviderFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{err: eris.New("quota exceeded")}

	bad := &model.Team{Key: "frc1", City: "Davis"}
	good := &model.Team{Key: "frc2"}

	g := newTestGeocoder(t, dir, provider, nil,
		WithTeamOverrides(map[string]model.Coordinates{"frc2": {Lat: 5, Lng: 6}}))
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{bad, good}, 2024),
		"a provider failure degrades one team, never the batch")

	assert.Nil(t, bad.Lat)
	assert.Nil(t, bad.Lng)
	c, ok := good.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 5, Lng: 6}, c)
	assert.Len(t, provider.calls, 1, "no retries")
}

func TestPopulateTeamLocations_ArchiveStoresJitteredCoordinates(t *testing.T) {
	dir := t.TempDir()
	a := &model.Team{Key: "frc1"}
	b := &model.Team{Key: "frc2"}

	g := newTestGeocoder(t, dir, &fakeProvider{}, nil,
		WithTeamOverrides(map[string]model.Coordinates{
			"frc1": {Lat: 10, Lng: 20},
			"frc2": {Lat: 10, Lng: 20},
		}))
	require.NoError(t, g.PopulateTeamLocations(context.Background(), []*model.Team{a, b}, 2024))

	archived := readArchiveFile(t, dir, "all_team_locations_2024.json")
	ca, _ := a.Coordinates()
	cb, _ := b.Coordinates()

	// Teams dedup before archiving, so the perturbed coordinate is what
	// gets persisted.
	assert.Equal(t, ca, archived["frc1"])
	assert.Equal(t, cb, archived["frc2"])
	assert.NotEqual(t, archived["frc1"], archived["frc2"])
}

func TestPopulateEventLocations_NonOfficialIgnored(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}
	enricher := &fakeEnricher{}

	event := &model.Event{Key: "2024cc", Name: "Chezy Champs", IsOfficial: false, City: "San Jose"}
	g := newTestGeocoder(t, dir, provider, enricher)
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{event}))

	assert.Nil(t, event.Lat)
	assert.Nil(t, event.Lng)
	assert.True(t, event.Ignore)
	assert.Empty(t, provider.calls)
	assert.Zero(t, enricher.calls)
	assert.Empty(t, readArchiveFile(t, dir, archive.EventFileName))
}

func TestPopulateEventLocations_OverrideApplied(t *testing.T) {
	dir := t.TempDir()
	event := &model.Event{Key: "2024cc", IsOfficial: false}

	g := newTestGeocoder(t, dir, &fakeProvider{}, nil,
		WithEventOverrides(map[string]model.Coordinates{"2024cc": {Lat: 34.02, Lng: -118.27}}))
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{event}))

	c, ok := event.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 34.02, Lng: -118.27}, c)
	assert.False(t, event.Ignore)
}

func TestPopulateEventLocations_ArchiveHit(t *testing.T) {
	dir := t.TempDir()
	seedArchive(t, dir, archive.EventFileName, map[string]model.Coordinates{
		"2024casj": {Lat: 37.33, Lng: -121.88},
	})
	provider := &fakeProvider{}
	enricher := &fakeEnricher{}

	event := &model.Event{Key: "2024casj", IsOfficial: true, EventCode: "CASJ"}
	g := newTestGeocoder(t, dir, provider, enricher)
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{event}))

	c, ok := event.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 37.33, Lng: -121.88}, c)
	assert.Empty(t, provider.calls)
	assert.Zero(t, enricher.calls, "archived event needs no enrichment")
}

func TestPopulateEventLocations_OfficialEnrichedAndGeocoded(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{results: map[string]*geocode.Result{
		"Event Center 290 S 7th St San Jose CA USA": matched(37.33, -121.88),
	}}
	enricher := &fakeEnricher{fill: func(e *model.Event) {
		e.Venue = "Event Center"
		e.Address = "290 S 7th St"
	}}

	event := &model.Event{Key: "2024casj", IsOfficial: true, EventCode: "CASJ",
		City: "San Jose", StateProv: "CA", Country: "USA"}
	g := newTestGeocoder(t, dir, provider, enricher)
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{event}))

	c, ok := event.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 37.33, Lng: -121.88}, c)
	assert.False(t, event.Ignore)
	assert.Equal(t, 1, enricher.calls)

	archived := readArchiveFile(t, dir, archive.EventFileName)
	assert.Equal(t, model.Coordinates{Lat: 37.33, Lng: -121.88}, archived["2024casj"])
}

func TestPopulateEventLocations_EnrichmentFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}
	enricher := &fakeEnricher{err: eris.New("first api unavailable")}

	bad := &model.Event{Key: "2024bad", IsOfficial: true, EventCode: "BAD", City: "Somewhere"}
	good := &model.Event{Key: "2024good", IsOfficial: false}

	g := newTestGeocoder(t, dir, provider, enricher,
		WithEventOverrides(map[string]model.Coordinates{"2024good": {Lat: 1, Lng: 2}}))
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{bad, good}))

	assert.Nil(t, bad.Lat)
	assert.Nil(t, bad.Lng)
	assert.True(t, bad.Ignore)
	assert.Empty(t, provider.calls, "enrichment failure aborts the geocoding attempt")

	c, ok := good.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 1, Lng: 2}, c)
	assert.False(t, good.Ignore)
}

func TestPopulateEventLocations_UpstreamCoordinatesKept(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}
	enricher := &fakeEnricher{}

	event := &model.Event{Key: "2024cc", IsOfficial: false}
	event.SetCoordinates(model.Coordinates{Lat: 37.33, Lng: -121.88})

	g := newTestGeocoder(t, dir, provider, enricher)
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{event}))

	c, ok := event.Coordinates()
	require.True(t, ok)
	assert.Equal(t, model.Coordinates{Lat: 37.33, Lng: -121.88}, c)
	assert.False(t, event.Ignore)
	assert.Empty(t, provider.calls)
	assert.Zero(t, enricher.calls)
}

func TestPopulateEventLocations_ArchiveWrittenBeforeDedup(t *testing.T) {
	dir := t.TempDir()
	a := &model.Event{Key: "2024a", IsOfficial: false}
	b := &model.Event{Key: "2024b", IsOfficial: false}

	g := newTestGeocoder(t, dir, &fakeProvider{}, nil,
		WithEventOverrides(map[string]model.Coordinates{
			"2024a": {Lat: 10, Lng: 20},
			"2024b": {Lat: 10, Lng: 20},
		}))
	require.NoError(t, g.PopulateEventLocations(context.Background(), []*model.Event{a, b}))

	// Events archive pre-jitter truth: the file holds the identical pair
	// even though the in-memory records were pushed apart.
	archived := readArchiveFile(t, dir, archive.EventFileName)
	assert.Equal(t, model.Coordinates{Lat: 10, Lng: 20}, archived["2024a"])
	assert.Equal(t, model.Coordinates{Lat: 10, Lng: 20}, archived["2024b"])

	ca, _ := a.Coordinates()
	cb, _ := b.Coordinates()
	assert.Equal(t, model.Coordinates{Lat: 10, Lng: 20}, ca)
	assert.NotEqual(t, ca, cb)
}
