// Package archive persists resolved locations between seasons so a run only
// pays for live geocoding of entities it has never seen. Team locations are
// archived per year (schools move rarely, but rosters churn); event locations
// accumulate in a single file because event keys are already year-scoped.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// EventFileName is the cumulative event archive file.
const EventFileName = "all_event_locations.json"

var teamFileRe = regexp.MustCompile(`^all_team_locations_(\d{4})\.json$`)

// TeamFileName returns the team archive file name for a season year.
func TeamFileName(year int) string {
	return fmt.Sprintf("all_team_locations_%d.json", year)
}

// Store reads and writes location archives in a single directory.
// Writes are whole-file overwrites; concurrent runs against the same
// directory must be serialized by the caller.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// LatestTeamYear reports the most recent year that has a team archive file.
// ok is false when the directory holds no team archives.
func (s *Store) LatestTeamYear() (year int, ok bool, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, false, eris.Wrapf(err, "archive: read dir %s", s.dir)
	}

	latest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := teamFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		y, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		if y > latest {
			latest = y
		}
	}
	return latest, latest > 0, nil
}

// LoadTeams reads the most recent team archive. A directory without any team
// archive yields an empty archive: the run still works, it just geocodes
// everything live.
func (s *Store) LoadTeams() (map[string]model.Coordinates, error) {
	year, ok, err := s.LatestTeamYear()
	if err != nil {
		return nil, err
	}
	if !ok {
		zap.L().Warn("team location archive not available, geocoding will be slow and cost provider requests",
			zap.String("dir", s.dir))
		return map[string]model.Coordinates{}, nil
	}

	path := filepath.Join(s.dir, TeamFileName(year))
	zap.L().Info("using team location archive", zap.String("file", path))
	return readArchive(path)
}

// LoadEvents reads the cumulative event archive, or an empty archive when the
// file does not exist yet.
func (s *Store) LoadEvents() (map[string]model.Coordinates, error) {
	path := filepath.Join(s.dir, EventFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("event location archive not available, geocoding will be slow and cost provider requests",
				zap.String("dir", s.dir))
			return map[string]model.Coordinates{}, nil
		}
		return nil, eris.Wrapf(err, "archive: stat %s", path)
	}
	return readArchive(path)
}

// SaveTeams writes the team archive for a season year, overwriting any
// existing file for that year. Only teams with a resolved location are
// written: unresolved teams get a fresh geocoding attempt next run.
func (s *Store) SaveTeams(year int, teams []*model.Team) error {
	return writeArchive(filepath.Join(s.dir, TeamFileName(year)), located(teams))
}

// SaveEvents overwrites the cumulative event archive with this run's resolved
// events.
func (s *Store) SaveEvents(events []*model.Event) error {
	return writeArchive(filepath.Join(s.dir, EventFileName), located(events))
}

// located projects entities with a known location to their archive shape.
func located[E model.Entity](entities []E) map[string]model.Coordinates {
	out := make(map[string]model.Coordinates, len(entities))
	for _, e := range entities {
		if c, ok := e.Coordinates(); ok {
			out[e.EntityKey()] = c
		}
	}
	return out
}

// readArchive parses an archive file. A malformed file is an error, not an
// empty archive: silently discarding a corrupt archive would trigger a full,
// expensive re-geocode without any warning.
func readArchive(path string) (map[string]model.Coordinates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "archive: read %s", path)
	}

	var locations map[string]model.Coordinates
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, eris.Wrapf(err, "archive: parse %s", path)
	}
	if locations == nil {
		locations = map[string]model.Coordinates{}
	}
	return locations, nil
}

func writeArchive(path string, locations map[string]model.Coordinates) error {
	data, err := json.Marshal(locations)
	if err != nil {
		return eris.Wrapf(err, "archive: marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "archive: write %s", path)
	}
	return nil
}
