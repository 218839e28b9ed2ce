// Package model defines the season entities that flow through the location
// pipeline: teams, events, and their resolved coordinates.
package model

// Coordinates is a fully resolved latitude/longitude pair. It is the value
// shape stored in the location archives and the unit of collision detection.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Entity is implemented by season records that carry a resolvable location.
// A record's coordinates are either fully set or fully unknown; the accessors
// below are the only way the pipeline reads or writes them, so a half-filled
// pair cannot occur.
type Entity interface {
	EntityKey() string
	Coordinates() (Coordinates, bool)
	SetCoordinates(Coordinates)
}

// Team is a competition team as reported by the season data provider.
type Team struct {
	Key        string `json:"key"`
	TeamNumber int    `json:"team_number"`
	Nickname   string `json:"nickname"`
	SchoolName string `json:"school_name"`
	City       string `json:"city"`
	StateProv  string `json:"state_prov"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Website    string `json:"website,omitempty"`

	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// EntityKey implements Entity.
func (t *Team) EntityKey() string { return t.Key }

// Coordinates implements Entity. ok is false when the location is unknown.
func (t *Team) Coordinates() (Coordinates, bool) {
	if t.Lat == nil || t.Lng == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *t.Lat, Lng: *t.Lng}, true
}

// SetCoordinates implements Entity.
func (t *Team) SetCoordinates(c Coordinates) {
	lat, lng := c.Lat, c.Lng
	t.Lat, t.Lng = &lat, &lng
}

// ClearCoordinates marks the team location as unknown.
func (t *Team) ClearCoordinates() { t.Lat, t.Lng = nil, nil }

// Event is a competition event. EventCode is the official event code used by
// the enrichment provider; it is empty for unofficial events.
type Event struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	EventCode  string `json:"first_event_code,omitempty"`
	District   string `json:"district,omitempty"`
	Week       *int   `json:"week,omitempty"`
	Venue      string `json:"venue"`
	Address    string `json:"address"`
	City       string `json:"city"`
	StateProv  string `json:"state_prov"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsOfficial bool   `json:"is_official"`

	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`

	// Ignore is set when the event could not be located by any tier; the
	// map renderer drops ignored events.
	Ignore bool `json:"ignore,omitempty"`
}

// EntityKey implements Entity.
func (e *Event) EntityKey() string { return e.Key }

// Coordinates implements Entity. ok is false when the location is unknown.
func (e *Event) Coordinates() (Coordinates, bool) {
	if e.Lat == nil || e.Lng == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *e.Lat, Lng: *e.Lng}, true
}

// SetCoordinates implements Entity.
func (e *Event) SetCoordinates(c Coordinates) {
	lat, lng := c.Lat, c.Lng
	e.Lat, e.Lng = &lat, &lng
}

// ClearCoordinates marks the event location as unknown.
func (e *Event) ClearCoordinates() { e.Lat, e.Lng = nil, nil }
